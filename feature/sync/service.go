package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"

	"cal-sync/core/calendar"
	"cal-sync/core/reconcile"
	"cal-sync/core/syncconf"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Report describes one sync, plan or purge run.
type Report struct {
	Source            *calendar.Collection    `json:"source,omitempty" yaml:"source,omitempty"`
	Destination       calendar.Collection     `json:"destination" yaml:"destination"`
	SourceWindow      reconcile.Window        `json:"source_window" yaml:"source_window"`
	DestinationWindow reconcile.Window        `json:"destination_window" yaml:"destination_window"`
	DryRun            bool                    `json:"dry_run" yaml:"dry_run"`
	Plan              *reconcile.ReconcilePlan `json:"plan" yaml:"plan"`
	Result            *reconcile.ApplyResult   `json:"result,omitempty" yaml:"result,omitempty"`
}

// UpToDate reports whether the destination needed no change.
func (r *Report) UpToDate() bool {
	return r.Plan == nil || r.Plan.IsEmpty()
}

// Account groups the collections of one account.
type Account struct {
	Name      string                `json:"name" yaml:"name"`
	Calendars []calendar.Collection `json:"calendars" yaml:"calendars"`
}

// Service runs sync passes for one configured relationship. Runs are
// serialized.
type Service struct {
	backend calendar.Backend
	cfg     syncconf.Config
	logger  *zap.Logger
	clock   clockwork.Clock

	mu gosync.Mutex
}

// NewService creates a new sync service.
func NewService(backend calendar.Backend, cfg syncconf.Config, logger *zap.Logger, clock clockwork.Clock) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{backend: backend, cfg: cfg, logger: logger, clock: clock}
}

// Config returns the configuration the service runs with.
func (s *Service) Config() syncconf.Config {
	return s.cfg
}

// Run mirrors the source into the destination. With dry_run set nothing is
// mutated.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	return s.run(ctx, s.cfg.DryRun)
}

// Plan computes the actions of a run without applying them.
func (s *Service) Plan(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, report, err := s.prepare(ctx, true)
	if err != nil {
		return nil, err
	}
	report.DryRun = true
	plan, err := reconcile.ReconcileWithPlan(ctx, spec)
	if err != nil {
		return nil, err
	}
	report.Plan = plan
	return report, nil
}

// Purge deletes every owned entry of the destination window. Foreign entries
// are left alone.
func (s *Service) Purge(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.DestinationCalendar == "" {
		return nil, syncconf.ErrNoDestination
	}
	if err := s.cfg.ValidatePrefix(); err != nil {
		return nil, err
	}
	if err := s.cfg.ValidateWindow(); err != nil {
		return nil, err
	}
	if err := s.backend.AcquireAccess(ctx, s.cfg.MaxAuthWait); err != nil {
		return nil, err
	}

	dst, err := s.resolve(ctx, s.cfg.DestinationCalendar, calendar.ErrInvalidDestinationCollection)
	if err != nil {
		return nil, err
	}

	_, window := s.cfg.Windows(s.clock.Now())
	spec := &reconcile.Spec{
		Backend:           s.backend,
		Destination:       dst,
		DestinationWindow: window,
		Options:           s.cfg.Options(),
	}
	report := &Report{Destination: dst, DestinationWindow: window, DryRun: s.cfg.DryRun}

	destination, err := s.backend.FetchEntries(ctx, dst, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("fetch destination entries: %w", err)
	}
	report.Plan = reconcile.Reconcile(nil, destination, spec.Options)

	s.logger.Info("Purging synced entries",
		zap.String("destination", dst.DisplayName()),
		zap.Int("entries", report.Plan.Summary.Deletes),
		zap.Bool("dry_run", report.DryRun),
	)
	report.Result, err = reconcile.ApplyPlan(ctx, spec, report.Plan, s.logger)
	return report, err
}

// ListCalendars returns the visible collections grouped by account. Accounts
// and the calendars inside them are sorted by name.
func (s *Service) ListCalendars(ctx context.Context) ([]Account, error) {
	if err := s.backend.AcquireAccess(ctx, s.cfg.MaxAuthWait); err != nil {
		return nil, err
	}
	collections, err := s.backend.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByAccount(collections), nil
}

// GroupByAccount groups collections by account.
func GroupByAccount(collections []calendar.Collection) []Account {
	sorted := make([]calendar.Collection, len(collections))
	copy(sorted, collections)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Account != sorted[j].Account {
			return sorted[i].Account < sorted[j].Account
		}
		return sorted[i].Title < sorted[j].Title
	})

	var out []Account
	for _, c := range sorted {
		if len(out) == 0 || out[len(out)-1].Name != c.Account {
			out = append(out, Account{Name: c.Account})
		}
		last := &out[len(out)-1]
		last.Calendars = append(last.Calendars, c)
	}
	return out
}

func (s *Service) run(ctx context.Context, dryRun bool) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, report, err := s.prepare(ctx, dryRun)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting sync",
		zap.String("source", report.Source.DisplayName()),
		zap.String("destination", report.Destination.DisplayName()),
		zap.Bool("dry_run", dryRun),
	)

	plan, result, err := reconcile.ReconcileAndApply(ctx, spec, s.logger)
	report.Plan, report.Result = plan, result
	if err != nil {
		return report, err
	}

	if plan.IsEmpty() {
		s.logger.Info("All events are up to date")
	} else {
		s.logger.Info("Sync finished",
			zap.Int("creates", plan.Summary.Creates),
			zap.Int("updates", plan.Summary.Updates),
			zap.Int("deletes", plan.Summary.Deletes),
			zap.Bool("committed", result.Committed),
		)
	}
	return report, nil
}

// prepare checks everything that can fail before a mutation: configuration,
// backend access and both collections.
func (s *Service) prepare(ctx context.Context, dryRun bool) (*reconcile.Spec, *Report, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.backend.AcquireAccess(ctx, s.cfg.MaxAuthWait); err != nil {
		return nil, nil, err
	}

	src, err := s.resolve(ctx, s.cfg.SourceCalendar, calendar.ErrInvalidSourceCollection)
	if err != nil {
		return nil, nil, err
	}
	dst, err := s.resolve(ctx, s.cfg.DestinationCalendar, calendar.ErrInvalidDestinationCollection)
	if err != nil {
		return nil, nil, err
	}
	if src.ID == dst.ID {
		return nil, nil, calendar.ErrIdenticalCollections
	}

	opts := s.cfg.Options()
	opts.DryRun = dryRun
	sourceWindow, destinationWindow := s.cfg.Windows(s.clock.Now())

	spec := &reconcile.Spec{
		Backend:           s.backend,
		Source:            src,
		Destination:       dst,
		SourceWindow:      sourceWindow,
		DestinationWindow: destinationWindow,
		Options:           opts,
	}
	report := &Report{
		Source:            &src,
		Destination:       dst,
		SourceWindow:      sourceWindow,
		DestinationWindow: destinationWindow,
		DryRun:            dryRun,
	}
	return spec, report, nil
}

func (s *Service) resolve(ctx context.Context, id string, missing error) (calendar.Collection, error) {
	c, ok, err := calendar.FindCollection(ctx, s.backend, id)
	if err != nil {
		return calendar.Collection{}, fmt.Errorf("resolve calendar %s: %w", id, err)
	}
	if !ok {
		return calendar.Collection{}, fmt.Errorf("%w: %s", missing, id)
	}
	return c, nil
}
