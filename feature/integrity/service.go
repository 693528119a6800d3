package integrity

import (
	"context"
	"fmt"

	"cal-sync/core/calendar"
	"cal-sync/core/syncconf"
	"cal-sync/feature/integrity/checks"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Report combines every integrity check.
type Report struct {
	Backend *checks.BackendReport `json:"backend" yaml:"backend"`
	Markers *checks.MarkerReport  `json:"markers,omitempty" yaml:"markers,omitempty"`
	Error   string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// Service handles integrity checks.
type Service struct {
	backend calendar.Backend
	cfg     syncconf.Config
	logger  *zap.Logger
	clock   clockwork.Clock
}

// NewService creates a new integrity service.
func NewService(backend calendar.Backend, cfg syncconf.Config, logger *zap.Logger, clock clockwork.Clock) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		clock:   clock,
	}
}

// CheckBackend reports whether the backend is reachable.
func (s *Service) CheckBackend(ctx context.Context) *checks.BackendReport {
	return checks.CheckBackend(ctx, s.backend, s.cfg.MaxAuthWait)
}

// CheckMarkers classifies the owned entries of the destination window.
func (s *Service) CheckMarkers(ctx context.Context) (*checks.MarkerReport, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.backend.AcquireAccess(ctx, s.cfg.MaxAuthWait); err != nil {
		return nil, err
	}

	src, err := s.find(ctx, s.cfg.SourceCalendar, calendar.ErrInvalidSourceCollection)
	if err != nil {
		return nil, err
	}
	dst, err := s.find(ctx, s.cfg.DestinationCalendar, calendar.ErrInvalidDestinationCollection)
	if err != nil {
		return nil, err
	}

	sourceWindow, destinationWindow := s.cfg.Windows(s.clock.Now())
	source, err := s.backend.FetchEntries(ctx, src, sourceWindow.Start, sourceWindow.End)
	if err != nil {
		return nil, fmt.Errorf("fetch source entries: %w", err)
	}
	destination, err := s.backend.FetchEntries(ctx, dst, destinationWindow.Start, destinationWindow.End)
	if err != nil {
		return nil, fmt.Errorf("fetch destination entries: %w", err)
	}

	report := checks.CheckMarkers(source, destination, s.cfg.Prefix, s.cfg.Fields())
	if !report.Healthy() {
		s.logger.Warn("Marker drift detected",
			zap.Int("stale", len(report.Stale)),
			zap.Int("orphaned", len(report.Orphaned)),
			zap.Int("malformed", len(report.Malformed)),
			zap.Int("duplicates", len(report.Duplicates)),
		)
	}
	return report, nil
}

// CheckAll runs every check. A failing marker check is recorded in the report.
func (s *Service) CheckAll(ctx context.Context) *Report {
	report := &Report{Backend: s.CheckBackend(ctx)}
	if report.Backend.Status != "ok" {
		return report
	}
	markers, err := s.CheckMarkers(ctx)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Markers = markers
	return report
}

func (s *Service) find(ctx context.Context, id string, missing error) (calendar.Collection, error) {
	c, ok, err := calendar.FindCollection(ctx, s.backend, id)
	if err != nil {
		return calendar.Collection{}, err
	}
	if !ok {
		return calendar.Collection{}, fmt.Errorf("%w: %s", missing, id)
	}
	return c, nil
}
