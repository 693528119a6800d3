package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type opKind int

const (
	opSave opKind = iota
	opDelete
)

type stagedOp struct {
	kind opKind
	row  entryRow
}

// Store is a calendar.Backend over two SQL tables. Staged mutations are applied
// in one transaction by CommitBatch.
type Store struct {
	db     *gorm.DB
	mode   calendar.CommitMode
	logger *zap.Logger

	mu     sync.Mutex
	staged []stagedOp
}

// New wraps db. An empty mode means calendar.CommitAtomic.
func New(db *gorm.DB, mode calendar.CommitMode, logger *zap.Logger) *Store {
	if mode == "" {
		mode = calendar.CommitAtomic
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, mode: mode, logger: logger}
}

// Open connects with cfg, migrates the schema and returns the store.
func Open(cfg database.Config, logger *zap.Logger) (*Store, error) {
	mode, err := ParseCommitMode(cfg.CommitMode)
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	s := New(db, mode, logger)
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseCommitMode validates a configured commit mode.
func ParseCommitMode(raw string) (calendar.CommitMode, error) {
	switch calendar.CommitMode(strings.ToLower(raw)) {
	case "", calendar.CommitAtomic:
		return calendar.CommitAtomic, nil
	case calendar.CommitPerItem:
		return calendar.CommitPerItem, nil
	default:
		return "", fmt.Errorf("unknown commit mode %q", raw)
	}
}

// Migrate creates or updates both tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&calendarRow{}, &entryRow{}); err != nil {
		return fmt.Errorf("migrate calendar tables: %w", err)
	}
	return nil
}

// CheckSchema returns the missing columns of both tables, qualified by table.
func (s *Store) CheckSchema(ctx context.Context) ([]string, error) {
	db := s.db.WithContext(ctx)
	var missing []string
	for table, columns := range map[string][]string{"calendars": calendarColumns, "entries": entryColumns} {
		cols, err := database.MissingColumns(db, table, columns)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			missing = append(missing, table+"."+c)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// PutCollection creates or renames a collection.
func (s *Store) PutCollection(ctx context.Context, c calendar.Collection) error {
	row := calendarRow{ID: c.ID, Title: c.Title, Account: c.Account}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("store collection %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) AcquireAccess(ctx context.Context, maxWait time.Duration) error {
	if maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", calendar.ErrAuthorizationDenied, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", calendar.ErrAuthorizationDenied, err)
	}

	missing, err := s.CheckSchema(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", calendar.ErrBackendCommunication, err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: schema is missing %s", calendar.ErrBackendCommunication, strings.Join(missing, ", "))
	}
	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]calendar.Collection, error) {
	var rows []calendarRow
	if err := s.db.WithContext(ctx).Order("account").Order("title").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list calendars: %v", calendar.ErrBackendCommunication, err)
	}
	out := make([]calendar.Collection, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.collection())
	}
	return out, nil
}

func (s *Store) FetchEntries(ctx context.Context, collection calendar.Collection, start, end time.Time) ([]calendar.Entry, error) {
	start, end = start.UTC(), end.UTC()

	// Recurring rows are fetched whenever the series started before the
	// window ends; expansion decides which occurrences overlap.
	var rows []entryRow
	err := s.db.WithContext(ctx).
		Where("calendar_id = ?", collection.ID).
		Where("start_at < ?", end).
		Where("(recurrence <> '' OR end_at > ?)", start).
		Order("start_at").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: fetch entries of %s: %v", calendar.ErrBackendCommunication, collection.ID, err)
	}

	var out []calendar.Entry
	for _, r := range rows {
		occ, err := calendar.Expand(r.entry(), start, end, 0)
		if err != nil {
			s.logger.Warn("Skipping entry with invalid recurrence", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		out = append(out, occ...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *Store) CreateEntry(ctx context.Context, collection calendar.Collection) (*calendar.Entry, error) {
	return &calendar.Entry{ID: uuid.NewString(), CollectionID: collection.ID}, nil
}

func (s *Store) SaveEntry(ctx context.Context, entry *calendar.Entry, commit bool) error {
	op := stagedOp{kind: opSave, row: toRow(entry)}
	if !commit {
		s.stage(op)
		return nil
	}
	return apply(s.db.WithContext(ctx), op)
}

func (s *Store) DeleteEntry(ctx context.Context, entry *calendar.Entry, commit bool) error {
	op := stagedOp{kind: opDelete, row: toRow(entry)}
	if !commit {
		s.stage(op)
		return nil
	}
	return apply(s.db.WithContext(ctx), op)
}

func (s *Store) CommitBatch(ctx context.Context) error {
	s.mu.Lock()
	ops := s.staged
	s.staged = nil
	s.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := apply(tx, op); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("Committed batch", zap.Int("mutations", len(ops)))
	return nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
	return nil
}

func (s *Store) CommitMode() calendar.CommitMode {
	return s.mode
}

func (s *Store) stage(op stagedOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, op)
}

func apply(db *gorm.DB, op stagedOp) error {
	switch op.kind {
	case opSave:
		err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(&op.row).Error
		if err != nil {
			return fmt.Errorf("%w: save entry %s: %v", calendar.ErrBackendCommunication, op.row.ID, err)
		}
	case opDelete:
		res := db.Where("id = ? AND calendar_id = ?", op.row.ID, op.row.CalendarID).Delete(&entryRow{})
		if res.Error != nil {
			return fmt.Errorf("%w: delete entry %s: %v", calendar.ErrBackendCommunication, op.row.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete %s: %w", op.row.ID, calendar.ErrEntryNotFound)
		}
	default:
		return errors.New("unknown staged operation")
	}
	return nil
}
