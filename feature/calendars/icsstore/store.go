package icsstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/storage"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const objectExt = ".ics"

// Config configures a Store.
type Config struct {
	Bucket       string
	Prefix       string
	Region       string
	CreateBucket bool
}

// Store is a calendar.Backend keeping every collection as one iCalendar object.
// Staged mutations edit a working copy that CommitBatch uploads.
type Store struct {
	client storage.Client
	cfg    Config
	logger *zap.Logger
	clock  clockwork.Clock

	mu     sync.Mutex
	staged map[string]*ics.Calendar
}

// New returns a store over client.
func New(client storage.Client, cfg Config, logger *zap.Logger, clock clockwork.Clock) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{client: client, cfg: cfg, logger: logger, clock: clock, staged: make(map[string]*ics.Calendar)}
}

// ObjectName returns the object key holding collection id.
func (s *Store) ObjectName(id string) string {
	return path.Join(s.cfg.Prefix, id+objectExt)
}

func (s *Store) AcquireAccess(ctx context.Context, maxWait time.Duration) error {
	if maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}
	if err := storage.EnsureBucket(ctx, s.client, s.cfg.Bucket, s.cfg.Region, s.cfg.CreateBucket); err != nil {
		return fmt.Errorf("%w: %v", calendar.ErrAuthorizationDenied, err)
	}
	return nil
}

func (s *Store) ListCollections(ctx context.Context) ([]calendar.Collection, error) {
	prefix := s.cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var out []calendar.Collection
	for obj := range s.client.ListObjects(ctx, s.cfg.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: list calendars: %v", calendar.ErrBackendCommunication, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, objectExt) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), objectExt)

		cal, err := s.load(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping unreadable calendar", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		title := calendarName(cal)
		if title == "" {
			title = id
		}
		out = append(out, calendar.Collection{ID: id, Title: title, Account: s.cfg.Bucket})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) FetchEntries(ctx context.Context, collection calendar.Collection, start, end time.Time) ([]calendar.Entry, error) {
	cal, err := s.load(ctx, collection.ID)
	if err != nil {
		return nil, err
	}

	var out []calendar.Entry
	for _, ev := range cal.Events() {
		e, ok, err := decodeEvent(collection.ID, ev)
		if err != nil {
			s.logger.Warn("Skipping unreadable event", zap.String("calendar", collection.ID), zap.String("uid", ev.Id()), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		occ, err := calendar.Expand(e, start, end, 0)
		if err != nil {
			s.logger.Warn("Skipping event with invalid recurrence", zap.String("uid", e.ID), zap.Error(err))
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
	return s.mutate(ctx, entry.CollectionID, commit, func(cal *ics.Calendar) error {
		idx := eventIndex(cal, entry.ID)
		var previous *ics.VEvent
		if idx >= 0 {
			previous = cal.Components[idx].(*ics.VEvent)
		}
		ev := encodeEvent(*entry, previous, s.clock.Now())
		if idx >= 0 {
			cal.Components[idx] = ev
		} else {
			cal.AddVEvent(ev)
		}
		return nil
	})
}

func (s *Store) DeleteEntry(ctx context.Context, entry *calendar.Entry, commit bool) error {
	return s.mutate(ctx, entry.CollectionID, commit, func(cal *ics.Calendar) error {
		idx := eventIndex(cal, entry.ID)
		if idx < 0 {
			return fmt.Errorf("delete %s: %w", entry.ID, calendar.ErrEntryNotFound)
		}
		cal.Components = append(cal.Components[:idx:idx], cal.Components[idx+1:]...)
		return nil
	})
}

func (s *Store) CommitBatch(ctx context.Context) error {
	s.mu.Lock()
	staged := s.staged
	s.staged = make(map[string]*ics.Calendar)
	s.mu.Unlock()

	ids := make([]string, 0, len(staged))
	for id := range staged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.upload(ctx, id, staged[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = make(map[string]*ics.Calendar)
	return nil
}

// CommitMode is atomic: the whole working copy of a calendar is uploaded as
// one object.
func (s *Store) CommitMode() calendar.CommitMode {
	return calendar.CommitAtomic
}

func (s *Store) mutate(ctx context.Context, id string, commit bool, fn func(cal *ics.Calendar) error) error {
	if commit {
		cal, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(cal); err != nil {
			return err
		}
		return s.upload(ctx, id, cal)
	}

	s.mu.Lock()
	cal, ok := s.staged[id]
	s.mu.Unlock()
	if !ok {
		var err error
		if cal, err = s.load(ctx, id); err != nil {
			return err
		}
	}
	if err := fn(cal); err != nil {
		return err
	}

	s.mu.Lock()
	s.staged[id] = cal
	s.mu.Unlock()
	return nil
}

func (s *Store) load(ctx context.Context, id string) (*ics.Calendar, error) {
	key := s.ObjectName(id)
	body, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(id, err)
	}
	defer body.Close()

	// minio reports a missing object on the first read.
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, s.readError(id, err)
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", calendar.ErrBackendCommunication, key, err)
	}
	return cal, nil
}

func (s *Store) readError(id string, err error) error {
	if storage.IsNotFound(err) {
		return fmt.Errorf("calendar %s: %w", id, calendar.ErrBackendCommunication)
	}
	return fmt.Errorf("%w: read calendar %s: %v", calendar.ErrBackendCommunication, id, err)
}

func (s *Store) upload(ctx context.Context, id string, cal *ics.Calendar) error {
	data := []byte(cal.Serialize())
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, s.ObjectName(id), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/calendar; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("%w: upload calendar %s: %v", calendar.ErrBackendCommunication, id, err)
	}
	s.logger.Debug("Uploaded calendar", zap.String("calendar", id), zap.Int("bytes", len(data)))
	return nil
}

func eventIndex(cal *ics.Calendar, uid string) int {
	for i, c := range cal.Components {
		if ev, ok := c.(*ics.VEvent); ok && ev.Id() == uid && ev.GetProperty(propertyRecurrenceID) == nil {
			return i
		}
	}
	return -1
}
