// Package calendartest provides an in-memory calendar.Backend for tests.
package calendartest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cal-sync/core/calendar"

	"github.com/google/uuid"
)

type opKind int

const (
	opSave opKind = iota
	opDelete
)

type stagedOp struct {
	kind  opKind
	entry calendar.Entry
}

// Memory is an in-memory calendar backend. Each stored entry is a series
// root; FetchEntries materializes recurring series like real backends do.
type Memory struct {
	mu sync.Mutex

	// Denied makes AcquireAccess fail.
	Denied bool
	// Mode is reported by CommitMode. Defaults to calendar.CommitAtomic.
	Mode calendar.CommitMode
	// FailOn, when set, is consulted before every mutation is made durable.
	FailOn func(op string, e calendar.Entry) error
	// FetchErr, when set, is returned by FetchEntries.
	FetchErr error

	collections []calendar.Collection
	entries     map[string][]calendar.Entry
	staged      []stagedOp

	// Commits counts successful CommitBatch calls.
	Commits int
	// Writes counts mutations made durable.
	Writes int
}

// NewMemory returns an empty backend holding the given collections.
func NewMemory(collections ...calendar.Collection) *Memory {
	m := &Memory{entries: make(map[string][]calendar.Entry)}
	for _, c := range collections {
		m.AddCollection(c)
	}
	return m
}

// AddCollection registers a collection.
func (m *Memory) AddCollection(c calendar.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = append(m.collections, c)
	if _, ok := m.entries[c.ID]; !ok {
		m.entries[c.ID] = nil
	}
}

// Put stores e directly, bypassing staging. A missing ID is generated.
func (m *Memory) Put(e calendar.Entry) calendar.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.upsert(e)
	return e
}

// Entries returns the stored series roots of collectionID in insertion order.
func (m *Memory) Entries(collectionID string) []calendar.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]calendar.Entry, len(m.entries[collectionID]))
	copy(out, m.entries[collectionID])
	return out
}

// Get returns the stored entry with id.
func (m *Memory) Get(id string) (calendar.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, list := range m.entries {
		for _, e := range list {
			if e.ID == id {
				return e, true
			}
		}
	}
	return calendar.Entry{}, false
}

// Staged returns the number of mutations waiting for CommitBatch.
func (m *Memory) Staged() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.staged)
}

func (m *Memory) AcquireAccess(ctx context.Context, maxWait time.Duration) error {
	if m.Denied {
		return calendar.ErrAuthorizationDenied
	}
	return nil
}

func (m *Memory) ListCollections(ctx context.Context) ([]calendar.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]calendar.Collection, len(m.collections))
	copy(out, m.collections)
	return out, nil
}

func (m *Memory) FetchEntries(ctx context.Context, collection calendar.Collection, start, end time.Time) ([]calendar.Entry, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.entries[collection.ID]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", collection.ID, calendar.ErrBackendCommunication)
	}

	var out []calendar.Entry
	for _, e := range list {
		occ, err := calendar.Expand(e, start, end, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, occ...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *Memory) CreateEntry(ctx context.Context, collection calendar.Collection) (*calendar.Entry, error) {
	return &calendar.Entry{ID: uuid.NewString(), CollectionID: collection.ID}, nil
}

func (m *Memory) SaveEntry(ctx context.Context, entry *calendar.Entry, commit bool) error {
	return m.mutate(stagedOp{kind: opSave, entry: *entry}, commit)
}

func (m *Memory) DeleteEntry(ctx context.Context, entry *calendar.Entry, commit bool) error {
	return m.mutate(stagedOp{kind: opDelete, entry: *entry}, commit)
}

func (m *Memory) CommitBatch(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate the whole batch before touching state.
	for _, op := range m.staged {
		if err := m.check(op); err != nil {
			m.staged = nil
			return err
		}
	}
	for _, op := range m.staged {
		m.perform(op)
	}
	m.staged = nil
	m.Commits++
	return nil
}

func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = nil
	return nil
}

func (m *Memory) CommitMode() calendar.CommitMode {
	if m.Mode == "" {
		return calendar.CommitAtomic
	}
	return m.Mode
}

func (m *Memory) mutate(op stagedOp, commit bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !commit {
		m.staged = append(m.staged, op)
		return nil
	}
	if err := m.check(op); err != nil {
		return err
	}
	m.perform(op)
	return nil
}

func (m *Memory) check(op stagedOp) error {
	name := "save"
	if op.kind == opDelete {
		name = "delete"
		if !m.exists(op.entry) {
			return fmt.Errorf("delete %s: %w", op.entry.ID, calendar.ErrEntryNotFound)
		}
	}
	if m.FailOn != nil {
		return m.FailOn(name, op.entry)
	}
	return nil
}

func (m *Memory) perform(op stagedOp) {
	m.Writes++
	switch op.kind {
	case opSave:
		m.upsert(op.entry)
	case opDelete:
		list := m.entries[op.entry.CollectionID]
		for i, e := range list {
			if e.ID == op.entry.ID {
				m.entries[op.entry.CollectionID] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func (m *Memory) exists(e calendar.Entry) bool {
	for _, cur := range m.entries[e.CollectionID] {
		if cur.ID == e.ID {
			return true
		}
	}
	return false
}

func (m *Memory) upsert(e calendar.Entry) {
	list := m.entries[e.CollectionID]
	for i, cur := range list {
		if cur.ID == e.ID {
			list[i] = e
			return
		}
	}
	m.entries[e.CollectionID] = append(list, e)
}
