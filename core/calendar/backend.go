package calendar

import (
	"context"
	"time"
)

// CommitMode describes how a backend makes staged mutations durable.
type CommitMode string

const (
	// CommitAtomic backends apply the whole staged batch or nothing.
	CommitAtomic CommitMode = "atomic"
	// CommitPerItem backends commit every mutation on its own.
	CommitPerItem CommitMode = "per_item"
)

// Backend is the calendar collection capability.
type Backend interface {
	// AcquireAccess verifies the backend is reachable and usable. It must
	// return within maxWait and wraps ErrAuthorizationDenied on failure.
	AcquireAccess(ctx context.Context, maxWait time.Duration) error

	// ListCollections returns every collection visible to the backend.
	ListCollections(ctx context.Context) ([]Collection, error)

	// FetchEntries returns the entries of collection overlapping [start, end),
	// with recurring series materialized into occurrences sharing one ID.
	FetchEntries(ctx context.Context, collection Collection, start, end time.Time) ([]Entry, error)

	// CreateEntry instantiates a new, unsaved entry in collection.
	CreateEntry(ctx context.Context, collection Collection) (*Entry, error)

	// SaveEntry stages (commit=false) or writes (commit=true) the entry.
	SaveEntry(ctx context.Context, entry *Entry, commit bool) error

	// DeleteEntry stages (commit=false) or performs (commit=true) removal of
	// the single entry. Other entries are never affected.
	DeleteEntry(ctx context.Context, entry *Entry, commit bool) error

	// CommitBatch makes every staged mutation durable.
	CommitBatch(ctx context.Context) error

	// Reset discards staged mutations that were not committed.
	Reset(ctx context.Context) error

	// CommitMode reports the backend's unit of atomicity.
	CommitMode() CommitMode
}

// FindCollection resolves id against the backend's collections.
func FindCollection(ctx context.Context, b Backend, id string) (Collection, bool, error) {
	collections, err := b.ListCollections(ctx)
	if err != nil {
		return Collection{}, false, err
	}
	for _, c := range collections {
		if c.ID == id {
			return c, true, nil
		}
	}
	return Collection{}, false, nil
}
