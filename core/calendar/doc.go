// Package calendar defines the calendar model shared by the sync engine and
// the calendar backends.
//
// # Entries
//
// An Entry is a read-only projection of one calendar event as returned by a
// backend for a given time window. Occurrences of a recurring series are
// returned as separate entries that share the same ID; the recurrence rule is
// carried on every occurrence but is only copied once per series.
//
// # Backends
//
// The Backend interface is the calendar collection capability consumed by the
// sync feature. Mutations are staged with SaveEntry/DeleteEntry and made durable
// with CommitBatch. CommitMode reports whether the backend commits the staged
// batch atomically or item by item, which decides how failures are surfaced.
//
// Implementations live in feature/calendars (sqlstore, icsstore) and an
// in-memory implementation for tests lives in calendartest.
package calendar
