package calendar

import (
	"fmt"
	"time"
)

// Availability is the free/busy state of an entry.
type Availability string

const (
	AvailabilityNotSupported Availability = ""
	AvailabilityBusy         Availability = "busy"
	AvailabilityFree         Availability = "free"
	AvailabilityTentative    Availability = "tentative"
	AvailabilityUnavailable  Availability = "unavailable"
)

// IsValid reports whether a is one of the known availability states.
func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityNotSupported, AvailabilityBusy, AvailabilityFree, AvailabilityTentative, AvailabilityUnavailable:
		return true
	default:
		return false
	}
}

// Entry is one calendar event as read from a collection.
type Entry struct {
	// ID is the backend assigned identifier. Occurrences of one recurring
	// series share it.
	ID string `json:"id"`
	// CollectionID is the collection the entry belongs to.
	CollectionID string `json:"collection_id"`

	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`

	Title        string       `json:"title"`
	Location     string       `json:"location"`
	Notes        string       `json:"notes"`
	Availability Availability `json:"availability"`

	// Recurrence is the RRULE value (without the "RRULE:" prefix) of the
	// series the entry belongs to, empty for single entries.
	Recurrence string `json:"recurrence,omitempty"`
	// Exceptions are the occurrence starts the series skips (EXDATE).
	Exceptions []time.Time `json:"exceptions,omitempty"`
	// SeriesStart is the start of the first occurrence of the series. Expand
	// sets it on every occurrence it returns.
	SeriesStart time.Time `json:"-" yaml:"-"`

	// Marker is the ownership marker embedded by the sync engine. Backends
	// store it verbatim in a field with no scheduling semantics.
	Marker string `json:"marker,omitempty"`
}

// IsRecurring reports whether the entry belongs to a recurring series.
func (e *Entry) IsRecurring() bool {
	return e.Recurrence != ""
}

// Overlaps reports whether the entry intersects [start, end).
func (e *Entry) Overlaps(start, end time.Time) bool {
	return e.Start.Before(end) && e.End.After(start)
}

// String returns a short human readable description used in logs.
func (e *Entry) String() string {
	return fmt.Sprintf("%q (%s) starts %s", e.Title, e.ID, e.Start.Format(time.RFC3339))
}

// Collection is a handle to one calendar.
type Collection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Account string `json:"account"`
}

// DisplayName renders the collection the way reports show it.
func (c Collection) DisplayName() string {
	return fmt.Sprintf("%s: %q (%s)", c.Account, c.Title, c.ID)
}
