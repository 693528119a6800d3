package sqlstore

import (
	"strings"
	"time"

	"cal-sync/core/calendar"
)

// calendarRow is one collection.
type calendarRow struct {
	ID      string `gorm:"column:id;primaryKey;size:64"`
	Title   string `gorm:"column:title;size:255"`
	Account string `gorm:"column:account;size:255"`
}

func (calendarRow) TableName() string { return "calendars" }

// entryRow is one entry or the root of a recurring series.
type entryRow struct {
	ID           string    `gorm:"column:id;primaryKey;size:64"`
	CalendarID   string    `gorm:"column:calendar_id;size:64;index:idx_entries_window,priority:1"`
	StartAt      time.Time `gorm:"column:start_at;index:idx_entries_window,priority:2"`
	TimeZone     string    `gorm:"column:time_zone;size:64"`
	EndAt        time.Time `gorm:"column:end_at"`
	AllDay       bool      `gorm:"column:all_day"`
	Title        string    `gorm:"column:title;size:255"`
	Location     string    `gorm:"column:location;size:255"`
	Notes        string    `gorm:"column:notes;type:text"`
	Availability string    `gorm:"column:availability;size:16"`
	Recurrence   string    `gorm:"column:recurrence;size:255"`
	Exceptions   string    `gorm:"column:exceptions;type:text"`
	Marker       string    `gorm:"column:marker;size:512"`
}

func (entryRow) TableName() string { return "entries" }

var (
	calendarColumns = []string{"id", "title", "account"}
	entryColumns    = []string{"id", "calendar_id", "start_at", "time_zone", "end_at", "all_day", "title", "location", "notes", "availability", "recurrence", "exceptions", "marker"}
)

func toRow(e *calendar.Entry) entryRow {
	return entryRow{
		ID:           e.ID,
		CalendarID:   e.CollectionID,
		StartAt:      e.Start.UTC(),
		TimeZone:     zoneName(e.Start),
		EndAt:        e.End.UTC(),
		AllDay:       e.AllDay,
		Title:        e.Title,
		Location:     e.Location,
		Notes:        e.Notes,
		Availability: string(e.Availability),
		Recurrence:   e.Recurrence,
		Exceptions:   joinTimes(e.Exceptions),
		Marker:       e.Marker,
	}
}

// entry restores the row. Times come back in the zone they were saved in,
// so recurrence rules expand on the original wall clock.
func (r entryRow) entry() calendar.Entry {
	loc := time.UTC
	if r.TimeZone != "" {
		if l, err := time.LoadLocation(r.TimeZone); err == nil {
			loc = l
		}
	}
	return calendar.Entry{
		ID:           r.ID,
		CollectionID: r.CalendarID,
		Start:        r.StartAt.In(loc),
		End:          r.EndAt.In(loc),
		AllDay:       r.AllDay,
		Title:        r.Title,
		Location:     r.Location,
		Notes:        r.Notes,
		Availability: calendar.Availability(r.Availability),
		Recurrence:   r.Recurrence,
		Exceptions:   splitTimes(r.Exceptions),
		Marker:       r.Marker,
	}
}

func zoneName(t time.Time) string {
	switch name := t.Location().String(); name {
	case "UTC", "Local":
		return ""
	default:
		return name
	}
}

// joinTimes stores exceptions as comma separated RFC 3339 UTC values.
func joinTimes(ts []time.Time) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.UTC().Format(time.RFC3339)
	}
	return strings.Join(parts, ",")
}

func splitTimes(v string) []time.Time {
	if v == "" {
		return nil
	}
	var out []time.Time
	for _, part := range strings.Split(v, ",") {
		if t, err := time.Parse(time.RFC3339, part); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func (r calendarRow) collection() calendar.Collection {
	return calendar.Collection{ID: r.ID, Title: r.Title, Account: r.Account}
}
