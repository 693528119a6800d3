package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultMaxOccurrences caps how many occurrences one series may produce
// within a window.
const DefaultMaxOccurrences = 5000

// Expand materializes the occurrences of series that overlap [start, end).
// A non-recurring entry is returned unchanged when it overlaps the window.
// Every occurrence keeps the series ID, recurrence rule and exceptions.
// The rule is evaluated in the location of series.Start, so wall clock times
// stay fixed across DST changes.
func Expand(series Entry, start, end time.Time, maxOccurrences int) ([]Entry, error) {
	if !series.IsRecurring() {
		if series.Overlaps(start, end) {
			return []Entry{series}, nil
		}
		return nil, nil
	}
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	rule, err := parseRule(series)
	if err != nil {
		return nil, err
	}
	loc := series.Start.Location()

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range series.Exceptions {
		set.ExDate(ex.In(loc))
	}

	dur := series.End.Sub(series.Start)
	// An occurrence starting up to dur before the window still overlaps it.
	starts := set.Between(start.Add(-dur).In(loc), end.In(loc), true)

	out := make([]Entry, 0, len(starts))
	for _, s := range starts {
		occ := series
		occ.Start = s
		occ.End = s.Add(dur)
		occ.SeriesStart = series.Start
		if !occ.Overlaps(start, end) {
			continue
		}
		out = append(out, occ)
		if len(out) >= maxOccurrences {
			break
		}
	}
	return out, nil
}

// AnchoredRecurrence returns the recurrence rule of e rewritten so that a
// series starting at e.Start ends where the original series ends. Only a
// COUNT bound depends on the anchor; other rules are returned as is.
func (e *Entry) AnchoredRecurrence() string {
	if !e.IsRecurring() || e.SeriesStart.IsZero() || !e.Start.After(e.SeriesStart) {
		return e.Recurrence
	}
	rule, err := rrule.StrToRRule(strings.TrimPrefix(e.Recurrence, "RRULE:"))
	if err != nil || rule.OrigOptions.Count == 0 {
		return e.Recurrence
	}
	rule.DTStart(e.SeriesStart)

	passed := len(rule.Between(e.SeriesStart, e.Start.Add(-time.Second), true))
	remaining := rule.OrigOptions.Count - passed
	if remaining <= 0 {
		remaining = 1
	}

	parts := strings.Split(strings.TrimPrefix(e.Recurrence, "RRULE:"), ";")
	for i, part := range parts {
		if name, _, ok := strings.Cut(part, "="); ok && strings.EqualFold(name, "COUNT") {
			parts[i] = "COUNT=" + strconv.Itoa(remaining)
		}
	}
	return strings.Join(parts, ";")
}

func parseRule(series Entry) (*rrule.RRule, error) {
	rule, err := rrule.StrToRRule(strings.TrimPrefix(series.Recurrence, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("parse recurrence of %s: %w", series.ID, err)
	}
	rule.DTStart(series.Start)
	return rule, nil
}
