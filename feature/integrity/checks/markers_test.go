package checks

import (
	"testing"
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/fingerprint"
	"cal-sync/core/marker"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func entry(id, title string) calendar.Entry {
	return calendar.Entry{ID: id, Start: base, End: base.Add(time.Hour), Title: title}
}

func copied(id string, src calendar.Entry, digest string) calendar.Entry {
	e := entry(id, src.Title)
	e.Marker = marker.New("cal-sync", digest, src.ID).String()
	return e
}

func TestCheckMarkers(t *testing.T) {
	fields := fingerprint.AllFields()
	a := entry("a", "A")
	b := entry("b", "B")
	digestA := fingerprint.Compute(a, fields)

	destination := []calendar.Entry{
		copied("x1", a, digestA),
		copied("x1", a, digestA), // second occurrence of one series
		copied("x2", b, "outdated"),
		copied("x3", entry("gone", "Gone"), "whatever"),
		copied("x4", a, digestA),
		{ID: "x5", Marker: "cal-sync:broken"},
		{ID: "f1", Title: "Lunch"},
		{ID: "f2", Marker: "cal-sync-work:d:a"},
	}

	report := CheckMarkers([]calendar.Entry{a, b}, destination, "cal-sync", fields)

	assert.Equal(t, 5, report.Owned)
	assert.Equal(t, 2, report.Foreign)
	assert.Equal(t, 1, report.Current)
	assert.Equal(t, []string{"x2"}, report.Stale)
	assert.Equal(t, []string{"x3"}, report.Orphaned)
	assert.Equal(t, []string{"x5"}, report.Malformed)
	assert.Equal(t, []string{"x4"}, report.Duplicates)
	assert.False(t, report.Healthy())
	assert.Equal(t, "drift", report.Status)
}

func TestCheckMarkers_Healthy(t *testing.T) {
	fields := fingerprint.AllFields()
	a := entry("a", "A")

	report := CheckMarkers([]calendar.Entry{a}, []calendar.Entry{copied("x", a, fingerprint.Compute(a, fields))}, "cal-sync", fields)

	assert.True(t, report.Healthy())
	assert.Equal(t, "ok", report.Status)
	assert.Empty(t, report.Stale)
	assert.NotNil(t, report.Stale)
}
