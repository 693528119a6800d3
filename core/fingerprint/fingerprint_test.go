package fingerprint_test

import (
	"strings"
	"testing"
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/fingerprint"

	"github.com/stretchr/testify/assert"
)

func sampleEntry() calendar.Entry {
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return calendar.Entry{
		ID:           "src-1",
		Start:        start,
		End:          start.Add(90 * time.Minute),
		Title:        "Planning",
		Location:     "Room 4",
		Notes:        "bring slides",
		Availability: calendar.AvailabilityBusy,
	}
}

func TestSum(t *testing.T) {
	h1 := fingerprint.Sum("Some data to hash")
	h2 := fingerprint.Sum("Some other data to hash")
	h3 := fingerprint.Sum("Some data to hash")

	assert.NotEmpty(t, h1)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, h1, h3)
	assert.Len(t, h1, fingerprint.Length)
	assert.NotContains(t, h1, ":")
}

func TestCompute_Deterministic(t *testing.T) {
	e := sampleEntry()
	fields := fingerprint.AllFields()

	first := fingerprint.Compute(e, fields)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, fingerprint.Compute(e, fields))
	}
}

func TestCompute_IgnoresIdentityAndMarker(t *testing.T) {
	e := sampleEntry()
	other := e
	other.ID = "different"
	other.CollectionID = "elsewhere"
	other.Marker = "cal-sync:abc:def"
	other.Recurrence = "FREQ=DAILY"

	assert.Equal(t, fingerprint.Compute(e, fingerprint.AllFields()), fingerprint.Compute(other, fingerprint.AllFields()))
}

func TestCompute_ChangesWithEnabledFields(t *testing.T) {
	base := sampleEntry()
	fields := fingerprint.AllFields()
	want := fingerprint.Compute(base, fields)

	tests := []struct {
		name   string
		mutate func(e *calendar.Entry)
	}{
		{"start", func(e *calendar.Entry) { e.Start = e.Start.Add(time.Minute) }},
		{"end", func(e *calendar.Entry) { e.End = e.End.Add(time.Minute) }},
		{"all day", func(e *calendar.Entry) { e.AllDay = true }},
		{"title", func(e *calendar.Entry) { e.Title = "Retro" }},
		{"location", func(e *calendar.Entry) { e.Location = "Room 5" }},
		{"notes", func(e *calendar.Entry) { e.Notes = "" }},
		{"availability", func(e *calendar.Entry) { e.Availability = calendar.AvailabilityTentative }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			assert.NotEqual(t, want, fingerprint.Compute(e, fields))
		})
	}
}

func TestCompute_DisabledFieldsAreIgnored(t *testing.T) {
	base := sampleEntry()
	fields := fingerprint.Fields{}
	want := fingerprint.Compute(base, fields)

	e := base
	e.Title = "Something else"
	e.Location = "Elsewhere"
	e.Notes = "other notes"
	e.Availability = calendar.AvailabilityFree

	assert.Equal(t, want, fingerprint.Compute(e, fields))
}

func TestCompute_FieldGating(t *testing.T) {
	e := sampleEntry()
	all := fingerprint.AllFields()
	original := fingerprint.Compute(e, all)

	noTitle := all
	noTitle.Title = false
	gated := fingerprint.Compute(e, noTitle)
	assert.NotEqual(t, original, gated)

	// Only the title segment differs.
	a := strings.Split(fingerprint.Canonical(e, all), fingerprint.Separator)
	b := strings.Split(fingerprint.Canonical(e, noTitle), fingerprint.Separator)
	assert.Len(t, b, len(a))
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	assert.Equal(t, 1, diff)

	// Re-enabling restores the original digest.
	assert.Equal(t, original, fingerprint.Compute(e, all))
}

func TestCompute_DisabledTitleDiffersFromEmptyTitle(t *testing.T) {
	e := sampleEntry()
	e.Title = ""

	enabled := fingerprint.AllFields()
	disabled := enabled
	disabled.Title = false

	assert.NotEqual(t, fingerprint.Compute(e, enabled), fingerprint.Compute(e, disabled))
}

func TestCompute_DisabledAvailabilityDiffersFromFree(t *testing.T) {
	e := sampleEntry()
	e.Availability = calendar.AvailabilityFree

	enabled := fingerprint.AllFields()
	disabled := enabled
	disabled.Availability = false

	assert.NotEqual(t, fingerprint.Compute(e, enabled), fingerprint.Compute(e, disabled))
}

func TestCompute_TimezoneIndependent(t *testing.T) {
	e := sampleEntry()
	loc := time.FixedZone("UTC+2", 2*60*60)
	shifted := e
	shifted.Start = e.Start.In(loc)
	shifted.End = e.End.In(loc)

	assert.Equal(t, fingerprint.Compute(e, fingerprint.AllFields()), fingerprint.Compute(shifted, fingerprint.AllFields()))
}
