package fingerprint

import (
	"crypto/sha1"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"cal-sync/core/calendar"
)

// Separator joins the digest segments. It does not occur in calendar data.
const Separator = ";;##--##;;"

// Length is the number of characters of a digest.
const Length = 27

// Fields selects which optional entry fields participate in a sync.
type Fields struct {
	Title        bool `json:"title"`
	Location     bool `json:"location"`
	Notes        bool `json:"notes"`
	Availability bool `json:"availability"`
}

// AllFields enables every optional field.
func AllFields() Fields {
	return Fields{Title: true, Location: true, Notes: true, Availability: true}
}

// Compute returns the digest of e under fields. It is a pure function.
func Compute(e calendar.Entry, fields Fields) string {
	return Sum(Canonical(e, fields))
}

// Canonical builds the string that Compute hashes.
func Canonical(e calendar.Entry, fields Fields) string {
	segments := []string{
		e.Start.UTC().Format(time.RFC3339Nano) + " to " + e.End.UTC().Format(time.RFC3339Nano) +
			" all-day " + strconv.FormatBool(e.AllDay),
		segment("title", fields.Title, e.Title),
		segment("location", fields.Location, e.Location),
	}

	// Disabled availability is synced as free, but must not hash like an
	// entry that really is free.
	if fields.Availability {
		segments = append(segments, "availability="+string(e.Availability))
	} else {
		segments = append(segments, "availability!"+string(calendar.AvailabilityFree))
	}

	segments = append(segments, segment("notes", fields.Notes, e.Notes))
	return strings.Join(segments, Separator)
}

// Sum hashes data into a fixed-length printable digest without ':'.
func Sum(data string) string {
	h := sha1.Sum([]byte(data))
	return base64.RawStdEncoding.EncodeToString(h[:])
}

func segment(name string, enabled bool, value string) string {
	if !enabled {
		return name + "!"
	}
	return name + "=" + value
}
