package marker

import "strings"

// Sep separates the marker parts.
const Sep = ":"

// Marker is the parsed form of an ownership marker.
type Marker struct {
	Prefix   string
	Digest   string
	SourceID string
	// Valid is false for owned markers that could not be split into all
	// three parts.
	Valid bool
}

// New returns a well-formed marker.
func New(prefix, digest, sourceID string) Marker {
	return Marker{Prefix: prefix, Digest: digest, SourceID: sourceID, Valid: true}
}

// String renders the external form.
func (m Marker) String() string {
	return m.Prefix + Sep + m.Digest + Sep + m.SourceID
}

// Owned reports whether raw belongs to the sync relationship named prefix.
// The prefix must be followed by the separator or end the string, so
// "cal-sync" does not claim markers written with prefix "cal-sync-work".
func Owned(raw, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(raw, prefix) {
		return false
	}
	rest := raw[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, Sep)
}

// Parse parses raw for prefix. ok is false when raw is foreign. An owned marker
// that is not well formed is returned with Valid unset; whatever digest could
// be read is kept.
func Parse(raw, prefix string) (m Marker, ok bool) {
	if !Owned(raw, prefix) {
		return Marker{}, false
	}
	parts := strings.SplitN(raw, Sep, 3)
	m.Prefix = prefix
	if len(parts) >= 2 {
		m.Digest = parts[1]
	}
	if len(parts) == 3 && parts[1] != "" && parts[2] != "" {
		m.SourceID = parts[2]
		m.Valid = true
	}
	return m, true
}
