package checks

import (
	"sort"

	"cal-sync/core/calendar"
	"cal-sync/core/fingerprint"
	"cal-sync/core/marker"
)

// MarkerReport classifies the destination entries of one relationship.
// Entry lists hold destination entry IDs.
type MarkerReport struct {
	Status     string   `json:"status" yaml:"status"`
	Owned      int      `json:"owned" yaml:"owned"`
	Foreign    int      `json:"foreign" yaml:"foreign"`
	Current    int      `json:"current" yaml:"current"`
	Stale      []string `json:"stale" yaml:"stale"`
	Orphaned   []string `json:"orphaned" yaml:"orphaned"`
	Malformed  []string `json:"malformed" yaml:"malformed"`
	Duplicates []string `json:"duplicates" yaml:"duplicates"`
}

// Healthy reports whether the next run would find nothing to repair.
func (r *MarkerReport) Healthy() bool {
	return len(r.Stale)+len(r.Orphaned)+len(r.Malformed)+len(r.Duplicates) == 0
}

// CheckMarkers compares the markers found in destination with the live source
// entries. Occurrences of one series are counted once on both sides.
func CheckMarkers(source, destination []calendar.Entry, prefix string, fields fingerprint.Fields) *MarkerReport {
	digests := make(map[string]string)
	for _, e := range source {
		if _, ok := digests[e.ID]; !ok {
			digests[e.ID] = fingerprint.Compute(e, fields)
		}
	}

	report := &MarkerReport{
		Stale:      []string{},
		Orphaned:   []string{},
		Malformed:  []string{},
		Duplicates: []string{},
	}
	seen := make(map[string]struct{})
	claimed := make(map[string]struct{})
	for _, e := range destination {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}

		m, owned := marker.Parse(e.Marker, prefix)
		if !owned {
			report.Foreign++
			continue
		}
		report.Owned++
		if !m.Valid {
			report.Malformed = append(report.Malformed, e.ID)
			continue
		}
		if _, dup := claimed[m.SourceID]; dup {
			report.Duplicates = append(report.Duplicates, e.ID)
			continue
		}
		claimed[m.SourceID] = struct{}{}

		live, ok := digests[m.SourceID]
		switch {
		case !ok:
			report.Orphaned = append(report.Orphaned, e.ID)
		case live != m.Digest:
			report.Stale = append(report.Stale, e.ID)
		default:
			report.Current++
		}
	}

	for _, list := range [][]string{report.Stale, report.Orphaned, report.Malformed, report.Duplicates} {
		sort.Strings(list)
	}
	report.Status = "ok"
	if !report.Healthy() {
		report.Status = "drift"
	}
	return report
}
