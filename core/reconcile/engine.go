package reconcile

import (
	"fmt"

	"cal-sync/core/calendar"
	"cal-sync/core/fingerprint"
	"cal-sync/core/marker"
)

// owned is a destination entry carrying the configured prefix.
type owned struct {
	entry     calendar.Entry
	marker    marker.Marker
	key       string
	duplicate bool
	matched   bool
}

// destinationIndex maps source identifiers to owned destination entries and
// remembers the order in which they were enumerated.
type destinationIndex struct {
	byKey map[string]*owned
	order []*owned
}

// Reconcile computes the actions that bring destination in line with source.
// It is read-only and never fails; fetching is the caller's concern.
func Reconcile(source, destination []calendar.Entry, opts Options) *ReconcilePlan {
	plan := &ReconcilePlan{}
	plan.Summary.SourceEntries = len(source)
	plan.Summary.DestinationEntries = len(destination)

	index := buildIndex(destination, opts.Prefix, &plan.Summary)

	seen := make(map[string]struct{}, len(source))
	for i := range source {
		src := source[i]

		// Only the first occurrence of a recurring series is processed.
		if _, ok := seen[src.ID]; ok {
			continue
		}
		seen[src.ID] = struct{}{}
		plan.Summary.DistinctSource++

		digest := fingerprint.Compute(src, opts.Fields)

		dst, ok := index.byKey[src.ID]
		if !ok {
			plan.Actions = append(plan.Actions, Action{
				Type:        ActionCreate,
				Source:      &src,
				Fingerprint: digest,
				Reason:      "new",
			})
			plan.Summary.Creates++
			continue
		}

		delete(index.byKey, src.ID)
		dst.matched = true

		if dst.marker.Digest == "" || dst.marker.Digest != digest {
			dstEntry := dst.entry
			plan.Actions = append(plan.Actions, Action{
				Type:        ActionUpdate,
				Source:      &src,
				Destination: &dstEntry,
				Fingerprint: digest,
				Reason:      changeReason(dst.marker, digest),
			})
			plan.Summary.Updates++
			continue
		}
		plan.Summary.Unchanged++
	}

	for _, dst := range index.order {
		if dst.matched {
			continue
		}
		dstEntry := dst.entry
		reason := "source removed"
		if dst.duplicate {
			reason = fmt.Sprintf("duplicate copy of %s", dst.key)
		}
		plan.Actions = append(plan.Actions, Action{
			Type:        ActionDelete,
			Destination: &dstEntry,
			Reason:      reason,
		})
		plan.Summary.Deletes++
	}

	return plan
}

// buildIndex indexes owned destination entries by the source identifier in
// their marker. Malformed owned markers are keyed by the entry's own ID so they
// are still tracked and eventually removed. Occurrences of one destination
// series are indexed once. When several distinct entries claim the same
// source, the first one wins and the rest are flagged as duplicates.
func buildIndex(destination []calendar.Entry, prefix string, summary *PlanSummary) *destinationIndex {
	index := &destinationIndex{byKey: make(map[string]*owned)}
	seen := make(map[string]struct{}, len(destination))

	for _, e := range destination {
		m, ok := marker.Parse(e.Marker, prefix)
		if !ok {
			summary.Foreign++
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		summary.Owned++

		key := m.SourceID
		if !m.Valid {
			summary.Malformed++
			key = e.ID
		}

		o := &owned{entry: e, marker: m, key: key}
		index.order = append(index.order, o)
		if _, exists := index.byKey[key]; exists {
			o.duplicate = true
			continue
		}
		index.byKey[key] = o
	}
	return index
}

func changeReason(m marker.Marker, digest string) string {
	if m.Digest == "" {
		return "malformed marker"
	}
	return fmt.Sprintf("changed: %s -> %s", m.Digest, digest)
}
