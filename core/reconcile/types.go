package reconcile

import (
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/fingerprint"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate copies a source entry into a new destination entry.
	ActionCreate ActionType = "create"
	// ActionUpdate rewrites an owned destination entry from its source.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an owned destination entry whose source is gone.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Source is the originating entry. Nil for ActionDelete.
	Source *calendar.Entry `json:"source,omitempty"`

	// Destination is the owned destination entry. Nil for ActionCreate.
	Destination *calendar.Entry `json:"destination,omitempty"`

	// Fingerprint is the digest written into the new marker.
	// Empty for ActionDelete.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Subject returns the entry the action is reported against.
func (a Action) Subject() *calendar.Entry {
	if a.Source != nil {
		return a.Source
	}
	return a.Destination
}

// Options controls how entries are compared and copied.
type Options struct {
	// Prefix identifies markers owned by this sync relationship.
	Prefix string

	// Fields selects the optional fields that are synced.
	Fields fingerprint.Fields

	// DryRun logs every action but issues no mutation and no commit.
	DryRun bool

	// Verbose logs every action at info level instead of debug.
	Verbose bool
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Spec defines one reconciliation run between two collections.
type Spec struct {
	// Backend provides access to both collections.
	Backend calendar.Backend

	Source      calendar.Collection
	Destination calendar.Collection

	// SourceWindow bounds the source entries that are mirrored.
	SourceWindow Window

	// DestinationWindow bounds the destination entries that are inspected. It
	// is usually wider than SourceWindow so copies that fell out of the source
	// window are cleaned up.
	DestinationWindow Window

	Options Options
}

// ReconcilePlan contains the planned actions of one pass.
type ReconcilePlan struct {
	// Actions contains planned mutation operations. Creates and updates
	// follow source order; deletes follow destination order and come last.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// IsEmpty reports whether the destination is already up to date.
func (p *ReconcilePlan) IsEmpty() bool {
	return len(p.Actions) == 0
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// SourceEntries counts fetched source entries, occurrences included.
	SourceEntries int `json:"source_entries"`

	// DistinctSource counts source entries after recurring series dedupe.
	DistinctSource int `json:"distinct_source"`

	// DestinationEntries counts fetched destination entries.
	DestinationEntries int `json:"destination_entries"`

	// Owned counts distinct destination entries carrying the prefix.
	Owned int `json:"owned"`

	// Foreign counts destination entries not owned by this relationship.
	Foreign int `json:"foreign"`

	// Malformed counts owned entries whose marker could not be parsed.
	Malformed int `json:"malformed"`

	Creates   int `json:"creates"`
	Updates   int `json:"updates"`
	Deletes   int `json:"deletes"`
	Unchanged int `json:"unchanged"`
}

// ApplyResult reports what ApplyPlan did.
type ApplyResult struct {
	// Executed counts actions whose mutation was issued successfully.
	Executed int `json:"executed"`

	// Failed counts actions that returned an error.
	Failed int `json:"failed"`

	// Committed reports whether the batch was committed.
	Committed bool `json:"committed"`

	// DryRun reports that no mutation was issued.
	DryRun bool `json:"dry_run"`

	// Errors aggregates every failure. With per-item backends it may hold
	// more than the first error returned by ApplyPlan.
	Errors error `json:"-" yaml:"-"`
}
