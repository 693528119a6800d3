package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cal-sync/core/calendar"
	"cal-sync/core/marker"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ReconcileWithPlan fetches both collections and returns the planned actions.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, spec *Spec) (*ReconcilePlan, error) {
	destination, err := spec.Backend.FetchEntries(ctx, spec.Destination, spec.DestinationWindow.Start, spec.DestinationWindow.End)
	if err != nil {
		return nil, fmt.Errorf("fetch destination entries: %w", err)
	}

	source, err := spec.Backend.FetchEntries(ctx, spec.Source, spec.SourceWindow.Start, spec.SourceWindow.End)
	if err != nil {
		return nil, fmt.Errorf("fetch source entries: %w", err)
	}

	return Reconcile(source, destination, spec.Options), nil
}

// ApplyPlan executes the actions of plan against the destination collection.
//
// Atomic backends get every mutation staged and committed as one batch; the
// first failure discards the batch and is returned. Per-item backends get every
// action attempted and committed on its own; the first failure is returned
// and all failures are collected in ApplyResult.Errors.
func ApplyPlan(ctx context.Context, spec *Spec, plan *ReconcilePlan, log *zap.Logger) (*ApplyResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	result := &ApplyResult{DryRun: spec.Options.DryRun}

	if spec.Options.DryRun {
		for _, action := range plan.Actions {
			logAction(log, spec.Options, action, "TEST MODE -> ")
		}
		return result, nil
	}
	if plan.IsEmpty() {
		return result, nil
	}

	if spec.Backend.CommitMode() == calendar.CommitPerItem {
		return applyPerItem(ctx, spec, plan, log, result)
	}
	return applyAtomic(ctx, spec, plan, log, result)
}

// ReconcileAndApply is a convenience wrapper that plans and applies actions.
func ReconcileAndApply(ctx context.Context, spec *Spec, log *zap.Logger) (*ReconcilePlan, *ApplyResult, error) {
	plan, err := ReconcileWithPlan(ctx, spec)
	if err != nil {
		return nil, nil, err
	}

	result, err := ApplyPlan(ctx, spec, plan, log)
	return plan, result, err
}

func applyAtomic(ctx context.Context, spec *Spec, plan *ReconcilePlan, log *zap.Logger, result *ApplyResult) (*ApplyResult, error) {
	for _, action := range plan.Actions {
		logAction(log, spec.Options, action, "")
		if err := applyAction(ctx, spec, action, false); err != nil {
			result.Failed++
			result.Errors = err
			discard(ctx, spec.Backend, log)
			return result, err
		}
		result.Executed++
	}

	if err := spec.Backend.CommitBatch(ctx); err != nil {
		err = fmt.Errorf("commit batch: %w", err)
		result.Errors = err
		discard(ctx, spec.Backend, log)
		return result, err
	}
	result.Committed = true
	return result, nil
}

func applyPerItem(ctx context.Context, spec *Spec, plan *ReconcilePlan, log *zap.Logger, result *ApplyResult) (*ApplyResult, error) {
	var first error
	for _, action := range plan.Actions {
		logAction(log, spec.Options, action, "")
		if err := applyAction(ctx, spec, action, true); err != nil {
			log.Warn("Action failed, continuing", zap.String("type", string(action.Type)), zap.Error(err))
			result.Failed++
			result.Errors = multierr.Append(result.Errors, err)
			if first == nil {
				first = err
			}
			continue
		}
		result.Executed++
	}

	if err := spec.Backend.CommitBatch(ctx); err != nil {
		err = fmt.Errorf("commit batch: %w", err)
		result.Errors = multierr.Append(result.Errors, err)
		if first == nil {
			first = err
		}
	} else {
		result.Committed = true
	}
	return result, first
}

func applyAction(ctx context.Context, spec *Spec, action Action, commit bool) error {
	b := spec.Backend
	switch action.Type {
	case ActionDelete:
		if action.Destination == nil {
			return errors.New("delete action without destination entry")
		}
		if err := b.DeleteEntry(ctx, action.Destination, commit); err != nil {
			return fmt.Errorf("delete %s: %w", action.Destination.ID, err)
		}
	case ActionCreate:
		if action.Source == nil {
			return errors.New("create action without source entry")
		}
		entry, err := b.CreateEntry(ctx, spec.Destination)
		if err != nil {
			return fmt.Errorf("create copy of %s: %w", action.Source.ID, err)
		}
		CopyEntry(entry, *action.Source, action.Fingerprint, spec.Options)
		if err := b.SaveEntry(ctx, entry, commit); err != nil {
			return fmt.Errorf("save copy of %s: %w", action.Source.ID, err)
		}
	case ActionUpdate:
		if action.Source == nil || action.Destination == nil {
			return errors.New("update action without source or destination entry")
		}
		entry := *action.Destination
		CopyEntry(&entry, *action.Source, action.Fingerprint, spec.Options)
		if err := b.SaveEntry(ctx, &entry, commit); err != nil {
			return fmt.Errorf("update %s: %w", entry.ID, err)
		}
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
	return nil
}

// CopyEntry copies the governed fields of src into dst and writes a fresh
// marker. Disabled fields are cleared rather than left stale. A recurring
// copy starts at src, so its rule is re-anchored there.
func CopyEntry(dst *calendar.Entry, src calendar.Entry, digest string, opts Options) {
	dst.Start = src.Start
	dst.End = src.End
	dst.AllDay = src.AllDay
	dst.Recurrence = src.AnchoredRecurrence()
	dst.Exceptions = slices.Clone(src.Exceptions)
	dst.SeriesStart = time.Time{}
	dst.Marker = marker.New(opts.Prefix, digest, src.ID).String()

	dst.Title = ""
	if opts.Fields.Title {
		dst.Title = src.Title
	}
	dst.Location = ""
	if opts.Fields.Location {
		dst.Location = src.Location
	}
	dst.Notes = ""
	if opts.Fields.Notes {
		dst.Notes = src.Notes
	}
	dst.Availability = calendar.AvailabilityFree
	if opts.Fields.Availability {
		dst.Availability = src.Availability
	}
}

func discard(ctx context.Context, b calendar.Backend, log *zap.Logger) {
	if err := b.Reset(ctx); err != nil {
		log.Warn("Failed to discard staged changes", zap.Error(err))
	}
}

func logAction(log *zap.Logger, opts Options, action Action, prefix string) {
	level := zapcore.DebugLevel
	if opts.Verbose || opts.DryRun {
		level = zapcore.InfoLevel
	}
	subject := action.Subject()
	if subject == nil {
		return
	}
	log.Log(level, prefix+actionVerb(action.Type)+" event",
		zap.String("title", subject.Title),
		zap.String("id", subject.ID),
		zap.Time("start", subject.Start),
		zap.String("reason", action.Reason),
	)
}

func actionVerb(t ActionType) string {
	switch t {
	case ActionCreate:
		return "Create"
	case ActionUpdate:
		return "Update"
	case ActionDelete:
		return "Delete"
	default:
		return string(t)
	}
}

// Windows returns the source and destination windows of a run anchored at now.
func Windows(now time.Time, historyDays, futureDays, destinationDays int) (Window, Window) {
	day := 24 * time.Hour
	source := Window{
		Start: now.Add(-time.Duration(historyDays) * day),
		End:   now.Add(time.Duration(futureDays) * day),
	}
	destination := Window{
		Start: now.Add(-time.Duration(destinationDays) * day),
		End:   now.Add(time.Duration(destinationDays) * day),
	}
	// The destination window always covers the source window.
	if source.Start.Before(destination.Start) {
		destination.Start = source.Start
	}
	if source.End.After(destination.End) {
		destination.End = source.End
	}
	return source, destination
}
