// Package reconcile mirrors one calendar collection into another.
//
// A pass has two phases. Reconcile compares the entries fetched from both
// collections and produces a ReconcilePlan; it never touches a backend. ApplyPlan
// then executes the plan against the destination, honoring the backend's
// commit mode and the dry-run option.
//
// Destination entries are matched to their source through a marker of the form
// prefix:digest:sourceID. Entries without the configured prefix are foreign and
// are never modified. The digest is the fingerprint of the governed source
// fields at the time of the last copy, so an unchanged source entry produces no
// action.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Backend:     backend,
//	    Source:      source,
//	    Destination: destination,
//	    Options:     reconcile.Options{Prefix: "cal-sync", Fields: fingerprint.AllFields()},
//	}
//	spec.SourceWindow, spec.DestinationWindow = reconcile.Windows(time.Now(), 7, 14, 200)
//
//	plan, result, err := reconcile.ReconcileAndApply(ctx, spec, log)
package reconcile
