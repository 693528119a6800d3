// Package sync runs the configured sync relationship.
//
// Service checks the configuration, backend access and both collections
// before anything is mutated, then hands the pass to core/reconcile. Runs are
// serialized so the HTTP API and the cron schedule never overlap.
//
// # Routes
//
//   - POST /sync: run a pass and return the report
//   - GET /sync/plan: return the actions a pass would perform
package sync
