package checks

import (
	"context"
	"time"

	"cal-sync/core/calendar"
)

// BackendReport describes whether the backend can be used.
type BackendReport struct {
	Status     string `json:"status" yaml:"status"`
	CommitMode string `json:"commit_mode" yaml:"commit_mode"`
	Calendars  int    `json:"calendars" yaml:"calendars"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckBackend acquires access and lists the collections of b.
func CheckBackend(ctx context.Context, b calendar.Backend, maxWait time.Duration) *BackendReport {
	report := &BackendReport{Status: "ok", CommitMode: string(b.CommitMode())}

	if err := b.AcquireAccess(ctx, maxWait); err != nil {
		report.Status = "error"
		report.Error = err.Error()
		return report
	}
	collections, err := b.ListCollections(ctx)
	if err != nil {
		report.Status = "error"
		report.Error = err.Error()
		return report
	}
	report.Calendars = len(collections)
	return report
}
