// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the scheduler and the CLI drive the core.
package primary

import (
	"context"
	"fmt"
	"time"
)

// Pass names.
const (
	PassEscalation    = "escalation"
	PassSnoozeRelease = "snooze-release"
)

// EscalationService defines the primary port for the escalation pass.
type EscalationService interface {
	// RunEscalationPass reminds every eligible Pending obligation at most once
	// per channel for today. Per-obligation failures are counted, not returned.
	RunEscalationPass(ctx context.Context) (*PassReport, error)
}

// SnoozeService defines the primary port for the snooze-release pass.
type SnoozeService interface {
	// RunSnoozeReleasePass returns every Snoozed obligation whose snooze date
	// has arrived to Pending.
	RunSnoozeReleasePass(ctx context.Context) (*PassReport, error)
}

// PassReport summarises one pass.
type PassReport struct {
	Pass       string
	Today      time.Time
	Candidates int
	Sent       int // delivery attempts that succeeded
	Failed     int // delivery attempts that failed
	Released   int // obligations moved from Snoozed to Pending
	Skipped    int
	Errors     int
}

// String renders the report for logs and CLI output.
func (r PassReport) String() string {
	if r.Pass == PassSnoozeRelease {
		return fmt.Sprintf("%s: %d candidates, %d released, %d skipped, %d errors",
			r.Pass, r.Candidates, r.Released, r.Skipped, r.Errors)
	}
	return fmt.Sprintf("%s: %d candidates, %d sent, %d failed, %d skipped, %d errors",
		r.Pass, r.Candidates, r.Sent, r.Failed, r.Skipped, r.Errors)
}
