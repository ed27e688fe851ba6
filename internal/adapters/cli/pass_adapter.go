package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/example/followup/internal/ctxutil"
	"github.com/example/followup/internal/ports/primary"
)

// PassAdapter runs a single pass on demand and prints its report.
type PassAdapter struct {
	escalation primary.EscalationService
	snooze     primary.SnoozeService
	out        io.Writer
}

// NewPassAdapter creates a new PassAdapter.
func NewPassAdapter(escalation primary.EscalationService, snooze primary.SnoozeService, out io.Writer) *PassAdapter {
	return &PassAdapter{escalation: escalation, snooze: snooze, out: out}
}

// Escalate runs one escalation pass.
func (a *PassAdapter) Escalate(ctx context.Context) error {
	ctx = ctxutil.WithTickID(ctxutil.WithPass(ctx, primary.PassEscalation), uuid.NewString())
	report, err := a.escalation.RunEscalationPass(ctx)
	if err != nil {
		return fmt.Errorf("escalation pass failed: %w", err)
	}
	a.print(report)
	return nil
}

// Release runs one snooze-release pass.
func (a *PassAdapter) Release(ctx context.Context) error {
	ctx = ctxutil.WithTickID(ctxutil.WithPass(ctx, primary.PassSnoozeRelease), uuid.NewString())
	report, err := a.snooze.RunSnoozeReleasePass(ctx)
	if err != nil {
		return fmt.Errorf("snooze-release pass failed: %w", err)
	}
	a.print(report)
	return nil
}

func (a *PassAdapter) print(r *primary.PassReport) {
	mark := "✓"
	if r.Errors > 0 || r.Failed > 0 {
		mark = "!"
	}
	fmt.Fprintf(a.out, "%s %s\n", mark, r.String())
}
