// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing and output
// formatting, but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/obligation"
	"github.com/example/followup/internal/ports/primary"
)

// ObligationAdapter is a thin adapter that translates CLI operations to ObligationService calls.
type ObligationAdapter struct {
	service primary.ObligationService
	out     io.Writer
	loc     *time.Location
	now     func() time.Time
}

// NewObligationAdapter creates a new ObligationAdapter. Relative dates are
// resolved against today in loc.
func NewObligationAdapter(service primary.ObligationService, out io.Writer, loc *time.Location) *ObligationAdapter {
	return &ObligationAdapter{
		service: service,
		out:     out,
		loc:     loc,
		now:     time.Now,
	}
}

// AddRequest carries the raw flag values for a new obligation.
type AddRequest struct {
	Source      string
	Contact     string
	Email       string
	Phone       string
	Description string
	Due         string
	Priority    string
}

// Add creates a new obligation.
func (a *ObligationAdapter) Add(ctx context.Context, req AddRequest) error {
	due, err := a.parseDay(req.Due)
	if err != nil {
		return err
	}

	o, err := a.service.CreateObligation(ctx, primary.CreateObligationRequest{
		Source:       canonical(req.Source, obligation.Sources()),
		Contact:      req.Contact,
		ContactEmail: req.Email,
		ContactPhone: req.Phone,
		Description:  req.Description,
		DueDate:      due,
		Priority:     canonical(req.Priority, obligation.Priorities()),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created obligation %s for %s (due %s)\n", o.ID, o.Contact, calendar.Format(o.DueDate))
	return nil
}

// List lists obligations with an optional status filter.
func (a *ObligationAdapter) List(ctx context.Context, status string, limit int) error {
	obligations, err := a.service.ListObligations(ctx, primary.ObligationFilters{
		Status: canonical(status, obligation.Statuses()),
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list obligations: %w", err)
	}

	if len(obligations) == 0 {
		fmt.Fprintln(a.out, "No obligations found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDUE\tSTATUS\tPRIORITY\tCONTACT\tDESCRIPTION")
	fmt.Fprintln(w, "--\t---\t------\t--------\t-------\t-----------")
	for _, o := range obligations {
		status := o.Status
		if o.Status == obligation.StatusSnoozed {
			status += " until " + calendar.Format(o.SnoozeUntil)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID,
			calendar.Format(o.DueDate),
			statusColor(o.Status).Sprint(status),
			o.Priority,
			o.Contact,
			truncate(o.Description, 48),
		)
	}
	return w.Flush()
}

// Show displays details for a single obligation.
func (a *ObligationAdapter) Show(ctx context.Context, id string) (*primary.Obligation, error) {
	o, err := a.service.GetObligation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}

	fmt.Fprintf(a.out, "\nObligation: %s\n", o.ID)
	fmt.Fprintf(a.out, "Contact:     %s\n", o.Contact)
	if o.ContactEmail != "" {
		fmt.Fprintf(a.out, "Email:       %s\n", o.ContactEmail)
	}
	if o.ContactPhone != "" {
		fmt.Fprintf(a.out, "Phone:       %s\n", o.ContactPhone)
	}
	fmt.Fprintf(a.out, "Description: %s\n", o.Description)
	fmt.Fprintf(a.out, "Source:      %s\n", o.Source)
	fmt.Fprintf(a.out, "Priority:    %s\n", o.Priority)
	fmt.Fprintf(a.out, "Due:         %s\n", calendar.Format(o.DueDate))
	fmt.Fprintf(a.out, "Status:      %s\n", statusColor(o.Status).Sprint(o.Status))
	if !o.SnoozeUntil.IsZero() {
		fmt.Fprintf(a.out, "Snoozed to:  %s\n", calendar.Format(o.SnoozeUntil))
	}
	fmt.Fprintf(a.out, "Created:     %s\n", o.CreatedAt.Format(time.RFC3339))
	if !o.CompletedAt.IsZero() {
		fmt.Fprintf(a.out, "Completed:   %s\n", o.CompletedAt.Format(time.RFC3339))
	}
	fmt.Fprintln(a.out)

	return o, nil
}

// Snooze snoozes an obligation until the given day.
func (a *ObligationAdapter) Snooze(ctx context.Context, id, until string) error {
	day, err := a.parseDay(until)
	if err != nil {
		return err
	}
	o, err := a.service.SnoozeObligation(ctx, id, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Obligation %s snoozed until %s\n", o.ID, calendar.Format(o.SnoozeUntil))
	return nil
}

// Done marks an obligation as done.
func (a *ObligationAdapter) Done(ctx context.Context, id string) error {
	o, err := a.service.CompleteObligation(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Obligation %s marked as done\n", o.ID)
	return nil
}

// Reschedule moves an obligation to a new due day.
func (a *ObligationAdapter) Reschedule(ctx context.Context, id, due string) error {
	day, err := a.parseDay(due)
	if err != nil {
		return err
	}
	o, err := a.service.RescheduleObligation(ctx, id, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Obligation %s rescheduled to %s\n", o.ID, calendar.Format(o.DueDate))
	return nil
}

// Delete deletes an obligation and its delivery history.
func (a *ObligationAdapter) Delete(ctx context.Context, id string) error {
	if err := a.service.DeleteObligation(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Obligation %s deleted\n", id)
	return nil
}

// parseDay accepts YYYY-MM-DD, "today", "tomorrow" or "+N" days.
func (a *ObligationAdapter) parseDay(s string) (time.Time, error) {
	today := calendar.Date(a.now(), a.loc)
	switch s = strings.TrimSpace(strings.ToLower(s)); {
	case s == "":
		return time.Time{}, fmt.Errorf("date is required (YYYY-MM-DD, today, tomorrow or +N)")
	case s == "today":
		return today, nil
	case s == "tomorrow":
		return calendar.AddDays(today, 1), nil
	case strings.HasPrefix(s, "+"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid relative date %q: use +N", s)
		}
		return calendar.AddDays(today, n), nil
	}
	return calendar.Parse(s)
}

// canonical maps a case-insensitive flag value onto its stored spelling.
// Unknown values pass through for the service to reject.
func canonical(v string, known []string) string {
	for _, k := range known {
		if strings.EqualFold(v, k) {
			return k
		}
	}
	return v
}

func statusColor(status string) *color.Color {
	switch status {
	case obligation.StatusPending:
		return color.New(color.FgYellow)
	case obligation.StatusSnoozed:
		return color.New(color.FgCyan)
	case obligation.StatusDone:
		return color.New(color.FgGreen)
	}
	return color.New(color.Reset)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
