package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/core/delivery"
	"github.com/example/followup/internal/ports/primary"
)

// DeliveryAdapter renders the delivery audit trail.
type DeliveryAdapter struct {
	service primary.DeliveryService
	out     io.Writer
}

// NewDeliveryAdapter creates a new DeliveryAdapter.
func NewDeliveryAdapter(service primary.DeliveryService, out io.Writer) *DeliveryAdapter {
	return &DeliveryAdapter{service: service, out: out}
}

// List lists delivery records, newest first.
func (a *DeliveryAdapter) List(ctx context.Context, obligationID, outcome string, limit int) error {
	records, err := a.service.ListDeliveries(ctx, primary.DeliveryFilters{
		ObligationID: obligationID,
		Outcome:      strings.ToLower(outcome),
		Limit:        limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list deliveries: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(a.out, "No deliveries found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SENT AT\tDAY\tOBLIGATION\tCHANNEL\tRECIPIENT\tTIER\tOUTCOME")
	fmt.Fprintln(w, "-------\t---\t----------\t-------\t---------\t----\t-------")
	for _, r := range records {
		outcome := color.New(color.FgGreen).Sprint(r.Outcome)
		if r.Outcome == delivery.OutcomeFailed {
			outcome = color.New(color.FgRed).Sprint(r.Outcome)
			if r.ErrorDetail != "" {
				outcome += " (" + truncate(r.ErrorDetail, 60) + ")"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SentAt.Local().Format("2006-01-02 15:04"),
			calendar.Format(r.SentOn),
			r.ObligationID,
			r.Channel,
			r.Recipient,
			r.Tier,
			outcome,
		)
	}
	return w.Flush()
}
