package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/followup/internal/core/calendar"
	"github.com/example/followup/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
	}
	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture obligations around today",
		Long: `Insert fixture obligations due in 2 days, tomorrow, today, yesterday and
in 10 days, plus one Snoozed obligation whose snooze date has passed.

Run against a scratch database, for example:
  FOLLOWUP_DATABASE_URL=/tmp/followup-dev.db followup dev seed
  FOLLOWUP_DATABASE_URL=/tmp/followup-dev.db followup escalate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			today := calendar.Date(time.Now(), cfg.Location())
			if err := db.SeedFixtures(c.DB, c.Dialect, today); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded fixtures relative to %s\n", calendar.Format(today))
			return nil
		},
	}
}
