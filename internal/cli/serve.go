package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/followup/internal/version"
)

// ServeCmd returns the serve command, which runs both timers until interrupted.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the escalation and snooze-release timers",
		Long: `Run the engine in the foreground.

The escalation pass sends reminders for Pending obligations that are due
within the reminder window or overdue. The snooze-release pass returns
Snoozed obligations to Pending once their snooze date arrives. Each timer
runs at most one tick at a time. SIGINT or SIGTERM stops new ticks and waits
for any tick in flight.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			channels := make([]string, len(c.Notifiers))
			for i, n := range c.Notifiers {
				channels[i] = n.Channel()
			}
			build := version.Get()
			logger.Info("followup engine starting",
				zap.String("commit", build.Short()),
				zap.String("build_time", build.BuildTime),
				zap.String("database", string(c.Dialect)),
				zap.Strings("channels", channels),
				zap.Bool("dry_run", cfg.DryRun),
				zap.Duration("escalation_interval", cfg.EscalationInterval()),
				zap.Duration("snooze_interval", cfg.SnoozeInterval()),
				zap.String("timezone", cfg.Location().String()),
			)
			if len(channels) == 0 {
				logger.Warn("no delivery channels configured; escalation passes will skip every obligation")
			}

			if err := c.Scheduler.Start(ctx); err != nil {
				return fmt.Errorf("scheduler stopped: %w", err)
			}
			logger.Info("followup engine stopped")
			_ = logger.Sync()
			return nil
		},
	}
}

// EscalateCmd returns the escalate command, which runs one escalation pass.
func EscalateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "escalate",
		Short: "Run one escalation pass now",
		Long: `Run one escalation pass now and print its report.

The pass runs in this process, outside the single-flight lock held by a
running "followup serve". Do not run it while serve is up: both passes can
send the same reminder before the store rejects the second sent record.
Use "followup serve" with scheduler.run_on_start for an immediate pass instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.PassAdapter(cmd.OutOrStdout()).Escalate(cmd.Context())
		},
	}
}

// ReleaseCmd returns the release command, which runs one snooze-release pass.
func ReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Run one snooze-release pass now",
		Long: `Run one snooze-release pass now and print its report.

The pass runs in this process, outside the single-flight lock held by a
running "followup serve". Releases are version-checked, so a concurrent
serve tick loses cleanly, but avoid running both at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.PassAdapter(cmd.OutOrStdout()).Release(cmd.Context())
		},
	}
}
