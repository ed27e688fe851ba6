package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/followup/internal/cli"
	"github.com/example/followup/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "followup",
		Short:   "followup - reminders for promises you made",
		Version: version.String(),
		Long: `followup tracks follow-up obligations and escalates them by email,
WhatsApp or SMS as their due dates approach and pass.`,
		PersistentPreRunE: cli.Bootstrap,
		SilenceUsage:      true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./followup.yaml or ~/.followup/config.yaml)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Log deliveries instead of sending them")

	// Engine
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.EscalateCmd())
	rootCmd.AddCommand(cli.ReleaseCmd())

	// Entity commands
	rootCmd.AddCommand(cli.ObligationCmd())
	rootCmd.AddCommand(cli.DeliveryCmd())

	// Developer tools
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
