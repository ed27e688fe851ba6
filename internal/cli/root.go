package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/followup/internal/config"
	"github.com/example/followup/internal/logging"
	"github.com/example/followup/internal/wire"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

// Bootstrap loads configuration and the logger before any subcommand runs.
// It is installed as the root command's PersistentPreRunE.
func Bootstrap(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		loaded.DryRun = true
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Development)
	if err != nil {
		return err
	}

	cfg, logger = loaded, l
	wire.Configure(cfg, logger)
	return nil
}

// container returns the wired application, building it on first use.
func container() (*wire.Container, error) {
	return wire.Get()
}
