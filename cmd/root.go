package cmd

import (
	"fmt"
	"os"

	"parent-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "parent-reconciler",
	Short: "Find process instances whose parent no longer exists",
	Long: `Parent Reconciler scans exported workflow records for child process instances
and reports the parent element instance keys that are missing from the read model.
It never modifies either collection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives ISO8601 timestamps for CLI users
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
