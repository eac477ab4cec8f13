package cmd

import (
	"fmt"

	"parent-reconciler/core/config"
	"parent-reconciler/core/database"
	"parent-reconciler/core/logger"
	"parent-reconciler/core/search"
	"parent-reconciler/feature/parents"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// healthCmd checks connectivity to the configured record store.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the configured record store",
	Long: `Poll the record store until it reports healthy, retrying while it is unreachable.
With the sql driver, also verify that the mirrored tables carry every column the audit reads.`,
	RunE: runHealth,
}

func init() {
	RootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	client, release, err := connect(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer release()

	sqlClient, ok := client.(*database.SQLClient)
	if !ok {
		l.Info("Health check finished", zap.String("driver", cfg.Search.Driver))
		return nil
	}

	adapter := parents.NewAdapter(cfg.Audit)
	queries := []search.Query{adapter.PrimaryQuery(), adapter.ExistenceQuery([]int64{0})}
	incomplete := false
	for _, q := range queries {
		missing, err := sqlClient.Verify(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", q.Index, err)
		}
		if len(missing) > 0 {
			incomplete = true
			l.Error("Table is missing columns", zap.String("index", q.Index), zap.Strings("columns", missing))
			continue
		}
		l.Info("Table schema OK", zap.String("index", q.Index))
	}
	if incomplete {
		return fmt.Errorf("mirrored tables are missing columns")
	}
	return nil
}
