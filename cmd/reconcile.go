package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"parent-reconciler/core/config"
	"parent-reconciler/core/logger"
	"parent-reconciler/core/reconcile"
	"parent-reconciler/core/scroll"
	"parent-reconciler/core/storage"
	"parent-reconciler/core/tracing"
	"parent-reconciler/feature/parents"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile parents command
	countParents  bool
	jsonParents   bool
	uploadParents bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile references between record collections",
	Long: `Reconcile references to detect records pointing at entities that do not exist.
Runs are read-only: nothing is purged or repaired.`,
}

// parentsReconcileCmd reports child process instances with a missing parent.
var parentsReconcileCmd = &cobra.Command{
	Use:   "parents",
	Short: "Report parent element instance keys missing from the read model",
	Long: `Scan process-instance records of one partition past the import position and check,
page by page, that each referenced parent element instance exists in the read model.

Examples:
  # Report only
  reconcile parents

  # Log the number of candidate records first and print the report as JSON
  reconcile parents --count --json

  # Publish the report to object storage
  reconcile parents --upload`,
	RunE: runParentsReconcile,
}

func init() {
	reconcileCmd.AddCommand(parentsReconcileCmd)

	parentsReconcileCmd.Flags().BoolVar(&countParents, "count", false, "Count candidate records before scanning")
	parentsReconcileCmd.Flags().BoolVar(&jsonParents, "json", false, "Print the report as JSON on stdout")
	parentsReconcileCmd.Flags().BoolVar(&uploadParents, "upload", false, "Publish the report to object storage")

	RootCmd.AddCommand(reconcileCmd)
}

func runParentsReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	shutdown, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	// Fail before scanning when the report could not be published
	var store storage.Client
	if uploadParents {
		store, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	client, release, err := connect(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer release()

	svc := parents.NewService(client, cfg.Audit, l, scroll.WithKeepAlive(cfg.Search.ScrollKeepAlive))
	report, err := svc.Run(ctx, parents.RunOptions{Count: countParents})
	if err != nil {
		return fmt.Errorf("failed to reconcile parents: %w", err)
	}

	printParentsReport(logger.WithRunID(l, report.RunID), report)

	if jsonParents {
		if err := parents.WriteJSON(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if store != nil {
		name, err := parents.Publish(ctx, store, cfg.Storage, report)
		if err != nil {
			return err
		}
		l.Info("Published report", zap.String("bucket", cfg.Storage.Bucket), zap.String("object", name))
	}

	return nil
}

// printParentsReport prints a formatted reconciliation report using logger.
func printParentsReport(l *zap.Logger, report *reconcile.Report) {
	s := report.Summary

	fields := []zap.Field{
		zap.Int("pages", s.Pages),
		zap.Int("records", s.Records),
		zap.Int("anomalies", s.Anomalies),
		zap.Int("checked_keys", s.CheckedKeys),
		zap.Int("existence_checks", s.ExistenceChecks),
		zap.Int("orphans", s.Orphans),
	}
	if s.Candidates != nil {
		fields = append(fields, zap.Int64("candidates", *s.Candidates))
	}
	l.Info("Reconciliation report", fields...)

	if s.Anomalies > 0 {
		l.Warn("Records without a usable parent key were skipped", zap.Int("count", s.Anomalies))
	}
	l.Info("Non existing parents", zap.Int64s("keys", report.Orphans))
}
