package parents

import (
	"context"
	"fmt"

	"parent-reconciler/core/logger"
	"parent-reconciler/core/reconcile"
	"parent-reconciler/core/scroll"
	"parent-reconciler/core/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunOptions controls one audit.
type RunOptions struct {
	// Count logs the number of candidate records before scanning.
	Count bool
}

// Service runs parent-reference audits.
type Service struct {
	client   search.Client
	scroller *scroll.Scroller
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a new parents service.
func NewService(client search.Client, cfg Config, logger *zap.Logger, opts ...scroll.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		scroller: scroll.New(client, logger, opts...),
		cfg:      cfg,
		logger:   logger,
	}
}

// Run audits the configured partition and returns the complete report.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*reconcile.Report, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit config: %w", err)
	}

	runID := uuid.NewString()
	l := logger.WithRunID(s.logger, runID)
	l.Info("Starting parent reconciliation",
		zap.Int64("partition_id", s.cfg.PartitionID),
		zap.Int64("import_position", s.cfg.ImportPosition),
		zap.String("record_index", s.cfg.RecordIndex),
		zap.String("target_index", s.cfg.TargetIndex),
	)

	engine := reconcile.NewEngine(NewAdapter(s.cfg), s.client, s.scroller, l, reconcile.Options{
		RunID: runID,
		Count: opts.Count,
		OnPage: func(p reconcile.PageProgress) {
			l.Info("Non existing parents after current page",
				zap.Int("page", p.Page),
				zap.Int("records", p.Records),
				zap.Int("anomalies", p.Anomalies),
				zap.Int64s("missing", p.Missing),
				zap.Int64s("orphans", p.Orphans),
			)
		},
	})

	report, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}

	l.Info("Parent reconciliation finished",
		zap.Int("pages", report.Summary.Pages),
		zap.Int("records", report.Summary.Records),
		zap.Int("orphans", report.Summary.Orphans),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}
