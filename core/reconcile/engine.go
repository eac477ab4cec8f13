package reconcile

import (
	"context"
	"fmt"
	"time"

	"parent-reconciler/core/scroll"
	"parent-reconciler/core/search"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Engine runs one reconciliation over an adapter's primary and secondary collections.
// An Engine is not safe for concurrent use; create one per run.
type Engine struct {
	adapter  Adapter
	client   search.Client
	scroller *scroll.Scroller
	logger   *zap.Logger
	tracer   trace.Tracer
	opts     Options
	state    State
}

// NewEngine creates an engine. The scroller must be built over client.
func NewEngine(adapter Adapter, client search.Client, scroller *scroll.Scroller, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		adapter:  adapter,
		client:   client,
		scroller: scroller,
		logger:   logger,
		tracer:   otel.Tracer("parent-reconciler/core/reconcile"),
		opts:     opts,
		state:    StateIdle,
	}
}

// State returns the current phase of the run.
func (e *Engine) State() State {
	return e.state
}

// Run scans the primary collection to exhaustion and returns the complete report.
// Any error aborts the run; no partial report is returned.
func (e *Engine) Run(ctx context.Context) (report *Report, err error) {
	runID := e.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	ctx, span := e.tracer.Start(ctx, "reconcile.run", trace.WithAttributes(
		attribute.String("reconcile.adapter", e.adapter.Name()),
		attribute.String("reconcile.run_id", runID),
	))
	defer func() {
		if err != nil {
			e.state = StateIdle
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	report = &Report{
		RunID:     runID,
		Adapter:   e.adapter.Name(),
		StartedAt: time.Now().UTC(),
	}

	primary := e.adapter.PrimaryQuery()
	if e.opts.Count {
		n, err := e.client.Count(ctx, primary.Index, primary.Filter)
		if err != nil {
			return nil, fmt.Errorf("count candidates on %s: %w", primary.Index, err)
		}
		report.Summary.Candidates = &n
		e.logger.Info("Counted candidate records", zap.String("index", primary.Index), zap.Int64("count", n))
	}

	orphans := make(KeySet)
	e.state = StateScanning
	err = e.scroller.Drive(ctx, primary, func(ctx context.Context, page search.Page) error {
		return e.processPage(ctx, page, report, orphans)
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", primary.Index, err)
	}

	report.Orphans = orphans.Sorted()
	report.Summary.Orphans = len(report.Orphans)
	report.FinishedAt = time.Now().UTC()
	e.state = StateDone

	span.SetAttributes(
		attribute.Int("reconcile.pages", report.Summary.Pages),
		attribute.Int("reconcile.orphans", report.Summary.Orphans),
	)
	return report, nil
}

func (e *Engine) processPage(ctx context.Context, page search.Page, report *Report, orphans KeySet) (err error) {
	report.Summary.Pages++
	report.Summary.Records += len(page.Records)
	progress := PageProgress{Page: report.Summary.Pages, Records: len(page.Records)}

	ctx, span := e.tracer.Start(ctx, "reconcile.page", trace.WithAttributes(
		attribute.Int("reconcile.page", progress.Page),
		attribute.Int("reconcile.records", progress.Records),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	extracted := make(KeySet, len(page.Records))
	for _, rec := range page.Records {
		key, ok := e.adapter.ExtractReference(rec)
		if !ok {
			progress.Anomalies++
			e.logger.Debug("Skipping record without a usable reference", zap.Any("key", rec["key"]))
			continue
		}
		extracted.Add(key)
	}
	report.Summary.Anomalies += progress.Anomalies
	progress.Extracted = len(extracted)

	// A page of anomalies issues no existence query.
	if len(extracted) > 0 {
		e.state = StateChecking
		existing, err := e.existing(ctx, extracted)
		if err != nil {
			return err
		}
		report.Summary.ExistenceChecks++
		report.Summary.CheckedKeys += len(extracted)

		e.state = StateAccumulating
		missing := extracted.Minus(existing)
		orphans.Union(missing)
		progress.Missing = missing.Sorted()
		span.SetAttributes(attribute.Int("reconcile.missing", len(missing)))
	}
	e.state = StateScanning

	if e.opts.OnPage != nil {
		progress.Orphans = orphans.Sorted()
		e.opts.OnPage(progress)
	}
	return nil
}

// existing returns the subset of keys found in the secondary collection.
func (e *Engine) existing(ctx context.Context, keys KeySet) (KeySet, error) {
	q := e.adapter.ExistenceQuery(keys.Sorted())
	found, err := scroll.Collect(ctx, e.scroller, q, e.adapter.ExtractExisting)
	if err != nil {
		return nil, fmt.Errorf("existence check on %s: %w", q.Index, err)
	}
	return NewKeySet(found...), nil
}
