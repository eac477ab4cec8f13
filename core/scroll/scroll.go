package scroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parent-reconciler/core/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultKeepAlive keeps a cursor alive for one minute between pages.
	DefaultKeepAlive = 60 * time.Second

	// DefaultReleaseTimeout bounds a single cursor release request.
	DefaultReleaseTimeout = 10 * time.Second
)

// ErrCursorReleased is returned when a released cursor is advanced.
var ErrCursorReleased = errors.New("scroll: cursor released")

// Cursor is the traversal state of one scan. Only the Scroller that opened it may
// advance or release it.
type Cursor struct {
	id        string
	live      bool
	keepAlive time.Duration
	pageSize  int
}

// ID returns the current server-issued cursor id.
func (c *Cursor) ID() string {
	return c.id
}

// Live reports whether the cursor may still be advanced.
func (c *Cursor) Live() bool {
	return c.live
}

// PageSize returns the page size the cursor was opened with.
func (c *Cursor) PageSize() int {
	return c.pageSize
}

// Scroller pages through query results using a search.Client.
type Scroller struct {
	client         search.Client
	logger         *zap.Logger
	tracer         trace.Tracer
	keepAlive      time.Duration
	releaseTimeout time.Duration
}

// Option configures a Scroller.
type Option func(*Scroller)

// WithKeepAlive sets how long the backend keeps a cursor alive between pages.
func WithKeepAlive(d time.Duration) Option {
	return func(s *Scroller) {
		if d > 0 {
			s.keepAlive = d
		}
	}
}

// WithReleaseTimeout bounds cursor release requests.
func WithReleaseTimeout(d time.Duration) Option {
	return func(s *Scroller) {
		if d > 0 {
			s.releaseTimeout = d
		}
	}
}

// New creates a Scroller.
func New(client search.Client, logger *zap.Logger, opts ...Option) *Scroller {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scroller{
		client:         client,
		logger:         logger,
		tracer:         otel.Tracer("parent-reconciler/core/scroll"),
		keepAlive:      DefaultKeepAlive,
		releaseTimeout: DefaultReleaseTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open issues q with a keep-alive and returns a live cursor and the first page.
func (s *Scroller) Open(ctx context.Context, q search.Query) (*Cursor, search.Page, error) {
	page, err := s.client.OpenScan(ctx, q, s.keepAlive)
	if err != nil {
		return nil, search.Page{}, fmt.Errorf("open scroll on %s: %w", q.Index, err)
	}
	c := &Cursor{
		id:        page.ScrollID,
		live:      true,
		keepAlive: s.keepAlive,
		pageSize:  q.PageSize,
	}
	return c, page, nil
}

// Next fetches the next page of a live cursor and refreshes its keep-alive.
// A backend that answered without a cursor id has nothing more to return.
func (s *Scroller) Next(ctx context.Context, c *Cursor) (search.Page, error) {
	if c == nil || !c.live {
		return search.Page{}, ErrCursorReleased
	}
	if c.id == "" {
		return search.Page{}, nil
	}

	page, err := s.client.AdvanceScan(ctx, c.id, c.keepAlive)
	if err != nil {
		return search.Page{}, fmt.Errorf("advance scroll: %w", err)
	}
	if page.ScrollID != "" {
		c.id = page.ScrollID
	}
	return page, nil
}

// Close releases the cursor. It is idempotent and never fails: a cursor that cannot be
// released is logged and left to expire on the server. The release runs even when ctx is
// already cancelled.
func (s *Scroller) Close(ctx context.Context, c *Cursor) {
	if c == nil || !c.live {
		return
	}
	c.live = false
	if c.id == "" {
		return
	}

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.releaseTimeout)
	defer cancel()

	if err := s.client.CloseScan(releaseCtx, c.id); err != nil {
		s.logger.Warn("Error occurred when clearing the scroll",
			zap.String("scroll_id", c.id),
			zap.Error(err),
		)
	}
}

// PageFunc processes one non-empty page.
type PageFunc func(ctx context.Context, page search.Page) error

type driveOptions struct {
	firstPage    func(search.Page)
	aggregations func(map[string]json.RawMessage)
}

// DriveOption configures Drive.
type DriveOption func(*driveOptions)

// WithFirstPage registers a callback receiving the first response, even when it is empty.
func WithFirstPage(fn func(search.Page)) DriveOption {
	return func(o *driveOptions) {
		o.firstPage = fn
	}
}

// WithAggregations registers a callback receiving the aggregations of the first response.
func WithAggregations(fn func(map[string]json.RawMessage)) DriveOption {
	return func(o *driveOptions) {
		o.aggregations = fn
	}
}

// Drive runs the scan described by q until an empty page is returned, calling onPage once
// per non-empty page. The cursor is released exactly once on every exit path; an onPage
// error is returned after the release.
func (s *Scroller) Drive(ctx context.Context, q search.Query, onPage PageFunc, opts ...DriveOption) (err error) {
	var o driveOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := s.tracer.Start(ctx, "scroll.drive", trace.WithAttributes(
		attribute.String("scroll.index", q.Index),
		attribute.Int("scroll.page_size", q.PageSize),
	))
	pages := 0
	defer func() {
		span.SetAttributes(attribute.Int("scroll.pages", pages))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	cursor, page, err := s.Open(ctx, q)
	if err != nil {
		return err
	}
	defer s.Close(ctx, cursor)

	if o.firstPage != nil {
		o.firstPage(page)
	}
	if o.aggregations != nil {
		o.aggregations(page.Aggregations)
	}

	for !page.Empty() {
		pages++
		if onPage != nil {
			if err := onPage(ctx, page); err != nil {
				return err
			}
		}
		page, err = s.Next(ctx, cursor)
		if err != nil {
			return err
		}
	}
	return nil
}

// Collect runs the scan described by q and gathers one value per record for which
// extract reports ok.
func Collect[T any](ctx context.Context, s *Scroller, q search.Query, extract func(search.Record) (T, bool)) ([]T, error) {
	var out []T
	err := s.Drive(ctx, q, func(_ context.Context, page search.Page) error {
		for _, rec := range page.Records {
			if v, ok := extract(rec); ok {
				out = append(out, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
