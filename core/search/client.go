package search

import (
	"context"
	"encoding/json"
	"time"
)

// Client is the query capability a scan needs from the record store.
type Client interface {
	// Count returns the number of records in index matching filter.
	Count(ctx context.Context, index string, filter Filter) (int64, error)

	// OpenScan issues q with a keep-alive and returns the first page. The returned
	// page carries the cursor id in ScrollID.
	OpenScan(ctx context.Context, q Query, keepAlive time.Duration) (Page, error)

	// AdvanceScan fetches the next page of an open cursor and refreshes its keep-alive.
	// Backends may rotate the cursor id; callers must use the ScrollID of the returned page.
	AdvanceScan(ctx context.Context, scrollID string, keepAlive time.Duration) (Page, error)

	// CloseScan releases the server-side cursor state.
	CloseScan(ctx context.Context, scrollID string) error
}

// HealthChecker is implemented by clients that can report backend liveness.
type HealthChecker interface {
	Healthy(ctx context.Context) (bool, error)
}

// Page is one batch of records returned by a scan. Zero records mean the scan is exhausted.
type Page struct {
	ScrollID     string
	Records      []Record
	Total        int64
	Aggregations map[string]json.RawMessage
}

// Empty reports whether the page signals exhaustion.
func (p Page) Empty() bool {
	return len(p.Records) == 0
}
