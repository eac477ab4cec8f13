// Package reconcile finds dangling references between two collections of a record store.
//
// A run streams candidate records from a primary collection page by page, extracts the
// reference key each record claims, and immediately checks, in one batched query per page,
// which of those keys exist in a secondary collection. Keys that are not found are added to
// a running orphan set that only ever grows.
//
// # Architecture
//
// 1. Engine: drives the primary scan and the per-page existence checks through a
//    scroll.Scroller, accumulates the orphan set, and produces a Report.
//
// 2. Adapter: model-specific implementations that build the primary and existence queries
//    and extract keys from records. See feature/parents for process-instance parent keys.
//
// # Memory
//
// Only one primary page and the keys extracted from it are in flight at a time: each page's
// existence check completes before the next page is fetched. The orphan set is the only
// state that grows with the size of the scan.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(parents.NewAdapter(cfg.Audit), client, scroller, logger,
//	    reconcile.Options{Count: true})
//	report, err := engine.Run(ctx)
//	if err != nil {
//	    return err // no partial report
//	}
//	fmt.Println(report.Orphans)
package reconcile
