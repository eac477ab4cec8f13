package reconcile

import "parent-reconciler/core/search"

// Adapter defines the model-specific parts of a reconciliation run.
// Implementations build queries and interpret records; the engine owns the scan.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "parents").
	Name() string

	// PrimaryQuery returns the scan over candidate records. Its filter must only select
	// records that carry a reference; the same filter is used for the optional count.
	PrimaryQuery() search.Query

	// ExtractReference returns the reference key a candidate record claims.
	// ok is false for records whose reference is absent, mistyped or a sentinel value;
	// such records are skipped and counted as anomalies.
	ExtractReference(rec search.Record) (key int64, ok bool)

	// ExistenceQuery returns the scan over the secondary collection that finds
	// which of keys exist. keys is sorted and never empty.
	ExistenceQuery(keys []int64) search.Query

	// ExtractExisting returns the key of a record found by the existence query.
	ExtractExisting(rec search.Record) (key int64, ok bool)
}
