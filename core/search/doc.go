// Package search defines the query model and the query-client capability used to read
// records from a distributed record store.
//
// # Query Model
//
// A Query is an immutable description of a scan: the collection pattern, a Filter tree
// (And, Term, Terms, Range, Exists, Not), an optional sort, a field projection and a page size.
// Backends translate the Filter tree into their native query language.
//
// # Client
//
// The Client interface exposes the four operations a scan needs: Count, OpenScan, AdvanceScan
// and CloseScan. Elastic implements it on top of the official Elasticsearch client; the
// database package provides a relational implementation. Both report failures with the
// sentinel errors ErrBackendUnavailable, ErrQuery and ErrCursorExpired.
//
// # Usage
//
//	client, err := search.NewElastic(cfg.Search)
//	q := search.Query{
//	    Index:    "operate*",
//	    Filter:   search.Terms("key", 1, 2, 3),
//	    Fields:   []string{"key"},
//	    PageSize: 1000,
//	}
//	page, err := client.OpenScan(ctx, q, time.Minute)
package search
