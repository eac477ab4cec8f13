package search

import (
	"fmt"
	"strings"
)

// Filter is a node of a predicate expression tree. Backends translate the tree into
// their native query language; unknown node types are rejected with ErrQuery.
type Filter interface {
	filter()
}

// AndFilter matches records matching every child filter.
type AndFilter struct {
	Filters []Filter
}

// TermFilter matches records whose field equals Value.
type TermFilter struct {
	Field string
	Value any
}

// TermsFilter matches records whose field equals any of Values.
type TermsFilter struct {
	Field  string
	Values []any
}

// RangeFilter matches records whose field lies in the given bounds. Nil bounds are open.
type RangeFilter struct {
	Field string
	Gt    any
	Gte   any
	Lt    any
	Lte   any
}

// ExistsFilter matches records where the field is present and not null.
type ExistsFilter struct {
	Field string
}

// NotFilter matches records not matching Filter.
type NotFilter struct {
	Filter Filter
}

func (AndFilter) filter()    {}
func (TermFilter) filter()   {}
func (TermsFilter) filter()  {}
func (RangeFilter) filter()  {}
func (ExistsFilter) filter() {}
func (NotFilter) filter()    {}

// And joins filters with AND. Nil filters are dropped; a single remaining filter is
// returned as is and no filters at all yield nil (match everything).
func And(filters ...Filter) Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return AndFilter{Filters: kept}
	}
}

// Term builds an equality filter.
func Term(field string, value any) Filter {
	return TermFilter{Field: field, Value: value}
}

// Terms builds a set-membership filter.
func Terms[T any](field string, values ...T) Filter {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return TermsFilter{Field: field, Values: vals}
}

// Greater builds a strict lower-bound filter.
func Greater(field string, value any) Filter {
	return RangeFilter{Field: field, Gt: value}
}

// Exists builds a presence filter.
func Exists(field string) Filter {
	return ExistsFilter{Field: field}
}

// Not negates a filter.
func Not(f Filter) Filter {
	return NotFilter{Filter: f}
}

// SortField orders results by a single field.
type SortField struct {
	Field string
	Desc  bool
}

// String renders the sort in field:direction form.
func (s SortField) String() string {
	if s.Desc {
		return s.Field + ":desc"
	}
	return s.Field + ":asc"
}

// Query describes one scan. It is built once and passed by value; scans never modify it.
type Query struct {
	// Index is the target collection pattern. Wildcards and comma-separated lists are allowed.
	Index string
	// Filter selects records. Nil matches every record.
	Filter Filter
	// Sort orders the scan. Empty means backend order.
	Sort []SortField
	// Fields projects records to the listed paths. Empty returns whole records.
	Fields []string
	// PageSize is the number of records per page.
	PageSize int
	// Aggregations is a backend-native aggregation body, supported by Elasticsearch only.
	Aggregations map[string]any
}

// Validate checks the parts of the query every backend relies on.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Index) == "" {
		return fmt.Errorf("%w: empty index", ErrQuery)
	}
	if q.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", ErrQuery, q.PageSize)
	}
	return nil
}

// FilterFields returns the distinct fields referenced by f, in first-seen order.
func FilterFields(f Filter) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Filter)
	walk = func(f Filter) {
		var field string
		switch f := f.(type) {
		case AndFilter:
			for _, child := range f.Filters {
				walk(child)
			}
		case NotFilter:
			walk(f.Filter)
		case TermFilter:
			field = f.Field
		case TermsFilter:
			field = f.Field
		case RangeFilter:
			field = f.Field
		case ExistsFilter:
			field = f.Field
		}
		if field != "" && !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	walk(f)
	return out
}
