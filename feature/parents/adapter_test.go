package parents

import (
	"encoding/json"
	"testing"

	"parent-reconciler/core/search"
	"parent-reconciler/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		PartitionID:    2,
		ImportPosition: 100,
		RecordIndex:    "zeebe-record_process-instance_*",
		TargetIndex:    "operate*",
		PageSize:       3000,
		CheckPageSize:  1000,
	}
}

// matches evaluates a filter tree against a record the way a search backend would.
func matches(t *testing.T, f search.Filter, rec search.Record) bool {
	t.Helper()
	switch f := f.(type) {
	case nil:
		return true
	case search.AndFilter:
		for _, child := range f.Filters {
			if !matches(t, child, rec) {
				return false
			}
		}
		return true
	case search.TermFilter:
		v, ok := rec.Lookup(f.Field)
		if !ok {
			return false
		}
		got, ok1 := utils.ToInt64(v)
		want, ok2 := utils.ToInt64(f.Value)
		return ok1 && ok2 && got == want
	case search.RangeFilter:
		v, ok := rec.Lookup(f.Field)
		if !ok {
			return false
		}
		got, ok1 := utils.ToInt64(v)
		bound, ok2 := utils.ToInt64(f.Gt)
		return ok1 && ok2 && got > bound
	case search.ExistsFilter:
		v, ok := rec.Lookup(f.Field)
		return ok && v != nil
	case search.NotFilter:
		return !matches(t, f.Filter, rec)
	default:
		t.Fatalf("unexpected filter %T", f)
		return false
	}
}

func record(partition, position int64, parentInstance any) search.Record {
	rec := search.Record{
		FieldKey:         position * 10,
		FieldPartitionID: partition,
		FieldPosition:    position,
	}
	if parentInstance != nil {
		rec.Set(FieldParentProcessInstanceKey, parentInstance)
	}
	return rec
}

func TestAdapter_Filter(t *testing.T) {
	a := NewAdapter(testConfig())
	f := a.Filter()

	tests := []struct {
		name string
		rec  search.Record
		want bool
	}{
		{"ChildInPartition", record(2, 101, int64(7)), true},
		{"JSONNumberParent", record(2, 500, json.Number("7")), true},
		{"AtImportPosition", record(2, 100, int64(7)), false},
		{"BeforeImportPosition", record(2, 50, int64(7)), false},
		{"OtherPartition", record(1, 101, int64(7)), false},
		{"RootInstance", record(2, 101, int64(-1)), false},
		{"NoParentField", record(2, 101, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(t, f, tt.rec))
		})
	}
}

func TestAdapter_PrimaryQuery(t *testing.T) {
	q := NewAdapter(testConfig()).PrimaryQuery()

	require.NoError(t, q.Validate())
	assert.Equal(t, "zeebe-record_process-instance_*", q.Index)
	assert.Equal(t, []search.SortField{{Field: "sequence"}}, q.Sort)
	assert.Equal(t, []string{"key", "value.processInstanceKey", "value.parentElementInstanceKey"}, q.Fields)
	assert.Equal(t, 3000, q.PageSize)

	and, ok := q.Filter.(search.AndFilter)
	require.True(t, ok)
	assert.Equal(t, []search.Filter{
		search.TermFilter{Field: "partitionId", Value: int64(2)},
		search.RangeFilter{Field: "position", Gt: int64(100)},
		search.ExistsFilter{Field: "value.parentProcessInstanceKey"},
		search.NotFilter{Filter: search.TermFilter{Field: "value.parentProcessInstanceKey", Value: int64(-1)}},
	}, and.Filters)
}

func TestAdapter_ExtractReference(t *testing.T) {
	a := NewAdapter(testConfig())

	tests := []struct {
		name string
		rec  search.Record
		key  int64
		ok   bool
	}{
		{"Nested", search.Record{"value": map[string]any{"parentElementInstanceKey": json.Number("2251799813685255")}}, 2251799813685255, true},
		{"Flat", search.Record{"value.parentElementInstanceKey": int64(42)}, 42, true},
		{"Float", search.Record{"value": map[string]any{"parentElementInstanceKey": float64(42)}}, 42, true},
		{"Sentinel", search.Record{"value": map[string]any{"parentElementInstanceKey": int64(-1)}}, 0, false},
		{"Missing", search.Record{"value": map[string]any{}}, 0, false},
		{"NoValue", search.Record{"key": int64(1)}, 0, false},
		{"Null", search.Record{"value": map[string]any{"parentElementInstanceKey": nil}}, 0, false},
		{"Text", search.Record{"value": map[string]any{"parentElementInstanceKey": "abc"}}, 0, false},
		{"ValueNotObject", search.Record{"value": "oops"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := a.ExtractReference(tt.rec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestAdapter_ExistenceQuery(t *testing.T) {
	a := NewAdapter(testConfig())
	q := a.ExistenceQuery([]int64{10, 20})

	require.NoError(t, q.Validate())
	assert.Equal(t, "operate*", q.Index)
	assert.Equal(t, search.TermsFilter{Field: "key", Values: []any{int64(10), int64(20)}}, q.Filter)
	assert.Equal(t, []string{"key"}, q.Fields)
	assert.Equal(t, 1000, q.PageSize)
	assert.Empty(t, q.Sort)

	key, ok := a.ExtractExisting(search.Record{"key": json.Number("20")})
	assert.True(t, ok)
	assert.Equal(t, int64(20), key)

	_, ok = a.ExtractExisting(search.Record{"id": "20"})
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())

	err := Config{PartitionID: 0, PageSize: -1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partition_id must be at least 1")
	assert.Contains(t, err.Error(), "record_index is required")
	assert.Contains(t, err.Error(), "target_index is required")
	assert.Contains(t, err.Error(), "page_size must be positive")
	assert.Contains(t, err.Error(), "check_page_size must be positive")
}
