package parents

import (
	"parent-reconciler/core/search"
	"parent-reconciler/core/utils"
)

// Record fields read or filtered on.
const (
	FieldKey                      = "key"
	FieldPartitionID              = "partitionId"
	FieldPosition                 = "position"
	FieldSequence                 = "sequence"
	FieldProcessInstanceKey       = "value.processInstanceKey"
	FieldParentProcessInstanceKey = "value.parentProcessInstanceKey"
	FieldParentElementInstanceKey = "value.parentElementInstanceKey"
)

// NoParent is the value the workflow engine writes for instances without a parent.
const NoParent int64 = -1

// Adapter implements reconcile.Adapter for process-instance parent keys.
type Adapter struct {
	cfg Config
}

// NewAdapter creates a new parents adapter.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

// Name returns the unique name of this adapter.
func (a *Adapter) Name() string {
	return "parents"
}

// Filter selects the records of the configured partition past the import position
// that belong to a child process instance.
func (a *Adapter) Filter() search.Filter {
	return search.And(
		search.Term(FieldPartitionID, a.cfg.PartitionID),
		search.Greater(FieldPosition, a.cfg.ImportPosition),
		search.Exists(FieldParentProcessInstanceKey),
		search.Not(search.Term(FieldParentProcessInstanceKey, NoParent)),
	)
}

// PrimaryQuery scans child process-instance records in stream order.
func (a *Adapter) PrimaryQuery() search.Query {
	return search.Query{
		Index:    a.cfg.RecordIndex,
		Filter:   a.Filter(),
		Sort:     []search.SortField{{Field: FieldSequence}},
		Fields:   []string{FieldKey, FieldProcessInstanceKey, FieldParentElementInstanceKey},
		PageSize: a.cfg.PageSize,
	}
}

// ExtractReference returns the record's parent element instance key.
func (a *Adapter) ExtractReference(rec search.Record) (int64, bool) {
	key, ok := int64Field(rec, FieldParentElementInstanceKey)
	if !ok || key == NoParent {
		return 0, false
	}
	return key, true
}

// ExistenceQuery finds which of keys are present in the read model.
func (a *Adapter) ExistenceQuery(keys []int64) search.Query {
	return search.Query{
		Index:    a.cfg.TargetIndex,
		Filter:   search.Terms(FieldKey, keys...),
		Fields:   []string{FieldKey},
		PageSize: a.cfg.CheckPageSize,
	}
}

// ExtractExisting returns the key of a read-model document.
func (a *Adapter) ExtractExisting(rec search.Record) (int64, bool) {
	return int64Field(rec, FieldKey)
}

func int64Field(rec search.Record, path string) (int64, bool) {
	v, ok := rec.Lookup(path)
	if !ok {
		return 0, false
	}
	return utils.ToInt64(v)
}
