package database

import (
	"strings"
	"unicode"
)

// DefaultKeyField is the record field used as the unique tie-breaker of keyset pagination.
const DefaultKeyField = "key"

// Profile maps a collection onto a table.
type Profile struct {
	// Index is the collection pattern the profile serves.
	Index string
	// Table is the name of the backing table.
	Table string
	// KeyField is the unique record field appended to every ordering.
	KeyField string
	// Columns overrides the derived column of a field path.
	Columns map[string]string
}

// DefaultProfile derives a profile from a collection pattern:
// "zeebe-record_process-instance_*" maps to table "zeebe_record_process_instance".
func DefaultProfile(index string) Profile {
	return Profile{
		Index:    index,
		Table:    TableName(index),
		KeyField: DefaultKeyField,
	}
}

// Column returns the column backing a field path.
func (p Profile) Column(field string) string {
	if col, ok := p.Columns[field]; ok {
		return col
	}
	return ColumnName(field)
}

// KeyColumn returns the column of the key field.
func (p Profile) KeyColumn() string {
	return p.Column(p.keyField())
}

func (p Profile) keyField() string {
	if p.KeyField == "" {
		return DefaultKeyField
	}
	return p.KeyField
}

// TableName strips wildcards from a collection pattern and normalizes separators.
func TableName(index string) string {
	name := strings.ReplaceAll(index, "*", "")
	name = strings.ReplaceAll(name, "-", "_")
	return strings.Trim(name, "_")
}

// ColumnName converts a dotted camel-case field path to snake case:
// "value.parentElementInstanceKey" becomes "value_parent_element_instance_key".
func ColumnName(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		switch {
		case r == '.' || r == '-':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '.' && !unicode.IsUpper(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
