package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, classify("inspect", err))
	}
	// Normalize types to lowercase
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// MissingColumns returns, in field order, the columns backing fields that the profile's
// table does not have.
func MissingColumns(db *gorm.DB, p Profile, fields []string) ([]string, error) {
	columns, err := GetTableColumns(db, p.Table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(columns))
	for _, col := range columns {
		have[col.Field] = true
	}

	var missing []string
	seen := make(map[string]bool)
	for _, f := range fields {
		col := strings.ToLower(p.Column(f))
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing, nil
}
