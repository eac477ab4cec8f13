package database

import (
	"context"
	"testing"

	"parent-reconciler/core/search"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnRows(fields ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	for _, f := range fields {
		rows.AddRow(f, "BIGINT(20)", "YES", "", nil, "")
	}
	return rows
}

func TestGetTableColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `operate`").WillReturnRows(columnRows("Key", "tree_path"))

	columns, err := GetTableColumns(db, "operate")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "key", columns[0].Field)
	assert.Equal(t, "bigint(20)", columns[0].Type)
}

func TestSQLClient_Verify(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `zeebe_record_process_instance`").
		WillReturnRows(columnRows("key", "partition_id", "position", "sequence", "value_parent_element_instance_key"))

	missing, err := NewSQLClient(db).Verify(context.Background(), primaryQuery(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"value_parent_process_instance_key"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns_TableMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `operate`").WillReturnError(assert.AnError)

	_, err := MissingColumns(db, DefaultProfile("operate*"), []string{"key"})
	assert.ErrorIs(t, err, search.ErrQuery)
	assert.Contains(t, err.Error(), "failed to get columns for table operate")
}
