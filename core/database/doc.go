// Package database handles database connections, schema inspection and the SQL query backend.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration.
//
// # SQL Backend
//
// SQLClient implements search.Client for record streams mirrored into MySQL. Each collection
// maps to a table through a Profile; by default the table name is the collection pattern
// without wildcards and columns are the snake-cased field paths. Filters are translated into
// GORM clause expressions and scroll cursors are emulated with keyset pagination.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the health command verify that the mirrored tables
// carry every column a reconciliation query needs.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	client := database.NewSQLClient(db)
//	missing, err := client.Verify(ctx, adapter.PrimaryQuery())
package database
