package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"parent-reconciler/core/search"

	"github.com/go-sql-driver/mysql"
)

// MySQL server errors that clear up on their own.
var transientCodes = map[uint16]bool{
	1040: true, // too many connections
	1053: true, // server shutdown in progress
	1205: true, // lock wait timeout
	1213: true, // deadlock
	2006: true, // server has gone away
	2013: true, // lost connection during query
}

// classify maps a driver error onto the search error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if transientCodes[myErr.Number] {
			return fmt.Errorf("%s: %w: %w", op, search.ErrBackendUnavailable, err)
		}
		return fmt.Errorf("%s: %w: %w", op, search.ErrQuery, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%s: %w: %w", op, search.ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, search.ErrQuery, err)
}
