package sqlite

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/neomorfeo/catalogue/internal/domain"
)

const uniqueViolation = "UNIQUE constraint failed: "

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), uniqueViolation)
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// uniqueColumns extracts the column names from a UNIQUE violation message,
// e.g. "UNIQUE constraint failed: attributes.noun_modifier_id, attributes.name".
func uniqueColumns(err error) []string {
	msg := err.Error()
	i := strings.Index(msg, uniqueViolation)
	if i < 0 {
		return nil
	}
	msg = msg[i+len(uniqueViolation):]
	if j := strings.Index(msg, " ("); j >= 0 {
		msg = msg[:j]
	}

	var cols []string
	for _, qualified := range strings.Split(msg, ",") {
		qualified = strings.TrimSpace(qualified)
		if _, col, ok := strings.Cut(qualified, "."); ok {
			qualified = col
		}
		if qualified != "" {
			cols = append(cols, qualified)
		}
	}
	return cols
}

// isTransient reports errors worth retrying: lock contention and lost connections.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var serr *msqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

// classify wraps err for op, marking transient failures as StoreUnavailableError.
func classify(op string, err error) error {
	if isTransient(err) {
		return &domain.StoreUnavailableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
