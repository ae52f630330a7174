package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrForeignKey is returned when a write references a missing row or a delete
	// would orphan referencing rows.
	ErrForeignKey = errors.New("foreign key constraint violated")

	// ErrCheckViolation is returned when a row fails a CHECK constraint (e.g. stock >= 0).
	ErrCheckViolation = errors.New("check constraint violated")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx.
// Every repository method takes one, so reads issued inside a transaction see
// the transaction's writes and never compete with it for a connection.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// classify maps driver errors from lib/pq and SQLite onto the repository sentinels
// and wraps everything else as ErrDatabaseError.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, op, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrForeignKey, op, pqErr.Constraint)
		case "23514":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrCheckViolation, op, pqErr.Constraint)
		}
		return fmt.Errorf("%w: %s: %v", ErrDatabaseError, op, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s: %v", ErrDuplicateKey, op, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s: %v", ErrForeignKey, op, err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %s: %v", ErrCheckViolation, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, op, err)
}

// rowsAffected returns ErrNotFound when a targeted write touched nothing.
func rowsAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// pageClause appends LIMIT/OFFSET placeholders starting at argCounter.
func pageClause(page, pageSize, argCounter int, args []interface{}) (string, []interface{}) {
	if pageSize <= 0 {
		return "", args
	}
	clause := fmt.Sprintf(" LIMIT $%d", argCounter)
	args = append(args, pageSize)
	if page > 1 {
		clause += fmt.Sprintf(" OFFSET $%d", argCounter+1)
		args = append(args, (page-1)*pageSize)
	}
	return clause, args
}
