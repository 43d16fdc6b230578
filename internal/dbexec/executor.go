// Package dbexec provides database execution abstractions for compiled
// queries. The compiler itself never touches the database; this package is
// the thin bridge callers use to run what it produced. The compiler only
// ever emits SELECT statements, so the execution surface is read-only.
package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoDatabase indicates an executor was built without a database handle.
var ErrNoDatabase = errors.New("no database handle")

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// SelectExecutor runs compiled SELECT statements. Callers can swap in
// instrumented or transactional behavior.
type SelectExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// StandardExecutor executes compiled queries directly against a database
// handle.
type StandardExecutor struct {
	db *sql.DB
}

// NewStandardExecutor creates an executor that runs queries directly against the database.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, ErrNoDatabase
	}
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	return rows, nil
}
