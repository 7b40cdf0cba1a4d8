// Package dbconn provides the connection and cursor contract the rest of
// internal/orm executes SQL through, plus the one concrete MySQL
// implementation the ORM ships with.
package dbconn

import "context"

// Cursor is a forward-only result set, satisfied by *sql.Rows.
type Cursor interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close() error
	Err() error
}

// Row is a single-row result, satisfied by *sql.Row.
type Row interface {
	Scan(dest ...any) error
}

// Result is the outcome of a non-query statement, satisfied by sql.Result.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Conn is the statement-execution surface the assembler's output is run
// through. It is the ORM's out-of-scope driver contract (spec.md's
// storage backend is a pluggable concern): every method here is a thin
// context-aware wrapper, so a future non-MySQL Connector only needs to
// satisfy this interface.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (Cursor, error)
	QueryRowContext(ctx context.Context, query string, args ...any) Row
	Close() error
}

// Connector opens a Conn against a Config. MySQLConnector is the only
// implementation shipped; tests may supply a fake.
type Connector interface {
	Open(ctx context.Context, cfg *Config) (Conn, error)
}
