package database

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoRows is returned by Row.Scan when the query matched nothing,
// regardless of the driver behind the DB.
var ErrNoRows = errors.New("no rows in result set")

// Querier is the statement surface shared by DB and Tx, so repositories can
// run the same code inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

type DB interface {
	Querier

	Ping(ctx context.Context) error
	Close() error

	Begin(ctx context.Context) (Tx, error)

	SQLDB() *sql.DB
}

type Tx interface {
	Querier

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
