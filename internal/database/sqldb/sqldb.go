// Package sqldb adapts a database/sql handle to database.DB. It backs the
// repositories when they run against go-sqlmock, and can serve production
// through the pgx stdlib driver when a plain *sql.DB is preferred.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cv-builder/internal/config"
	"cv-builder/internal/database"
	"cv-builder/internal/database/postgres"
)

type DB struct {
	db *sql.DB
}

func Open(cfg config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("pgx", postgres.ConnString(cfg))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db), nil
}

func New(db *sql.DB) *DB {
	return &DB{db: db}
}

func (p *DB) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("nil db")
	}
	return p.db.PingContext(ctx)
}

func (p *DB) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execContext(ctx, p.db, query, args...)
}

func (p *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return queryContext(ctx, p.db, query, args...)
}

func (p *DB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return row{row: p.db.QueryRowContext(ctx, query, args...)}
}

func (p *DB) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (p *DB) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.db
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execContext(ctx, t.tx, query, args...)
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return queryContext(ctx, t.tx, query, args...)
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return row{row: t.tx.QueryRowContext(ctx, query, args...)}
}

func (t sqlTx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t sqlTx) Rollback(context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func execContext(ctx context.Context, e execer, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func queryContext(ctx context.Context, e execer, query string, args ...any) (database.Rows, error) {
	r, err := e.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows{rows: r}, nil
}

type rows struct {
	rows *sql.Rows
}

func (r rows) Close()                 { _ = r.rows.Close() }
func (r rows) Next() bool             { return r.rows.Next() }
func (r rows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r rows) Err() error             { return r.rows.Err() }

type row struct {
	row *sql.Row
}

func (r row) Scan(dest ...any) error {
	if err := r.row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.ErrNoRows
		}
		return err
	}
	return nil
}
