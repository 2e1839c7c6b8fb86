// Package postgres backs database.DB with a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"cv-builder/internal/config"
	"cv-builder/internal/database"
	"cv-builder/internal/pkg/logger"
)

const (
	defaultPingTimeout = 5 * time.Second
	defaultSlowQuery   = 200 * time.Millisecond
)

var errClosed = errors.New("postgres: pool is closed")

type options struct {
	log       *logger.Logger
	slowQuery time.Duration
}

type Option func(*options)

// WithLogger logs failed statements and statements slower than the slow
// query threshold.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithSlowQuery(d time.Duration) Option {
	return func(o *options) { o.slowQuery = d }
}

// Pool is a database.DB over pgxpool. SQLDB shares the same connections and
// exists for golang-migrate.
type Pool struct {
	querier
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// ConnString renders cfg as a postgres URL with the password escaped.
func ConnString(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(strings.TrimSpace(cfg.DBUser), cfg.DBPassword),
		Host:   net.JoinHostPort(strings.TrimSpace(cfg.DBHost), strings.TrimSpace(cfg.DBPort)),
		Path:   "/" + strings.TrimSpace(cfg.DBName),
	}
	q := url.Values{}
	if mode := strings.TrimSpace(cfg.DBSSLMode); mode != "" {
		q.Set("sslmode", mode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func Connect(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (database.DB, error) {
	o := options{slowQuery: defaultSlowQuery}
	for _, opt := range opts {
		opt(&o)
	}

	pcfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, err
	}
	applyPoolLimits(pcfg, cfg)
	if o.log != nil {
		pcfg.ConnConfig.Tracer = &queryTracer{log: o.log.Named("postgres"), slow: o.slowQuery}
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, err
	}

	return &Pool{querier: querier{q: p}, pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func applyPoolLimits(pcfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
}

func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errClosed
	}
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	err := p.sqlDB.Close()
	p.pool.Close()
	return err
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	if p == nil || p.pool == nil {
		return nil, errClosed
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{querier: querier{q: tx}, tx: tx}, nil
}

func (p *Pool) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.sqlDB
}

type Tx struct {
	querier
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *Tx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

type querier struct {
	q pgxQuerier
}

func (q querier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := q.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q querier) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := q.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

func (q querier) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return rowAdapter{q.q.QueryRow(ctx, query, args...)}
}

// rowsAdapter narrows pgx.Rows to database.Rows.
type rowsAdapter struct{ pgx.Rows }

type rowAdapter struct{ row pgx.Row }

func (r rowAdapter) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.ErrNoRows
	}
	return err
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// queryTracer logs failed and slow statements. Arguments are never logged;
// they carry password hashes and tokens.
type queryTracer struct {
	log  *logger.Logger
	slow time.Duration
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	took := time.Since(start.at)
	switch {
	case data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows):
		t.log.Warn("query failed", "sql", compactSQL(start.sql), "took", took.String(), "error", data.Err)
	case t.slow > 0 && took >= t.slow:
		t.log.Warn("slow query", "sql", compactSQL(start.sql), "took", took.String(), "rows", data.CommandTag.RowsAffected())
	}
}

func compactSQL(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
