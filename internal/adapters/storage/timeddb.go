package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"
)

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the threshold above which a query is logged as
// slow. CAMPDESK_SLOW_QUERY_MS overrides it.
const DefaultSlowQueryMs = 50

var slowQueryThreshold = sync.OnceValue(func() float64 {
	if v := os.Getenv("CAMPDESK_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowQueryMs
})

// TimedDB wraps a *sql.DB and logs every operation's duration, at WARN
// once it crosses the slow threshold. It satisfies SQLDB so every store
// constructor accepts it in place of the bare connection.
type TimedDB struct {
	db        *sql.DB
	threshold float64
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
func NewTimedDB(db *sql.DB) *TimedDB {
	return &TimedDB{db: db, threshold: slowQueryThreshold()}
}

// RawDB returns the underlying *sql.DB for migrations and pool tuning.
func (t *TimedDB) RawDB() *sql.DB { return t.db }

func (t *TimedDB) observe(op string, start time.Time) {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	if ms >= t.threshold {
		slog.Warn("slow_query", "op", op, "duration_ms", ms)
		return
	}
	slog.Debug("query", "op", op, "duration_ms", ms)
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.observe("ExecContext", time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.observe("QueryContext", time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.observe("QueryRowContext", time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	defer t.observe("BeginTx", time.Now())
	return t.db.BeginTx(ctx, opts)
}

// Close closes the underlying connection.
func (t *TimedDB) Close() error { return t.db.Close() }

// Ping verifies the underlying connection.
func (t *TimedDB) Ping() error { return t.db.Ping() }
