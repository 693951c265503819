// Package storage owns the database schema and the helpers shared by the
// per-entity SQLite stores.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLDB is the subset of *sql.DB the stores need. Wrappers (slow-query
// logging) implement the same interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TimeLayout is the canonical timestamp encoding in the database.
const TimeLayout = time.RFC3339

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: all tables are created, WAL mode and foreign keys enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS center (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL DEFAULT 0,
		photo_url TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stage (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		age_min INTEGER NOT NULL,
		age_max INTEGER NOT NULL,
		base_price_cents INTEGER NOT NULL,
		photo_url TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session (
		id TEXT PRIMARY KEY,
		stage_id TEXT NOT NULL,
		center_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		booked INTEGER NOT NULL DEFAULT 0,
		price_cents INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (stage_id) REFERENCES stage(id),
		FOREIGN KEY (center_id) REFERENCES center(id)
	);

	CREATE TABLE IF NOT EXISTS school (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		discount_pct INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tariff (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		kind TEXT NOT NULL,
		percent INTEGER NOT NULL DEFAULT 0,
		amount_cents INTEGER NOT NULL DEFAULT 0,
		school_id TEXT,
		valid_from TEXT,
		valid_to TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (school_id) REFERENCES school(id)
	);

	CREATE TABLE IF NOT EXISTS invoice (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		reference TEXT NOT NULL,
		parent_name TEXT NOT NULL,
		parent_email TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		session_id TEXT,
		status TEXT NOT NULL,
		issued_on TEXT,
		due_on TEXT,
		paid_on TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS credit_note (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		invoice_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		issued_on TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (invoice_id) REFERENCES invoice(id)
	);

	CREATE TABLE IF NOT EXISTS bank_transaction (
		id TEXT PRIMARY KEY,
		booked_on TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		counterparty TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		invoice_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS request (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		child_name TEXT NOT NULL,
		parent_email TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		decision_note TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS waitlist_entry (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		child_name TEXT NOT NULL,
		parent_email TEXT NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL,
		offered_at TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES session(id)
	);

	CREATE TABLE IF NOT EXISTS subscriber (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		subscribed_at TEXT NOT NULL,
		unsubscribed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_session_stage ON session(stage_id);
	CREATE INDEX IF NOT EXISTS idx_session_center ON session(center_id);
	CREATE INDEX IF NOT EXISTS idx_invoice_status ON invoice(status);
	CREATE INDEX IF NOT EXISTS idx_bank_transaction_status ON bank_transaction(status);
	CREATE INDEX IF NOT EXISTS idx_request_status ON request(status);
	CREATE INDEX IF NOT EXISTS idx_waitlist_session ON waitlist_entry(session_id, position);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// NullableString maps "" to NULL for optional text columns.
func NullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullableTime maps the zero time to NULL for optional timestamp columns.
func NullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// FormatTime encodes a required timestamp column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a required timestamp column; the zero time is returned
// for malformed values so a bad row never aborts a whole list.
func ParseTime(raw string) time.Time {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseNullableTime decodes an optional timestamp column.
func ParseNullableTime(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	return ParseTime(ns.String)
}

// BoolToInt encodes a flag column.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
