package storage

import (
	"database/sql"
	"slices"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func newMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func listTables(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan table name: %v", err)
		}
		names = append(names, name)
	}
	return names
}

func TestInitDB_CreatesSchema(t *testing.T) {
	db := newMemoryDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB on fresh db: %v", err)
	}

	want := []string{
		"bank_transaction",
		"center",
		"credit_note",
		"invoice",
		"request",
		"school",
		"session",
		"stage",
		"subscriber",
		"tariff",
		"waitlist_entry",
	}
	if got := listTables(t, db); !slices.Equal(got, want) {
		t.Errorf("tables after InitDB:\ngot  %v\nwant %v", got, want)
	}
}

func TestInitDB_SecondRunKeepsData(t *testing.T) {
	db := newMemoryDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO center (id, name, created_at) VALUES ('c1', 'Centre Ardenne', '2026-01-01T00:00:00Z')`,
	); err != nil {
		t.Fatalf("insert center: %v", err)
	}

	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}

	var name string
	if err := db.QueryRow(`SELECT name FROM center WHERE id = 'c1'`).Scan(&name); err != nil {
		t.Fatalf("center row gone after second InitDB: %v", err)
	}
	if name != "Centre Ardenne" {
		t.Errorf("center name = %q, want %q", name, "Centre Ardenne")
	}
}

func TestNullableTime(t *testing.T) {
	if v := NullableTime(time.Time{}); v != nil {
		t.Errorf("NullableTime(zero) = %v, want nil", v)
	}

	ts := time.Date(2026, 7, 14, 9, 30, 0, 0, time.UTC)
	v, ok := NullableTime(ts).(string)
	if !ok {
		t.Fatalf("NullableTime returned %T, want string", NullableTime(ts))
	}
	if v != "2026-07-14T09:30:00Z" {
		t.Errorf("NullableTime = %q, want %q", v, "2026-07-14T09:30:00Z")
	}
}

func TestParseTime(t *testing.T) {
	ts := time.Date(2026, 7, 14, 9, 30, 0, 0, time.UTC)
	if got := ParseTime(FormatTime(ts)); !got.Equal(ts) {
		t.Errorf("round trip = %v, want %v", got, ts)
	}
	if got := ParseTime("not-a-time"); !got.IsZero() {
		t.Errorf("ParseTime(malformed) = %v, want zero time", got)
	}
}

func TestNullableString(t *testing.T) {
	if v := NullableString(""); v != nil {
		t.Errorf("NullableString(empty) = %v, want nil", v)
	}
	if v := NullableString("x"); v != "x" {
		t.Errorf("NullableString(x) = %v, want x", v)
	}
}
