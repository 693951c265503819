package exporter

import (
	"strings"
	"testing"
	"time"
)

func TestCSV_HeaderAndRows(t *testing.T) {
	day := time.Date(2026, 4, 25, 10, 0, 0, 0, time.UTC)
	header := []string{"number", "parent", "amount"}
	rows := [][]string{
		{"INV-2026-0001", "Dupont, Marie", "125,00 €"},
		{"INV-2026-0002", "Peeters; Jan", "80,00 €"},
	}

	got, err := CSV("invoices", day, header, rows)
	if err != nil {
		t.Fatalf("CSV failed: %v", err)
	}
	if got.Filename != "invoices_2026-04-25.csv" {
		t.Errorf("Filename = %q, want invoices_2026-04-25.csv", got.Filename)
	}

	lines := strings.Split(strings.TrimRight(string(got.Data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "number,parent,amount" {
		t.Errorf("header line = %q", lines[0])
	}
	// Cells containing the separator must be quoted.
	if !strings.Contains(lines[1], `"Dupont, Marie"`) {
		t.Errorf("comma cell not quoted: %q", lines[1])
	}
}

func TestCSV_EmptyList(t *testing.T) {
	got, err := CSV("stages", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), []string{"title"}, nil)
	if err != nil {
		t.Fatalf("CSV failed: %v", err)
	}
	if strings.TrimRight(string(got.Data), "\n") != "title" {
		t.Errorf("empty export should contain only the header, got %q", got.Data)
	}
}

func TestCSV_RowWidthMismatch(t *testing.T) {
	_, err := CSV("stages", time.Now(), []string{"a", "b"}, [][]string{{"only-one"}})
	if err == nil {
		t.Error("expected error for mismatched row width")
	}
}

func TestRows(t *testing.T) {
	type item struct{ Name string }
	rows := Rows([]item{{"x"}, {"y"}}, func(i item) []string { return []string{i.Name} })
	if len(rows) != 2 || rows[0][0] != "x" || rows[1][0] != "y" {
		t.Errorf("rows = %v", rows)
	}
}
