package banktransaction

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"campdesk/internal/adapters/storage"
	domain "campdesk/internal/domain/banktransaction"
	"campdesk/internal/gateway"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func testTransaction(id, status string) domain.Transaction {
	return domain.Transaction{
		ID:           id,
		BookedOn:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		AmountCents:  12500,
		Counterparty: "BE68 5390 0754 7034",
		Reference:    "+++123/4567/89095+++",
		Status:       status,
		CreatedAt:    time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStore_MatchedInvoiceIDRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := testTransaction("t1", domain.StatusUnmatched)
	if err := store.Save(ctx, tx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.InvoiceID != "" {
		t.Errorf("unmatched transaction has InvoiceID %q", got.InvoiceID)
	}

	if err := got.Match("inv-1"); err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save after match failed: %v", err)
	}

	got, err = store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusMatched || got.InvoiceID != "inv-1" {
		t.Errorf("got status=%q invoice=%q, want matched/inv-1", got.Status, got.InvoiceID)
	}
}

func TestSQLiteStore_ListByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, tx := range []domain.Transaction{
		testTransaction("t1", domain.StatusUnmatched),
		testTransaction("t2", domain.StatusMatched),
		testTransaction("t3", domain.StatusUnmatched),
		testTransaction("t4", domain.StatusIgnored),
	} {
		if err := store.Save(ctx, tx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := store.List(ctx, ListFilter{Status: domain.StatusUnmatched})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d transactions, want 2", len(got))
	}
	for _, tx := range got {
		if tx.Status != domain.StatusUnmatched {
			t.Errorf("transaction %q has status %q", tx.ID, tx.Status)
		}
	}

	count, err := store.Count(ctx, ListFilter{Status: domain.StatusUnmatched})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestSQLiteStore_SearchByReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testTransaction("t1", domain.StatusUnmatched)
	a.Reference = "+++001/0002/00003+++"
	b := testTransaction("t2", domain.StatusUnmatched)
	b.Reference = "virement papa"
	for _, tx := range []domain.Transaction{a, b} {
		if err := store.Save(ctx, tx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := store.List(ctx, ListFilter{Search: "001/0002"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("search returned %v, want only t1", got)
	}
}

func TestSQLiteStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete(context.Background(), "missing"); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want gateway.ErrNotFound", err)
	}
}
