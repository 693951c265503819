package orchestrators

import (
	"context"
	"errors"
	"testing"

	"campdesk/internal/adapters/storage/banktransaction"
	domain "campdesk/internal/domain/banktransaction"
	"campdesk/internal/domain/invoice"
	"campdesk/internal/domain/payment"
	"campdesk/internal/gateway"
)

// mockTransactionStore implements TransactionStoreForReconcile.
type mockTransactionStore struct {
	txs map[string]domain.Transaction
}

func newMockTransactionStore() *mockTransactionStore {
	return &mockTransactionStore{txs: make(map[string]domain.Transaction)}
}

func (m *mockTransactionStore) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	tx, ok := m.txs[id]
	if !ok {
		return domain.Transaction{}, gateway.ErrNotFound
	}
	return tx, nil
}

func (m *mockTransactionStore) Save(ctx context.Context, v domain.Transaction) error {
	m.txs[v.ID] = v
	return nil
}

func (m *mockTransactionStore) List(ctx context.Context, filter banktransaction.ListFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range m.txs {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// mockInvoiceReconcileStore implements InvoiceStoreForReconcile.
type mockInvoiceReconcileStore struct {
	invoices map[string]invoice.Invoice
}

func newMockInvoiceReconcileStore() *mockInvoiceReconcileStore {
	return &mockInvoiceReconcileStore{invoices: make(map[string]invoice.Invoice)}
}

func (m *mockInvoiceReconcileStore) GetByID(ctx context.Context, id string) (invoice.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return invoice.Invoice{}, gateway.ErrNotFound
	}
	return inv, nil
}

func (m *mockInvoiceReconcileStore) GetByReference(ctx context.Context, ref string) (invoice.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.Reference == ref {
			return inv, nil
		}
	}
	return invoice.Invoice{}, gateway.ErrNotFound
}

func (m *mockInvoiceReconcileStore) Save(ctx context.Context, v invoice.Invoice) error {
	m.invoices[v.ID] = v
	return nil
}

func TestExecuteMatchTransaction_SettlesOnExactAmount(t *testing.T) {
	txStore := newMockTransactionStore()
	invStore := newMockInvoiceReconcileStore()
	txStore.txs["t1"] = domain.Transaction{ID: "t1", AmountCents: 14500, Status: domain.StatusUnmatched}
	invStore.invoices["i1"] = invoice.Invoice{ID: "i1", AmountCents: 14500, Status: invoice.StatusSent}

	deps := MatchTransactionDeps{TransactionStore: txStore, InvoiceStore: invStore, Now: fixedNow}
	err := ExecuteMatchTransaction(context.Background(), MatchTransactionInput{
		TransactionID: "t1", InvoiceID: "i1",
	}, deps)
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if tx := txStore.txs["t1"]; tx.Status != domain.StatusMatched || tx.InvoiceID != "i1" {
		t.Errorf("transaction = %+v, want matched to i1", tx)
	}
	inv := invStore.invoices["i1"]
	if inv.Status != invoice.StatusPaid {
		t.Errorf("invoice status = %q, want paid", inv.Status)
	}
	if !inv.PaidOn.Equal(fixedNow()) {
		t.Errorf("PaidOn = %v", inv.PaidOn)
	}
}

func TestExecuteMatchTransaction_PartialAmountLeavesInvoiceOpen(t *testing.T) {
	txStore := newMockTransactionStore()
	invStore := newMockInvoiceReconcileStore()
	txStore.txs["t1"] = domain.Transaction{ID: "t1", AmountCents: 5000, Status: domain.StatusUnmatched}
	invStore.invoices["i1"] = invoice.Invoice{ID: "i1", AmountCents: 14500, Status: invoice.StatusSent}

	deps := MatchTransactionDeps{TransactionStore: txStore, InvoiceStore: invStore, Now: fixedNow}
	if err := ExecuteMatchTransaction(context.Background(), MatchTransactionInput{TransactionID: "t1", InvoiceID: "i1"}, deps); err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if txStore.txs["t1"].Status != domain.StatusMatched {
		t.Error("transaction should still be matched")
	}
	if invStore.invoices["i1"].Status != invoice.StatusSent {
		t.Errorf("invoice status = %q, partial payment must not settle", invStore.invoices["i1"].Status)
	}
}

func TestExecuteMatchTransaction_AlreadyMatched(t *testing.T) {
	txStore := newMockTransactionStore()
	invStore := newMockInvoiceReconcileStore()
	txStore.txs["t1"] = domain.Transaction{ID: "t1", Status: domain.StatusMatched, InvoiceID: "other"}
	invStore.invoices["i1"] = invoice.Invoice{ID: "i1", Status: invoice.StatusSent}

	deps := MatchTransactionDeps{TransactionStore: txStore, InvoiceStore: invStore, Now: fixedNow}
	err := ExecuteMatchTransaction(context.Background(), MatchTransactionInput{TransactionID: "t1", InvoiceID: "i1"}, deps)
	if !errors.Is(err, domain.ErrAlreadyMatched) {
		t.Errorf("err = %v, want ErrAlreadyMatched", err)
	}
}

func TestExecuteUnmatchTransaction(t *testing.T) {
	txStore := newMockTransactionStore()
	txStore.txs["t1"] = domain.Transaction{ID: "t1", Status: domain.StatusMatched, InvoiceID: "i1"}

	if err := ExecuteUnmatchTransaction(context.Background(), "t1", UnmatchTransactionDeps{TransactionStore: txStore}); err != nil {
		t.Fatalf("unmatch failed: %v", err)
	}
	if tx := txStore.txs["t1"]; tx.Status != domain.StatusUnmatched || tx.InvoiceID != "" {
		t.Errorf("transaction = %+v, want unmatched with no invoice", tx)
	}
}

func TestExecuteAutoReconcile(t *testing.T) {
	ref1, _ := payment.FormatReference(1234567890)
	ref2, _ := payment.FormatReference(42)

	txStore := newMockTransactionStore()
	invStore := newMockInvoiceReconcileStore()

	// t1: valid reference, matching invoice, exact amount -> matched + settled.
	txStore.txs["t1"] = domain.Transaction{ID: "t1", AmountCents: 100, Reference: ref1, Status: domain.StatusUnmatched}
	invStore.invoices["i1"] = invoice.Invoice{ID: "i1", Reference: ref1, AmountCents: 100, Status: invoice.StatusSent}

	// t2: valid reference but no invoice carries it -> untouched.
	txStore.txs["t2"] = domain.Transaction{ID: "t2", AmountCents: 100, Reference: ref2, Status: domain.StatusUnmatched}

	// t3: free-text communication -> untouched.
	txStore.txs["t3"] = domain.Transaction{ID: "t3", AmountCents: 100, Reference: "merci pour le stage", Status: domain.StatusUnmatched}

	deps := AutoReconcileDeps{TransactionStore: txStore, InvoiceStore: invStore, Now: fixedNow}
	result, err := ExecuteAutoReconcile(context.Background(), deps)
	if err != nil {
		t.Fatalf("auto reconcile failed: %v", err)
	}

	if result.Scanned != 3 || result.Matched != 1 || result.Settled != 1 {
		t.Errorf("result = %+v, want scanned 3, matched 1, settled 1", result)
	}
	if txStore.txs["t1"].Status != domain.StatusMatched {
		t.Error("t1 should be matched")
	}
	if invStore.invoices["i1"].Status != invoice.StatusPaid {
		t.Error("i1 should be paid")
	}
	if txStore.txs["t2"].Status != domain.StatusUnmatched {
		t.Error("t2 should remain unmatched")
	}
	if txStore.txs["t3"].Status != domain.StatusUnmatched {
		t.Error("t3 should remain unmatched")
	}
}
