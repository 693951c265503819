package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campdesk/internal/adapters/storage/banktransaction"
	domain "campdesk/internal/domain/banktransaction"
	"campdesk/internal/domain/invoice"
	"campdesk/internal/domain/payment"
	"campdesk/internal/gateway"
)

// TransactionStoreForReconcile defines the store interface needed by the
// reconciliation flows.
type TransactionStoreForReconcile interface {
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	Save(ctx context.Context, value domain.Transaction) error
	List(ctx context.Context, filter banktransaction.ListFilter) ([]domain.Transaction, error)
}

// InvoiceStoreForReconcile defines the invoice lookups reconciliation needs.
type InvoiceStoreForReconcile interface {
	GetByID(ctx context.Context, id string) (invoice.Invoice, error)
	GetByReference(ctx context.Context, reference string) (invoice.Invoice, error)
	Save(ctx context.Context, value invoice.Invoice) error
}

// MatchTransactionInput carries input for a manual match.
type MatchTransactionInput struct {
	TransactionID string
	InvoiceID     string
}

// MatchTransactionDeps holds dependencies for MatchTransaction.
type MatchTransactionDeps struct {
	TransactionStore TransactionStoreForReconcile
	InvoiceStore     InvoiceStoreForReconcile
	Now              func() time.Time
}

// ExecuteMatchTransaction links a statement line to an invoice. When the
// amounts agree the invoice is settled in the same step.
// PRE: both records exist; the transaction is not already matched
// POST: transaction status is matched; the invoice is paid iff amounts agree
func ExecuteMatchTransaction(ctx context.Context, input MatchTransactionInput, deps MatchTransactionDeps) error {
	if input.TransactionID == "" {
		return errors.New("transaction ID is required")
	}

	tx, err := deps.TransactionStore.GetByID(ctx, input.TransactionID)
	if err != nil {
		return err
	}
	inv, err := deps.InvoiceStore.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return err
	}

	if err := tx.Match(inv.ID); err != nil {
		return err
	}
	if err := deps.TransactionStore.Save(ctx, tx); err != nil {
		return err
	}

	settled := false
	if tx.AmountCents == inv.AmountCents && inv.IsOutstanding() {
		if err := inv.MarkPaid(deps.Now()); err != nil {
			return err
		}
		if err := deps.InvoiceStore.Save(ctx, inv); err != nil {
			return err
		}
		settled = true
	}

	slog.Info("billing_event", "event", "transaction_matched",
		"transaction_id", tx.ID, "invoice_id", inv.ID, "settled", settled)
	return nil
}

// UnmatchTransactionDeps holds dependencies for UnmatchTransaction.
type UnmatchTransactionDeps struct {
	TransactionStore TransactionStoreForReconcile
}

// ExecuteUnmatchTransaction reverts an incorrect match. The invoice status
// is left alone; correcting a wrongly settled invoice is a separate action.
func ExecuteUnmatchTransaction(ctx context.Context, transactionID string, deps UnmatchTransactionDeps) error {
	if transactionID == "" {
		return errors.New("transaction ID is required")
	}
	tx, err := deps.TransactionStore.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := tx.Unmatch(); err != nil {
		return err
	}
	if err := deps.TransactionStore.Save(ctx, tx); err != nil {
		return err
	}
	slog.Info("billing_event", "event", "transaction_unmatched", "transaction_id", transactionID)
	return nil
}

// ExecuteIgnoreTransaction excludes a statement line from reconciliation.
func ExecuteIgnoreTransaction(ctx context.Context, transactionID string, deps UnmatchTransactionDeps) error {
	if transactionID == "" {
		return errors.New("transaction ID is required")
	}
	tx, err := deps.TransactionStore.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if err := tx.Ignore(); err != nil {
		return err
	}
	if err := deps.TransactionStore.Save(ctx, tx); err != nil {
		return err
	}
	slog.Info("billing_event", "event", "transaction_ignored", "transaction_id", transactionID)
	return nil
}

// AutoReconcileDeps holds dependencies for AutoReconcile.
type AutoReconcileDeps struct {
	TransactionStore TransactionStoreForReconcile
	InvoiceStore     InvoiceStoreForReconcile
	Now              func() time.Time
}

// AutoReconcileResult summarizes one reconciliation run.
type AutoReconcileResult struct {
	Scanned int
	Matched int
	Settled int
}

// ExecuteAutoReconcile scans unmatched statement lines whose wire
// communication is a valid structured reference, matches each to the invoice
// carrying that reference, and settles the invoice when the amounts agree.
// Lines without a valid reference or without a matching invoice are left
// untouched for manual review.
func ExecuteAutoReconcile(ctx context.Context, deps AutoReconcileDeps) (AutoReconcileResult, error) {
	var result AutoReconcileResult

	unmatched, err := deps.TransactionStore.List(ctx, banktransaction.ListFilter{
		Status: domain.StatusUnmatched,
	})
	if err != nil {
		return result, err
	}
	result.Scanned = len(unmatched)

	for _, tx := range unmatched {
		if payment.ValidateReference(tx.Reference) != nil {
			continue
		}
		inv, err := deps.InvoiceStore.GetByReference(ctx, tx.Reference)
		if errors.Is(err, gateway.ErrNotFound) {
			continue
		}
		if err != nil {
			return result, err
		}

		if err := tx.Match(inv.ID); err != nil {
			continue
		}
		if err := deps.TransactionStore.Save(ctx, tx); err != nil {
			return result, err
		}
		result.Matched++

		if tx.AmountCents == inv.AmountCents && inv.IsOutstanding() {
			if err := inv.MarkPaid(deps.Now()); err != nil {
				continue
			}
			if err := deps.InvoiceStore.Save(ctx, inv); err != nil {
				return result, err
			}
			result.Settled++
		}
	}

	slog.Info("billing_event", "event", "auto_reconcile",
		"scanned", result.Scanned, "matched", result.Matched, "settled", result.Settled)
	return result, nil
}
