// Package orchestrators implements the multi-store write flows behind the
// admin actions: issuing invoices, reconciling payments, deciding requests,
// and running the newsletter.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campdesk/internal/domain/invoice"
	"campdesk/internal/domain/payment"
)

// InvoiceStoreForIssue defines the store interface needed by IssueInvoice.
type InvoiceStoreForIssue interface {
	NextSequence(ctx context.Context, year int) (int, error)
	Save(ctx context.Context, value invoice.Invoice) error
}

// IssueInvoiceInput carries input for the issue orchestrator.
type IssueInvoiceInput struct {
	ParentName  string
	ParentEmail string
	AmountCents int64
	SessionID   string
	DueInDays   int // 0 means the default term
}

// DefaultPaymentTermDays is the invoice due term when none is given.
const DefaultPaymentTermDays = 30

// IssueInvoiceDeps holds dependencies for IssueInvoice.
type IssueInvoiceDeps struct {
	InvoiceStore InvoiceStoreForIssue

	// Injectable for deterministic tests.
	GenerateID        func() string
	GenerateReference func() string
	Now               func() time.Time
}

// ExecuteIssueInvoice creates an invoice in sent status with a sequential
// number and a fresh structured payment reference.
// PRE: input amounts and addresses have been validated by the form
// POST: the invoice is persisted with a reference that passes the mod-97 check
func ExecuteIssueInvoice(ctx context.Context, input IssueInvoiceInput, deps IssueInvoiceDeps) (invoice.Invoice, error) {
	if input.ParentName == "" || input.ParentEmail == "" {
		return invoice.Invoice{}, errors.New("parent name and email are required")
	}
	if input.AmountCents <= 0 {
		return invoice.Invoice{}, errors.New("amount must be positive")
	}

	now := deps.Now()
	seq, err := deps.InvoiceStore.NextSequence(ctx, now.Year())
	if err != nil {
		return invoice.Invoice{}, err
	}

	dueInDays := input.DueInDays
	if dueInDays <= 0 {
		dueInDays = DefaultPaymentTermDays
	}

	inv := invoice.Invoice{
		ID:          deps.GenerateID(),
		Number:      fmt.Sprintf("INV-%d-%04d", now.Year(), seq),
		Reference:   deps.GenerateReference(),
		ParentName:  input.ParentName,
		ParentEmail: input.ParentEmail,
		AmountCents: input.AmountCents,
		SessionID:   input.SessionID,
		Status:      invoice.StatusDraft,
		IssuedOn:    now,
		DueOn:       now.AddDate(0, 0, dueInDays),
		CreatedAt:   now,
	}

	if err := payment.ValidateReference(inv.Reference); err != nil {
		return invoice.Invoice{}, fmt.Errorf("generated reference is invalid: %w", err)
	}
	if err := inv.MarkSent(); err != nil {
		return invoice.Invoice{}, err
	}
	if err := deps.InvoiceStore.Save(ctx, inv); err != nil {
		return invoice.Invoice{}, err
	}

	slog.Info("billing_event", "event", "invoice_issued", "invoice_id", inv.ID, "number", inv.Number)
	return inv, nil
}

// InvoiceStoreForStatus defines the store interface for status transitions.
type InvoiceStoreForStatus interface {
	GetByID(ctx context.Context, id string) (invoice.Invoice, error)
	Save(ctx context.Context, value invoice.Invoice) error
}

// CancelInvoiceDeps holds dependencies for CancelInvoice.
type CancelInvoiceDeps struct {
	InvoiceStore InvoiceStoreForStatus
}

// ExecuteCancelInvoice voids an unpaid invoice.
// PRE: the invoice exists and is not paid
func ExecuteCancelInvoice(ctx context.Context, invoiceID string, deps CancelInvoiceDeps) error {
	if invoiceID == "" {
		return errors.New("invoice ID is required")
	}
	inv, err := deps.InvoiceStore.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := inv.Cancel(); err != nil {
		return err
	}
	if err := deps.InvoiceStore.Save(ctx, inv); err != nil {
		return err
	}
	slog.Info("billing_event", "event", "invoice_cancelled", "invoice_id", invoiceID)
	return nil
}
