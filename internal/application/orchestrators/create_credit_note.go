package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campdesk/internal/domain/creditnote"
	"campdesk/internal/domain/invoice"
)

// CreditNoteStoreForCreate defines the store interface needed by CreateCreditNote.
type CreditNoteStoreForCreate interface {
	NextSequence(ctx context.Context, year int) (int, error)
	Save(ctx context.Context, value creditnote.CreditNote) error
}

// InvoiceStoreForCreditNote defines the invoice lookup CreateCreditNote needs.
type InvoiceStoreForCreditNote interface {
	GetByID(ctx context.Context, id string) (invoice.Invoice, error)
}

// CreateCreditNoteInput carries input for the credit note orchestrator.
type CreateCreditNoteInput struct {
	InvoiceID   string
	AmountCents int64 // 0 means the full invoice amount
	Reason      string
}

// CreateCreditNoteDeps holds dependencies for CreateCreditNote.
type CreateCreditNoteDeps struct {
	CreditNoteStore CreditNoteStoreForCreate
	InvoiceStore    InvoiceStoreForCreditNote

	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateCreditNote issues a credit note against an invoice, typically
// after an approved cancellation.
// PRE: the invoice exists; the amount does not exceed the invoice amount
// POST: the credit note is persisted in issued status with a sequential number
func ExecuteCreateCreditNote(ctx context.Context, input CreateCreditNoteInput, deps CreateCreditNoteDeps) (creditnote.CreditNote, error) {
	if input.Reason == "" {
		return creditnote.CreditNote{}, errors.New("a reason is required")
	}

	inv, err := deps.InvoiceStore.GetByID(ctx, input.InvoiceID)
	if err != nil {
		return creditnote.CreditNote{}, err
	}

	amount := input.AmountCents
	if amount == 0 {
		amount = inv.AmountCents
	}
	if amount > inv.AmountCents {
		return creditnote.CreditNote{}, errors.New("credit amount exceeds the invoice amount")
	}

	now := deps.Now()
	seq, err := deps.CreditNoteStore.NextSequence(ctx, now.Year())
	if err != nil {
		return creditnote.CreditNote{}, err
	}

	note := creditnote.CreditNote{
		ID:          deps.GenerateID(),
		Number:      fmt.Sprintf("CN-%d-%04d", now.Year(), seq),
		InvoiceID:   inv.ID,
		AmountCents: amount,
		Reason:      input.Reason,
		Status:      creditnote.StatusDraft,
		CreatedAt:   now,
	}
	if err := note.Issue(now); err != nil {
		return creditnote.CreditNote{}, err
	}
	if err := deps.CreditNoteStore.Save(ctx, note); err != nil {
		return creditnote.CreditNote{}, err
	}

	slog.Info("billing_event", "event", "credit_note_issued",
		"credit_note_id", note.ID, "invoice_id", inv.ID, "amount_cents", amount)
	return note, nil
}
