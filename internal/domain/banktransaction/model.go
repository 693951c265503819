// Package banktransaction defines imported bank statement lines awaiting
// reconciliation against invoices.
package banktransaction

import (
	"errors"
	"time"
)

// Status constants for reconciliation.
const (
	StatusUnmatched = "unmatched"
	StatusMatched   = "matched"
	StatusIgnored   = "ignored"
)

// Domain errors.
var (
	ErrAlreadyMatched = errors.New("transaction is already matched")
	ErrNotMatched     = errors.New("transaction is not matched")
	ErrEmptyInvoiceID = errors.New("invoice id is required to match")
)

// Transaction holds state for one bank statement line.
type Transaction struct {
	ID           string
	BookedOn     time.Time
	AmountCents  int64
	Counterparty string
	Reference    string // wire communication as typed by the payer
	Status       string
	InvoiceID    string // set when matched
	CreatedAt    time.Time
}

// Match links the transaction to an invoice.
// PRE: status is unmatched or ignored
// POST: status is matched and InvoiceID is set
func (t *Transaction) Match(invoiceID string) error {
	if invoiceID == "" {
		return ErrEmptyInvoiceID
	}
	if t.Status == StatusMatched {
		return ErrAlreadyMatched
	}
	t.Status = StatusMatched
	t.InvoiceID = invoiceID
	return nil
}

// Unmatch reverts an incorrect match.
func (t *Transaction) Unmatch() error {
	if t.Status != StatusMatched {
		return ErrNotMatched
	}
	t.Status = StatusUnmatched
	t.InvoiceID = ""
	return nil
}

// Ignore excludes the transaction from reconciliation (bank fees, internal
// transfers).
func (t *Transaction) Ignore() error {
	if t.Status == StatusMatched {
		return ErrAlreadyMatched
	}
	t.Status = StatusIgnored
	return nil
}
