// Package creditnote defines credit notes issued against invoices, usually
// following an approved cancellation.
package creditnote

import (
	"errors"
	"strings"
	"time"
)

// Status constants.
const (
	StatusDraft   = "draft"
	StatusIssued  = "issued"
	StatusSettled = "settled"
)

// Domain errors.
var (
	ErrNotDraft  = errors.New("credit note is not in draft status")
	ErrNotIssued = errors.New("credit note is not issued")
)

// CreditNote holds state for one credit note.
type CreditNote struct {
	ID          string
	Number      string
	InvoiceID   string
	AmountCents int64
	Reason      string
	Status      string
	IssuedOn    time.Time
	CreatedAt   time.Time
}

// FieldErrors validates the credit note for the admin form.
func (c *CreditNote) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if c.InvoiceID == "" {
		errs["invoice_id"] = "invoice is required"
	}
	if c.AmountCents <= 0 {
		errs["amount"] = "amount must be positive"
	}
	if strings.TrimSpace(c.Reason) == "" {
		errs["reason"] = "reason is required"
	}
	return errs
}

// Issue transitions a draft to issued.
func (c *CreditNote) Issue(now time.Time) error {
	if c.Status != StatusDraft {
		return ErrNotDraft
	}
	c.Status = StatusIssued
	c.IssuedOn = now
	return nil
}

// Settle marks an issued credit note as refunded.
func (c *CreditNote) Settle() error {
	if c.Status != StatusIssued {
		return ErrNotIssued
	}
	c.Status = StatusSettled
	return nil
}
