// Package invoice defines parent-facing invoices carrying a Belgian
// structured payment reference.
package invoice

import (
	"errors"
	"strings"
	"time"
)

// Status constants for the invoice lifecycle.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Domain errors.
var (
	ErrNotDraft         = errors.New("invoice is not in draft status")
	ErrNotOutstanding   = errors.New("invoice is not outstanding")
	ErrAlreadyPaid      = errors.New("invoice is already paid")
	ErrAlreadyCancelled = errors.New("invoice is already cancelled")
)

// Invoice holds state for one invoice.
type Invoice struct {
	ID          string
	Number      string // human-facing sequential number, e.g. INV-2026-0042
	Reference   string // structured payment communication
	ParentName  string
	ParentEmail string
	AmountCents int64
	SessionID   string
	Status      string
	IssuedOn    time.Time
	DueOn       time.Time
	PaidOn      time.Time
	CreatedAt   time.Time
}

// FieldErrors validates the invoice for the admin form.
func (i *Invoice) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(i.ParentName) == "" {
		errs["parent_name"] = "parent name is required"
	}
	if !strings.Contains(i.ParentEmail, "@") {
		errs["parent_email"] = "parent email must be valid"
	}
	if i.AmountCents <= 0 {
		errs["amount"] = "amount must be positive"
	}
	if !i.IssuedOn.IsZero() && !i.DueOn.IsZero() && i.DueOn.Before(i.IssuedOn) {
		errs["due_on"] = "due date cannot be before issue date"
	}
	return errs
}

// IsOutstanding reports whether payment is still expected.
func (i *Invoice) IsOutstanding() bool {
	return i.Status == StatusSent || i.Status == StatusOverdue
}

// MarkSent transitions a draft to sent.
// PRE: status is draft
func (i *Invoice) MarkSent() error {
	if i.Status != StatusDraft {
		return ErrNotDraft
	}
	i.Status = StatusSent
	return nil
}

// MarkPaid settles an outstanding invoice.
// PRE: status is sent or overdue
// POST: PaidOn is set
func (i *Invoice) MarkPaid(now time.Time) error {
	if !i.IsOutstanding() {
		if i.Status == StatusPaid {
			return ErrAlreadyPaid
		}
		return ErrNotOutstanding
	}
	i.Status = StatusPaid
	i.PaidOn = now
	return nil
}

// MarkOverdue flags a sent invoice past its due date.
// PRE: status is sent and the due date has passed
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status != StatusSent {
		return ErrNotOutstanding
	}
	if i.DueOn.IsZero() || now.Before(i.DueOn) {
		return errors.New("invoice is not past due")
	}
	i.Status = StatusOverdue
	return nil
}

// Cancel voids an invoice that has not been paid.
func (i *Invoice) Cancel() error {
	switch i.Status {
	case StatusPaid:
		return ErrAlreadyPaid
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	i.Status = StatusCancelled
	return nil
}
