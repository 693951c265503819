package invoice

import (
	"testing"
	"time"
)

func outstanding() Invoice {
	return Invoice{
		ID: "i1", Number: "INV-2026-0001", ParentName: "Dupont",
		ParentEmail: "dupont@example.be", AmountCents: 15000, Status: StatusSent,
		IssuedOn: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		DueOn:    time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

// TestLifecycle walks draft -> sent -> paid.
func TestLifecycle(t *testing.T) {
	inv := outstanding()
	inv.Status = StatusDraft

	if err := inv.MarkPaid(time.Now()); err == nil {
		t.Error("paying a draft should fail")
	}
	if err := inv.MarkSent(); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if err := inv.MarkSent(); err != ErrNotDraft {
		t.Errorf("double send: got %v, want ErrNotDraft", err)
	}
	paidAt := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	if err := inv.MarkPaid(paidAt); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if inv.Status != StatusPaid || !inv.PaidOn.Equal(paidAt) {
		t.Errorf("after payment: status=%s paidOn=%v", inv.Status, inv.PaidOn)
	}
	if err := inv.MarkPaid(time.Now()); err != ErrAlreadyPaid {
		t.Errorf("double payment: got %v, want ErrAlreadyPaid", err)
	}
	if err := inv.Cancel(); err != ErrAlreadyPaid {
		t.Errorf("cancelling paid: got %v, want ErrAlreadyPaid", err)
	}
}

// TestMarkOverdue verifies the due-date guard.
func TestMarkOverdue(t *testing.T) {
	inv := outstanding()
	before := inv.DueOn.Add(-24 * time.Hour)
	after := inv.DueOn.Add(24 * time.Hour)

	if err := inv.MarkOverdue(before); err == nil {
		t.Error("overdue before due date should fail")
	}
	if err := inv.MarkOverdue(after); err != nil {
		t.Fatalf("MarkOverdue: %v", err)
	}
	if !inv.IsOutstanding() {
		t.Error("overdue invoice should still be outstanding")
	}
	// An overdue invoice can still be paid.
	if err := inv.MarkPaid(after); err != nil {
		t.Errorf("paying overdue: %v", err)
	}
}

// TestFieldErrors covers required fields and the date ordering rule.
func TestFieldErrors(t *testing.T) {
	inv := outstanding()
	if errs := inv.FieldErrors(); len(errs) != 0 {
		t.Errorf("expected valid, got %v", errs)
	}

	inv.ParentName = ""
	inv.ParentEmail = "not-an-email"
	inv.AmountCents = 0
	inv.DueOn = inv.IssuedOn.Add(-time.Hour)
	errs := inv.FieldErrors()
	for _, field := range []string{"parent_name", "parent_email", "amount", "due_on"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error on %s, got %v", field, errs)
		}
	}
}
