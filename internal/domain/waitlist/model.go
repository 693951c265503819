// Package waitlist defines waiting-list entries for full sessions.
package waitlist

import (
	"errors"
	"strings"
	"time"
)

// Status constants.
const (
	StatusWaiting   = "waiting"
	StatusOffered   = "offered"
	StatusConverted = "converted"
	StatusExpired   = "expired"
)

// Domain errors.
var (
	ErrNotWaiting = errors.New("entry is not waiting")
	ErrNotOffered = errors.New("entry has no open offer")
)

// Entry holds state for one waiting-list position.
type Entry struct {
	ID          string
	SessionID   string
	ChildName   string
	ParentEmail string
	Position    int
	Status      string
	OfferedAt   time.Time
	CreatedAt   time.Time
}

// FieldErrors validates the entry for the admin form.
func (e *Entry) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if e.SessionID == "" {
		errs["session_id"] = "session is required"
	}
	if strings.TrimSpace(e.ChildName) == "" {
		errs["child_name"] = "child name is required"
	}
	if !strings.Contains(e.ParentEmail, "@") {
		errs["parent_email"] = "parent email must be valid"
	}
	return errs
}

// Offer proposes the freed place to this entry.
// PRE: status is waiting
func (e *Entry) Offer(now time.Time) error {
	if e.Status != StatusWaiting {
		return ErrNotWaiting
	}
	e.Status = StatusOffered
	e.OfferedAt = now
	return nil
}

// Convert records that the offer was taken up and the child is booked.
func (e *Entry) Convert() error {
	if e.Status != StatusOffered {
		return ErrNotOffered
	}
	e.Status = StatusConverted
	return nil
}

// Expire closes an offer that was not taken up in time.
func (e *Entry) Expire() error {
	if e.Status != StatusOffered {
		return ErrNotOffered
	}
	e.Status = StatusExpired
	return nil
}
