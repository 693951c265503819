// Package request defines parent-initiated cancellation and inclusion
// requests awaiting an admin decision.
package request

import (
	"errors"
	"strings"
	"time"
)

// Kind constants.
const (
	KindCancellation = "cancellation"
	KindInclusion    = "inclusion"
)

// Status constants.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ErrAlreadyDecided is returned when approving or rejecting a request that
// has left pending status.
var ErrAlreadyDecided = errors.New("request has already been decided")

// Request holds state for one pending admin decision.
type Request struct {
	ID           string
	Kind         string
	ChildName    string
	ParentEmail  string
	SessionID    string
	Reason       string
	Status       string
	DecisionNote string
	DecidedAt    time.Time
	CreatedAt    time.Time
}

// FieldErrors validates the request for the admin form.
func (r *Request) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if r.Kind != KindCancellation && r.Kind != KindInclusion {
		errs["kind"] = "kind must be cancellation or inclusion"
	}
	if strings.TrimSpace(r.ChildName) == "" {
		errs["child_name"] = "child name is required"
	}
	if r.SessionID == "" {
		errs["session_id"] = "session is required"
	}
	return errs
}

// Approve decides the request positively.
// PRE: status is pending
func (r *Request) Approve(now time.Time, note string) error {
	if r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = StatusApproved
	r.DecisionNote = note
	r.DecidedAt = now
	return nil
}

// Reject decides the request negatively.
// PRE: status is pending
func (r *Request) Reject(now time.Time, note string) error {
	if r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = StatusRejected
	r.DecisionNote = note
	r.DecidedAt = now
	return nil
}
