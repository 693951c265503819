// Package subscriber defines newsletter subscribers.
package subscriber

import (
	"errors"
	"strings"
	"time"
)

// Status constants.
const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
)

// Domain errors.
var (
	ErrAlreadySubscribed   = errors.New("already subscribed")
	ErrAlreadyUnsubscribed = errors.New("already unsubscribed")
)

// Subscriber holds state for one newsletter recipient.
type Subscriber struct {
	ID             string
	Email          string
	Name           string
	Status         string
	SubscribedAt   time.Time
	UnsubscribedAt time.Time
}

// FieldErrors validates the subscriber for the admin form.
func (s *Subscriber) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if !strings.Contains(s.Email, "@") {
		errs["email"] = "email must be valid"
	}
	return errs
}

// Unsubscribe opts the recipient out.
// PRE: status is subscribed
func (s *Subscriber) Unsubscribe(now time.Time) error {
	if s.Status != StatusSubscribed {
		return ErrAlreadyUnsubscribed
	}
	s.Status = StatusUnsubscribed
	s.UnsubscribedAt = now
	return nil
}

// Resubscribe opts the recipient back in.
// PRE: status is unsubscribed
func (s *Subscriber) Resubscribe(now time.Time) error {
	if s.Status != StatusUnsubscribed {
		return ErrAlreadySubscribed
	}
	s.Status = StatusSubscribed
	s.SubscribedAt = now
	s.UnsubscribedAt = time.Time{}
	return nil
}
