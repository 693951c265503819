// Package session defines scheduled stage instances: one stage running at
// one center over a date range with a capacity.
package session

import (
	"errors"
	"time"
)

// Status constants for the session lifecycle.
const (
	StatusActive    = "active"
	StatusFull      = "full"
	StatusCancelled = "cancelled"
)

// Domain errors.
var (
	ErrAlreadyCancelled = errors.New("session is already cancelled")
	ErrNotFull          = errors.New("session is not full")
	ErrCancelled        = errors.New("a cancelled session cannot change occupancy")
)

// Session holds state for one scheduled stage instance.
type Session struct {
	ID         string
	StageID    string
	CenterID   string
	StartDate  time.Time
	EndDate    time.Time
	Capacity   int
	Booked     int
	PriceCents int64 // 0 means the stage's base price applies
	Status     string
	CreatedAt  time.Time
}

// FieldErrors validates the session for the admin form.
func (s *Session) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if s.StageID == "" {
		errs["stage_id"] = "stage is required"
	}
	if s.CenterID == "" {
		errs["center_id"] = "center is required"
	}
	if s.StartDate.IsZero() {
		errs["start_date"] = "start date is required"
	}
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate) {
		errs["end_date"] = "end date cannot be before start date"
	}
	if s.Capacity < 1 {
		errs["capacity"] = "capacity must be at least 1"
	}
	if s.PriceCents < 0 {
		errs["price"] = "price cannot be negative"
	}
	return errs
}

// PlacesLeft returns the remaining capacity, never below zero.
func (s *Session) PlacesLeft() int {
	left := s.Capacity - s.Booked
	if left < 0 {
		return 0
	}
	return left
}

// Book registers one booking and flips the session to full at capacity.
// PRE: the session is not cancelled and has a place left
func (s *Session) Book() error {
	if s.Status == StatusCancelled {
		return ErrCancelled
	}
	if s.PlacesLeft() == 0 {
		return errors.New("session is full")
	}
	s.Booked++
	if s.PlacesLeft() == 0 {
		s.Status = StatusFull
	}
	return nil
}

// Release frees one booking, e.g. after an approved cancellation request.
// PRE: the session is not cancelled
// POST: a previously full session becomes active again
func (s *Session) Release() error {
	if s.Status == StatusCancelled {
		return ErrCancelled
	}
	if s.Booked > 0 {
		s.Booked--
	}
	if s.Status == StatusFull && s.PlacesLeft() > 0 {
		s.Status = StatusActive
	}
	return nil
}

// Cancel marks the session cancelled.
func (s *Session) Cancel() error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	s.Status = StatusCancelled
	return nil
}
