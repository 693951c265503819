// Package forms implements the generalized create/edit form controller: one
// parameterized edit-buffer lifecycle (seed, validate, submit) shared by all
// entity forms instead of per-screen duplicates.
package forms

import (
	"context"
	"fmt"
	"sync"

	"campdesk/internal/application/notify"
)

// Mode distinguishes creating a new record from editing an existing one.
type Mode string

// Form modes.
const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Validator returns per-field messages; an empty map means the buffer is
// valid. Validation runs on submit and never reaches the gateway on failure.
type Validator[T any] func(buffer T) map[string]string

// Saver persists the buffer (insert for create, update for edit) and
// returns the stored record (with server-assigned fields populated).
type Saver[T any] func(ctx context.Context, buffer T) (T, error)

// AfterSave is an optional secondary step keyed by the saved record, e.g.
// uploading a photo once the record id exists. Its failure is non-fatal:
// the primary record is never rolled back.
type AfterSave[T any] func(ctx context.Context, saved T) error

// Config wires a form controller to its entity-specific behavior.
type Config[T any] struct {
	Mode      Mode
	Validate  Validator[T]
	Save      Saver[T]
	AfterSave AfterSave[T]
	Notifier  notify.Notifier
	OnSaved   func(saved T) // parent list refresh/patch hook
}

// State is a snapshot of the form for rendering.
type State[T any] struct {
	Mode         Mode
	Buffer       T
	FieldErrors  map[string]string
	SubmitError  string // non-field failure from the gateway
	Warning      string // non-fatal secondary-step failure
	IsSubmitting bool
	Closed       bool
}

// Controller manages a single record's edit buffer and submit lifecycle.
// The buffer is always a copy of the source record; the parent list's rows
// are never mutated until the save succeeds.
type Controller[T any] struct {
	mu          sync.Mutex
	cfg         Config[T]
	buffer      T
	fieldErrors map[string]string
	submitError string
	warning     string
	submitting  bool
	closed      bool
}

// NewCreate opens a form in create mode seeded with entity defaults.
func NewCreate[T any](defaults T, cfg Config[T]) *Controller[T] {
	cfg.Mode = ModeCreate
	return newController(defaults, cfg)
}

// NewEdit opens a form in edit mode seeded with a copy of the record.
// PRE: record is a value type (or already deep-copied by the caller)
func NewEdit[T any](record T, cfg Config[T]) *Controller[T] {
	cfg.Mode = ModeEdit
	return newController(record, cfg)
}

func newController[T any](seed T, cfg Config[T]) *Controller[T] {
	return &Controller[T]{
		cfg:         cfg,
		buffer:      seed,
		fieldErrors: make(map[string]string),
	}
}

// Mutate applies an edit to the buffer, e.g. from a changed input.
func (c *Controller[T]) Mutate(edit func(*T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting || c.closed {
		return
	}
	edit(&c.buffer)
}

// Snapshot returns the current form state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	fieldErrors := make(map[string]string, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		fieldErrors[k] = v
	}
	return State[T]{
		Mode:         c.cfg.Mode,
		Buffer:       c.buffer,
		FieldErrors:  fieldErrors,
		SubmitError:  c.submitError,
		Warning:      c.warning,
		IsSubmitting: c.submitting,
		Closed:       c.closed,
	}
}

// Submit validates the buffer and persists it. On validation failure the
// field errors are populated and no save is attempted. On save failure the
// form stays open with the user's input intact. On success the form closes,
// the parent is signalled, and any secondary step runs with independent
// failure handling.
// POST: returns true only if the primary save succeeded
func (c *Controller[T]) Submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.submitting || c.closed {
		c.mu.Unlock()
		return false
	}
	c.fieldErrors = make(map[string]string)
	c.submitError = ""
	c.warning = ""
	if c.cfg.Validate != nil {
		if errs := c.cfg.Validate(c.buffer); len(errs) > 0 {
			c.fieldErrors = errs
			c.mu.Unlock()
			return false
		}
	}
	c.submitting = true
	buffer := c.buffer
	c.mu.Unlock()

	saved, err := c.cfg.Save(ctx, buffer)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		// Keep the buffer so the user's input is not lost.
		c.submitError = err.Error()
		c.mu.Unlock()
		if c.cfg.Notifier != nil {
			c.cfg.Notifier.Error(err.Error())
		}
		return false
	}
	c.buffer = saved
	c.closed = true
	c.mu.Unlock()

	if c.cfg.AfterSave != nil {
		if err := c.cfg.AfterSave(ctx, saved); err != nil {
			// The record exists without its attachment; report, don't roll back.
			c.mu.Lock()
			c.warning = fmt.Sprintf("saved, but attachment failed: %v", err)
			c.mu.Unlock()
			if c.cfg.Notifier != nil {
				c.cfg.Notifier.Error(c.Snapshot().Warning)
			}
		}
	}
	if c.cfg.OnSaved != nil {
		c.cfg.OnSaved(saved)
	}
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.Success("saved")
	}
	return true
}

// RequireFields is a validator building block: returns a message for each
// named field whose value (per the getter) is empty.
func RequireFields[T any](get func(T, string) string, fields ...string) Validator[T] {
	return func(buffer T) map[string]string {
		errs := make(map[string]string)
		for _, f := range fields {
			if get(buffer, f) == "" {
				errs[f] = "this field is required"
			}
		}
		return errs
	}
}

// Merge combines validators; later messages do not overwrite earlier ones
// for the same field.
func Merge[T any](validators ...Validator[T]) Validator[T] {
	return func(buffer T) map[string]string {
		errs := make(map[string]string)
		for _, v := range validators {
			for field, msg := range v(buffer) {
				if _, ok := errs[field]; !ok {
					errs[field] = msg
				}
			}
		}
		return errs
	}
}
