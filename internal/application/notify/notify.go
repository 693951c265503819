// Package notify defines the toast/notification capability injected into
// controllers and orchestrators. Keeping it an interface (rather than a
// module-level singleton) lets tests assert on emitted notifications without
// a rendering environment.
package notify

import "log/slog"

// Notifier receives user-facing outcome messages for fire-and-forget actions.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// SlogNotifier logs notifications as structured events.
type SlogNotifier struct{}

// Success logs a success toast.
func (SlogNotifier) Success(msg string) { slog.Info("toast", "level", "success", "message", msg) }

// Error logs an error toast.
func (SlogNotifier) Error(msg string) { slog.Warn("toast", "level", "error", "message", msg) }

// Recorder captures notifications for test assertions.
type Recorder struct {
	Successes []string
	Errors    []string
}

// Success records a success message.
func (r *Recorder) Success(msg string) { r.Successes = append(r.Successes, msg) }

// Error records an error message.
func (r *Recorder) Error(msg string) { r.Errors = append(r.Errors, msg) }
