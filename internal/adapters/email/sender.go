// Package email abstracts outbound mail behind a Sender interface so
// orchestrators can notify parents and subscribers without knowing the
// provider. ResendSender is the real implementation; NoopSender and
// RecorderSender cover development and tests.
package email

import (
	"context"
	"time"
)

// SendRequest describes one outbound email.
type SendRequest struct {
	To      []string
	From    string // empty means the sender's configured default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult reports a delivery accepted by the provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	// SendBatch delivers many emails at once; results follow request order.
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
