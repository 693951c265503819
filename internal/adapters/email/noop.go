package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender accepts every send without delivering anything. It keeps the
// admin fully usable in development where no Resend key is configured.
type NoopSender struct{}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the would-be delivery and reports success.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("email_event", "event", "noop_send", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// SendBatch logs each would-be delivery and reports success for all.
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	now := time.Now()
	for i, req := range reqs {
		slog.Info("email_event", "event", "noop_send", "index", i, "to", req.To, "subject", req.Subject)
		results = append(results, SendResult{
			MessageID: fmt.Sprintf("noop-%d-%d", now.UnixNano(), i),
			SentAt:    now,
		})
	}
	return results, nil
}
