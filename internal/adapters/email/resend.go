package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the Resend batch API's per-call ceiling.
const resendBatchLimit = 100

// ResendSender delivers mail through the Resend API. A request without an
// explicit From falls back to the sender's default address.
type ResendSender struct {
	client      *resend.Client
	defaultFrom string
}

// NewResendSender creates a sender bound to one API key.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), defaultFrom: from}
}

func (s *ResendSender) toParams(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.defaultFrom
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}
	return params
}

// Send delivers one email.
// PRE: req has at least one recipient
// POST: the mail is queued at Resend; the provider message ID is returned
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.toParams(req))
	if err != nil {
		slog.Error("email_event", "event", "send_failed", "to", req.To, "subject", req.Subject, "error", err)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("email_event", "event", "sent", "message_id", sent.Id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers many emails, chunked to the provider's batch limit.
// A chunk failure returns the results accepted so far with the error, so
// callers can report a partial campaign honestly.
// POST: results are in request order
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	results := make([]SendResult, 0, len(reqs))
	for start := 0; start < len(reqs); start += resendBatchLimit {
		end := min(start+resendBatchLimit, len(reqs))

		batch := make([]*resend.SendEmailRequest, 0, end-start)
		for _, req := range reqs[start:end] {
			batch = append(batch, s.toParams(req))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			slog.Error("email_event", "event", "batch_failed", "batch_size", len(batch), "error", err)
			return results, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			results = append(results, SendResult{MessageID: item.Id, SentAt: time.Now()})
		}
		slog.Info("email_event", "event", "batch_sent", "count", len(batch), "total_sent", len(results))
	}
	return results, nil
}
