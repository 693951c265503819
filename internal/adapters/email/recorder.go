package email

import (
	"context"
	"fmt"
	"time"
)

// RecorderSender captures sends in memory. Test double.
type RecorderSender struct {
	Sent    []SendRequest
	FailAll bool
}

// Send records the request, or fails when scripted to.
func (r *RecorderSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if r.FailAll {
		return SendResult{}, fmt.Errorf("recorder: send disabled")
	}
	r.Sent = append(r.Sent, req)
	return SendResult{MessageID: fmt.Sprintf("rec-%d", len(r.Sent)), SentAt: time.Now()}, nil
}

// SendBatch records every request in the batch.
func (r *RecorderSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	var results []SendResult
	for _, req := range reqs {
		res, err := r.Send(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
