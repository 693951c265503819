package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campdesk/internal/adapters/email"
	"campdesk/internal/domain/request"
	"campdesk/internal/domain/session"
	"campdesk/internal/domain/waitlist"
	"campdesk/internal/gateway"
)

// RequestStoreForDecide defines the store interface needed by DecideRequest.
type RequestStoreForDecide interface {
	GetByID(ctx context.Context, id string) (request.Request, error)
	Save(ctx context.Context, value request.Request) error
}

// SessionStoreForDecide defines the session access DecideRequest needs.
type SessionStoreForDecide interface {
	GetByID(ctx context.Context, id string) (session.Session, error)
	Save(ctx context.Context, value session.Session) error
}

// WaitlistStoreForDecide defines the waitlist access DecideRequest needs.
type WaitlistStoreForDecide interface {
	NextWaiting(ctx context.Context, sessionID string) (waitlist.Entry, error)
	Save(ctx context.Context, value waitlist.Entry) error
}

// DecideRequestInput carries the admin's decision.
type DecideRequestInput struct {
	RequestID string
	Approve   bool
	Note      string
}

// DecideRequestDeps holds dependencies for DecideRequest.
type DecideRequestDeps struct {
	RequestStore  RequestStoreForDecide
	SessionStore  SessionStoreForDecide
	WaitlistStore WaitlistStoreForDecide
	Sender        email.Sender
	Now           func() time.Time
}

// DecideRequestResult reports the side effects of a decision.
type DecideRequestResult struct {
	Request      request.Request
	PlaceFreed   bool
	OfferedTo    string // waitlist entry id offered the freed place, if any
	EmailWarning string // non-fatal notification failure
}

// ExecuteDecideRequest approves or rejects a pending request. Approving a
// cancellation frees the child's place and offers it to the front of the
// session's waiting list. The parent notification email is best-effort: a
// send failure never rolls the decision back.
// PRE: the request exists and is pending
// POST: the request is decided exactly once
func ExecuteDecideRequest(ctx context.Context, input DecideRequestInput, deps DecideRequestDeps) (DecideRequestResult, error) {
	var result DecideRequestResult
	if input.RequestID == "" {
		return result, errors.New("request ID is required")
	}

	req, err := deps.RequestStore.GetByID(ctx, input.RequestID)
	if err != nil {
		return result, err
	}

	now := deps.Now()
	if input.Approve {
		err = req.Approve(now, input.Note)
	} else {
		err = req.Reject(now, input.Note)
	}
	if err != nil {
		return result, err
	}
	if err := deps.RequestStore.Save(ctx, req); err != nil {
		return result, err
	}
	result.Request = req

	if input.Approve && req.Kind == request.KindCancellation {
		if err := freePlaceAndOffer(ctx, req.SessionID, now, deps, &result); err != nil {
			return result, err
		}
	}

	if deps.Sender != nil && req.ParentEmail != "" {
		subject := fmt.Sprintf("Votre demande pour %s", req.ChildName)
		body := decisionEmailHTML(req)
		if _, err := deps.Sender.Send(ctx, email.SendRequest{
			To:      []string{req.ParentEmail},
			Subject: subject,
			HTML:    body,
		}); err != nil {
			result.EmailWarning = fmt.Sprintf("decision saved, but the notification failed: %v", err)
			slog.Warn("request_event", "event", "decision_email_failed", "request_id", req.ID, "error", err)
		}
	}

	slog.Info("request_event", "event", "request_decided",
		"request_id", req.ID, "status", req.Status, "kind", req.Kind)
	return result, nil
}

// freePlaceAndOffer releases one booking and proposes the place to the next
// waiting child, if there is one.
func freePlaceAndOffer(ctx context.Context, sessionID string, now time.Time, deps DecideRequestDeps, result *DecideRequestResult) error {
	sess, err := deps.SessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := sess.Release(); err != nil {
		return err
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return err
	}
	result.PlaceFreed = true

	entry, err := deps.WaitlistStore.NextWaiting(ctx, sessionID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := entry.Offer(now); err != nil {
		return err
	}
	if err := deps.WaitlistStore.Save(ctx, entry); err != nil {
		return err
	}
	result.OfferedTo = entry.ID

	slog.Info("request_event", "event", "waitlist_offered",
		"session_id", sessionID, "entry_id", entry.ID, "position", entry.Position)
	return nil
}

func decisionEmailHTML(req request.Request) string {
	verdict := "acceptée"
	if req.Status == request.StatusRejected {
		verdict = "refusée"
	}
	body := fmt.Sprintf("<p>Bonjour,</p><p>Votre demande concernant %s a été %s.</p>", req.ChildName, verdict)
	if req.DecisionNote != "" {
		body += fmt.Sprintf("<p>Remarque : %s</p>", req.DecisionNote)
	}
	return body
}
