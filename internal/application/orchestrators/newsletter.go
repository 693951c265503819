package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"campdesk/internal/adapters/email"
	storesub "campdesk/internal/adapters/storage/subscriber"
	"campdesk/internal/domain/subscriber"
	"campdesk/internal/gateway"
)

// SubscriberStoreForNewsletter defines the store interface the newsletter
// flows need.
type SubscriberStoreForNewsletter interface {
	GetByEmail(ctx context.Context, email string) (subscriber.Subscriber, error)
	Save(ctx context.Context, value subscriber.Subscriber) error
	List(ctx context.Context, filter storesub.ListFilter) ([]subscriber.Subscriber, error)
}

// SubscribeInput carries input for Subscribe.
type SubscribeInput struct {
	Email string
	Name  string
}

// SubscribeDeps holds dependencies for Subscribe.
type SubscribeDeps struct {
	SubscriberStore SubscriberStoreForNewsletter
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteSubscribe adds a recipient, or reactivates one who previously opted
// out. Subscribing an already-subscribed address is a no-op, not an error.
// POST: the address is in subscribed status
func ExecuteSubscribe(ctx context.Context, input SubscribeInput, deps SubscribeDeps) (subscriber.Subscriber, error) {
	addr := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(addr, "@") {
		return subscriber.Subscriber{}, errors.New("a valid email address is required")
	}

	existing, err := deps.SubscriberStore.GetByEmail(ctx, addr)
	switch {
	case err == nil:
		if existing.Status == subscriber.StatusSubscribed {
			return existing, nil
		}
		if err := existing.Resubscribe(deps.Now()); err != nil {
			return subscriber.Subscriber{}, err
		}
		if err := deps.SubscriberStore.Save(ctx, existing); err != nil {
			return subscriber.Subscriber{}, err
		}
		slog.Info("newsletter_event", "event", "resubscribed", "subscriber_id", existing.ID)
		return existing, nil
	case errors.Is(err, gateway.ErrNotFound):
		// fall through to create
	default:
		return subscriber.Subscriber{}, err
	}

	sub := subscriber.Subscriber{
		ID:           deps.GenerateID(),
		Email:        addr,
		Name:         strings.TrimSpace(input.Name),
		Status:       subscriber.StatusSubscribed,
		SubscribedAt: deps.Now(),
	}
	if err := deps.SubscriberStore.Save(ctx, sub); err != nil {
		return subscriber.Subscriber{}, err
	}
	slog.Info("newsletter_event", "event", "subscribed", "subscriber_id", sub.ID)
	return sub, nil
}

// UnsubscribeDeps holds dependencies for Unsubscribe.
type UnsubscribeDeps struct {
	SubscriberStore SubscriberStoreForNewsletter
	Now             func() time.Time
}

// ExecuteUnsubscribe opts a recipient out by address.
// PRE: the address is currently subscribed
func ExecuteUnsubscribe(ctx context.Context, address string, deps UnsubscribeDeps) error {
	sub, err := deps.SubscriberStore.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(address)))
	if err != nil {
		return err
	}
	if err := sub.Unsubscribe(deps.Now()); err != nil {
		return err
	}
	if err := deps.SubscriberStore.Save(ctx, sub); err != nil {
		return err
	}
	slog.Info("newsletter_event", "event", "unsubscribed", "subscriber_id", sub.ID)
	return nil
}

// SendNewsletterInput carries the campaign content.
type SendNewsletterInput struct {
	Subject  string
	Markdown string
}

// SendNewsletterDeps holds dependencies for SendNewsletter.
type SendNewsletterDeps struct {
	SubscriberStore SubscriberStoreForNewsletter
	Sender          email.Sender
}

// SendNewsletterResult summarizes a campaign send.
type SendNewsletterResult struct {
	Recipients int
	Sent       int
}

// ExecuteSendNewsletter renders the markdown body to HTML and sends it to
// every subscribed recipient in one batch.
// PRE: subject and body are non-empty
// POST: Sent counts the emails accepted by the provider
func ExecuteSendNewsletter(ctx context.Context, input SendNewsletterInput, deps SendNewsletterDeps) (SendNewsletterResult, error) {
	var result SendNewsletterResult
	if strings.TrimSpace(input.Subject) == "" {
		return result, errors.New("a subject is required")
	}
	if strings.TrimSpace(input.Markdown) == "" {
		return result, errors.New("the newsletter body is empty")
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(input.Markdown), &html); err != nil {
		return result, err
	}

	subs, err := deps.SubscriberStore.List(ctx, storesub.ListFilter{
		Status: subscriber.StatusSubscribed,
	})
	if err != nil {
		return result, err
	}
	result.Recipients = len(subs)
	if len(subs) == 0 {
		return result, nil
	}

	reqs := make([]email.SendRequest, 0, len(subs))
	for _, sub := range subs {
		reqs = append(reqs, email.SendRequest{
			To:      []string{sub.Email},
			Subject: input.Subject,
			HTML:    html.String(),
		})
	}

	sent, err := deps.Sender.SendBatch(ctx, reqs)
	result.Sent = len(sent)
	if err != nil {
		return result, err
	}

	slog.Info("newsletter_event", "event", "newsletter_sent",
		"subject", input.Subject, "recipients", result.Recipients, "sent", result.Sent)
	return result, nil
}
