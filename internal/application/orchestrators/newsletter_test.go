package orchestrators

import (
	"context"
	"strings"
	"testing"

	"campdesk/internal/adapters/email"
	storesub "campdesk/internal/adapters/storage/subscriber"
	"campdesk/internal/domain/subscriber"
	"campdesk/internal/gateway"
)

type mockSubscriberStore struct {
	subs map[string]subscriber.Subscriber // keyed by email
}

func newMockSubscriberStore() *mockSubscriberStore {
	return &mockSubscriberStore{subs: make(map[string]subscriber.Subscriber)}
}

func (m *mockSubscriberStore) GetByEmail(ctx context.Context, addr string) (subscriber.Subscriber, error) {
	s, ok := m.subs[addr]
	if !ok {
		return subscriber.Subscriber{}, gateway.ErrNotFound
	}
	return s, nil
}

func (m *mockSubscriberStore) Save(ctx context.Context, v subscriber.Subscriber) error {
	m.subs[v.Email] = v
	return nil
}

func (m *mockSubscriberStore) List(ctx context.Context, filter storesub.ListFilter) ([]subscriber.Subscriber, error) {
	var out []subscriber.Subscriber
	for _, s := range m.subs {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func subscribeDeps(store *mockSubscriberStore) SubscribeDeps {
	return SubscribeDeps{
		SubscriberStore: store,
		GenerateID:      uuidSeq("sub"),
		Now:             fixedNow,
	}
}

func TestExecuteSubscribe_NormalizesAddress(t *testing.T) {
	store := newMockSubscriberStore()

	sub, err := ExecuteSubscribe(context.Background(), SubscribeInput{
		Email: "  Marie.Dupont@Example.BE ", Name: " Marie ",
	}, subscribeDeps(store))
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if sub.Email != "marie.dupont@example.be" {
		t.Errorf("Email = %q, want lowercase trimmed", sub.Email)
	}
	if sub.Name != "Marie" {
		t.Errorf("Name = %q", sub.Name)
	}
	if sub.Status != subscriber.StatusSubscribed {
		t.Errorf("Status = %q", sub.Status)
	}
}

func TestExecuteSubscribe_ExistingIsNoop(t *testing.T) {
	store := newMockSubscriberStore()
	deps := subscribeDeps(store)

	first, _ := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "p@x.be"}, deps)
	second, err := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "p@x.be"}, deps)
	if err != nil {
		t.Fatalf("second subscribe failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate subscribe created a new record: %q vs %q", second.ID, first.ID)
	}
}

func TestExecuteSubscribe_ReactivatesUnsubscribed(t *testing.T) {
	store := newMockSubscriberStore()
	deps := subscribeDeps(store)

	sub, _ := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "p@x.be"}, deps)
	if err := ExecuteUnsubscribe(context.Background(), "p@x.be", UnsubscribeDeps{SubscriberStore: store, Now: fixedNow}); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}

	again, err := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "p@x.be"}, deps)
	if err != nil {
		t.Fatalf("resubscribe failed: %v", err)
	}
	if again.ID != sub.ID {
		t.Error("resubscribe should reuse the existing record")
	}
	if again.Status != subscriber.StatusSubscribed {
		t.Errorf("Status = %q, want subscribed", again.Status)
	}
	if !again.UnsubscribedAt.IsZero() {
		t.Error("UnsubscribedAt should be cleared")
	}
}

func TestExecuteSubscribe_RejectsInvalidAddress(t *testing.T) {
	if _, err := ExecuteSubscribe(context.Background(), SubscribeInput{Email: "not-an-address"}, subscribeDeps(newMockSubscriberStore())); err == nil {
		t.Error("expected error for invalid address")
	}
}

func TestExecuteSendNewsletter(t *testing.T) {
	store := newMockSubscriberStore()
	deps := subscribeDeps(store)
	for _, addr := range []string{"a@x.be", "b@x.be", "c@x.be"} {
		if _, err := ExecuteSubscribe(context.Background(), SubscribeInput{Email: addr}, deps); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}
	if err := ExecuteUnsubscribe(context.Background(), "c@x.be", UnsubscribeDeps{SubscriberStore: store, Now: fixedNow}); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}

	sender := &email.RecorderSender{}
	result, err := ExecuteSendNewsletter(context.Background(), SendNewsletterInput{
		Subject:  "Stages d'été 2026",
		Markdown: "# Nouveautés\n\nLes inscriptions sont **ouvertes** !",
	}, SendNewsletterDeps{SubscriberStore: store, Sender: sender})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if result.Recipients != 2 || result.Sent != 2 {
		t.Errorf("result = %+v, want 2 recipients and 2 sent", result)
	}
	if len(sender.Sent) != 2 {
		t.Fatalf("provider got %d sends, want 2", len(sender.Sent))
	}
	for _, req := range sender.Sent {
		if req.To[0] == "c@x.be" {
			t.Error("unsubscribed recipient was mailed")
		}
		if !strings.Contains(req.HTML, "<strong>ouvertes</strong>") {
			t.Errorf("markdown not rendered: %q", req.HTML)
		}
		if !strings.Contains(req.HTML, "<h1") {
			t.Errorf("heading not rendered: %q", req.HTML)
		}
	}
}

func TestExecuteSendNewsletter_EmptyBody(t *testing.T) {
	_, err := ExecuteSendNewsletter(context.Background(), SendNewsletterInput{Subject: "x"}, SendNewsletterDeps{
		SubscriberStore: newMockSubscriberStore(), Sender: &email.RecorderSender{},
	})
	if err == nil {
		t.Error("expected error for empty body")
	}
}

func TestExecuteSendNewsletter_NoRecipients(t *testing.T) {
	sender := &email.RecorderSender{}
	result, err := ExecuteSendNewsletter(context.Background(), SendNewsletterInput{
		Subject: "x", Markdown: "y",
	}, SendNewsletterDeps{SubscriberStore: newMockSubscriberStore(), Sender: sender})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if result.Recipients != 0 || len(sender.Sent) != 0 {
		t.Errorf("nothing should be sent to an empty list: %+v", result)
	}
}
