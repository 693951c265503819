package projections

import (
	"context"
	"testing"
	"time"

	storesession "campdesk/internal/adapters/storage/session"
	"campdesk/internal/domain/center"
	"campdesk/internal/domain/session"
	"campdesk/internal/domain/stage"
	"campdesk/internal/gateway"
)

type mockSessionListStore struct {
	sessions []session.Session
}

func (m mockSessionListStore) List(ctx context.Context, f storesession.ListFilter) ([]session.Session, error) {
	return m.sessions, nil
}

func (m mockSessionListStore) Count(ctx context.Context, f storesession.ListFilter) (int, error) {
	return len(m.sessions), nil
}

type mockStageLookup struct{ stages map[string]stage.Stage }

func (m mockStageLookup) GetByID(ctx context.Context, id string) (stage.Stage, error) {
	s, ok := m.stages[id]
	if !ok {
		return stage.Stage{}, gateway.ErrNotFound
	}
	return s, nil
}

type mockCenterLookup struct{ centers map[string]center.Center }

func (m mockCenterLookup) GetByID(ctx context.Context, id string) (center.Center, error) {
	c, ok := m.centers[id]
	if !ok {
		return center.Center{}, gateway.ErrNotFound
	}
	return c, nil
}

func TestQueryGetSessionList_JoinsLabels(t *testing.T) {
	start := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	deps := SessionListDeps{
		SessionStore: mockSessionListStore{sessions: []session.Session{
			{ID: "s1", StageID: "st1", CenterID: "c1", StartDate: start, Capacity: 20, Booked: 15},
			{ID: "s2", StageID: "st1", CenterID: "c2", StartDate: start, Capacity: 10, Booked: 10, PriceCents: 9900},
		}},
		StageStore: mockStageLookup{stages: map[string]stage.Stage{
			"st1": {ID: "st1", Title: "Poney", BasePriceCents: 14500},
		}},
		CenterStore: mockCenterLookup{centers: map[string]center.Center{
			"c1": {ID: "c1", Name: "Domaine des Fagnes"},
			"c2": {ID: "c2", Name: "Centre Le Préau"},
		}},
	}

	result, err := QueryGetSessionList(context.Background(), storesession.ListFilter{}, deps)
	if err != nil {
		t.Fatalf("QueryGetSessionList failed: %v", err)
	}

	if result.TotalCount != 2 || len(result.Rows) != 2 {
		t.Fatalf("result = %d rows / total %d", len(result.Rows), result.TotalCount)
	}

	first := result.Rows[0]
	if first.StageTitle != "Poney" || first.CenterName != "Domaine des Fagnes" {
		t.Errorf("labels = %q / %q", first.StageTitle, first.CenterName)
	}
	if first.PlacesLeft != 5 {
		t.Errorf("PlacesLeft = %d, want 5", first.PlacesLeft)
	}
	// No override: the stage base price applies.
	if first.PriceCents != 14500 {
		t.Errorf("PriceCents = %d, want base 14500", first.PriceCents)
	}
	// Override set: it wins.
	if result.Rows[1].PriceCents != 9900 {
		t.Errorf("override PriceCents = %d, want 9900", result.Rows[1].PriceCents)
	}
}

func TestQueryGetSessionList_DanglingReference(t *testing.T) {
	deps := SessionListDeps{
		SessionStore: mockSessionListStore{sessions: []session.Session{
			{ID: "s1", StageID: "ghost", CenterID: "ghost", Capacity: 5},
		}},
		StageStore:  mockStageLookup{stages: map[string]stage.Stage{}},
		CenterStore: mockCenterLookup{centers: map[string]center.Center{}},
	}

	result, err := QueryGetSessionList(context.Background(), storesession.ListFilter{}, deps)
	if err != nil {
		t.Fatalf("a dangling reference must not fail the page: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(result.Rows))
	}
	if result.Rows[0].StageTitle != "" || result.Rows[0].CenterName != "" {
		t.Errorf("labels should be empty for dangling references: %+v", result.Rows[0])
	}
}
