package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	btxDomain "campdesk/internal/domain/banktransaction"
	stageDomain "campdesk/internal/domain/stage"

	btxStore "campdesk/internal/adapters/storage/banktransaction"
	stageStore "campdesk/internal/adapters/storage/stage"
	"campdesk/internal/gateway"
)

// Mock implementations for testing
type mockStageStore struct {
	stages  map[string]stageDomain.Stage
	saveErr error
}

// GetByID implements the stage store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or gateway.ErrNotFound
func (m *mockStageStore) GetByID(ctx context.Context, id string) (stageDomain.Stage, error) {
	if s, ok := m.stages[id]; ok {
		return s, nil
	}
	return stageDomain.Stage{}, gateway.ErrNotFound
}

// Save implements the stage store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted unless saveErr is armed
func (m *mockStageStore) Save(ctx context.Context, s stageDomain.Stage) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.stages == nil {
		m.stages = make(map[string]stageDomain.Stage)
	}
	m.stages[s.ID] = s
	return nil
}

// Delete implements the stage store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockStageStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.stages[id]; !ok {
		return gateway.ErrNotFound
	}
	delete(m.stages, id)
	return nil
}

// List implements the stage store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities honoring Limit/Offset
func (m *mockStageStore) List(ctx context.Context, filter stageStore.ListFilter) ([]stageDomain.Stage, error) {
	var list []stageDomain.Stage
	for _, s := range m.stages {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(filter.Search)) {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return page(list, filter.Offset, filter.Limit), nil
}

// Count implements the stage store interface for testing.
// PRE: filter has valid parameters
// POST: Returns count of matching entities
func (m *mockStageStore) Count(ctx context.Context, filter stageStore.ListFilter) (int, error) {
	count := 0
	for _, s := range m.stages {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(filter.Search)) {
			continue
		}
		count++
	}
	return count, nil
}

type mockTransactionStore struct {
	transactions map[string]btxDomain.Transaction
}

// GetByID implements the transaction store interface for testing.
func (m *mockTransactionStore) GetByID(ctx context.Context, id string) (btxDomain.Transaction, error) {
	if tx, ok := m.transactions[id]; ok {
		return tx, nil
	}
	return btxDomain.Transaction{}, gateway.ErrNotFound
}

// Save implements the transaction store interface for testing.
func (m *mockTransactionStore) Save(ctx context.Context, tx btxDomain.Transaction) error {
	if m.transactions == nil {
		m.transactions = make(map[string]btxDomain.Transaction)
	}
	m.transactions[tx.ID] = tx
	return nil
}

// Delete implements the transaction store interface for testing.
func (m *mockTransactionStore) Delete(ctx context.Context, id string) error {
	delete(m.transactions, id)
	return nil
}

// List implements the transaction store interface for testing, honoring the
// status filter and Limit/Offset the way the SQLite store does.
func (m *mockTransactionStore) List(ctx context.Context, filter btxStore.ListFilter) ([]btxDomain.Transaction, error) {
	var list []btxDomain.Transaction
	for _, tx := range m.transactions {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		list = append(list, tx)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, filter.Offset, filter.Limit), nil
}

// Count implements the transaction store interface for testing.
func (m *mockTransactionStore) Count(ctx context.Context, filter btxStore.ListFilter) (int, error) {
	count := 0
	for _, tx := range m.transactions {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		count++
	}
	return count, nil
}

// page slices a list the way a SQL LIMIT/OFFSET would.
func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// TestPostStages_CreateDefaultsActive tests that a stage created from the
// admin form is stored and starts active without the form saying so.
func TestPostStages_CreateDefaultsActive(t *testing.T) {
	mockStages := &mockStageStore{stages: make(map[string]stageDomain.Stage)}
	stores = &Stores{StageStore: mockStages}

	formData := url.Values{
		"Title":     []string{"Aventure"},
		"AgeMin":    []string{"6"},
		"AgeMax":    []string{"12"},
		"BasePrice": []string{"150"},
	}
	req := httptest.NewRequest("POST", "/stages", strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handleStages(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want %d. Body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if location := rec.Header().Get("Location"); location != "/stages" {
		t.Errorf("got redirect %q, want %q", location, "/stages")
	}

	if len(mockStages.stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(mockStages.stages))
	}
	for _, s := range mockStages.stages {
		if s.Title != "Aventure" {
			t.Errorf("got title %q, want %q", s.Title, "Aventure")
		}
		if s.BasePriceCents != 15000 {
			t.Errorf("got base price %d, want 15000", s.BasePriceCents)
		}
		if !s.Active {
			t.Error("a newly created stage should be active")
		}
		if s.ID == "" {
			t.Error("saved stage should have a generated ID")
		}
	}
}

// TestPostStages_InvertedAgeRange tests that an inverted age range is
// rejected before the store is touched, with the error on age_max.
func TestPostStages_InvertedAgeRange(t *testing.T) {
	mockStages := &mockStageStore{stages: make(map[string]stageDomain.Stage)}
	stores = &Stores{StageStore: mockStages}

	formData := url.Values{
		"Title":  []string{"Aventure"},
		"AgeMin": []string{"10"},
		"AgeMax": []string{"5"},
	}
	req := httptest.NewRequest("POST", "/stages", strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handleStages(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want %d. Body: %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := body.Fields["age_max"]; !ok {
		t.Errorf("expected a validation message on age_max, got %v", body.Fields)
	}
	if len(mockStages.stages) != 0 {
		t.Errorf("store should not be touched on validation failure, has %d stages", len(mockStages.stages))
	}
}

// TestPostStages_SaveFailureReportsGateway tests that a store failure
// surfaces as a gateway error without fabricating a saved record.
func TestPostStages_SaveFailureReportsGateway(t *testing.T) {
	mockStages := &mockStageStore{
		stages:  make(map[string]stageDomain.Stage),
		saveErr: errors.New("disk full"),
	}
	stores = &Stores{StageStore: mockStages}

	formData := url.Values{
		"Title":  []string{"Aventure"},
		"AgeMin": []string{"6"},
		"AgeMax": []string{"12"},
	}
	req := httptest.NewRequest("POST", "/stages", strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handleStages(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want %d. Body: %s", rec.Code, http.StatusBadGateway, rec.Body.String())
	}
	if len(mockStages.stages) != 0 {
		t.Errorf("no stage should be stored after a failed save, has %d", len(mockStages.stages))
	}
}

// TestGetStages_ListAndSearch tests listing, search narrowing and the JSON
// shape of the stage list endpoint.
func TestGetStages_ListAndSearch(t *testing.T) {
	mockStages := &mockStageStore{stages: make(map[string]stageDomain.Stage)}
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("s%d", i)
		mockStages.stages[id] = stageDomain.Stage{
			ID: id, Title: fmt.Sprintf("Stage %d", i), Category: "sport",
			AgeMin: 6, AgeMax: 12, Active: true, CreatedAt: time.Now(),
		}
	}
	mockStages.stages["poney"] = stageDomain.Stage{
		ID: "poney", Title: "Poney et nature", Category: "animaux",
		AgeMin: 6, AgeMax: 12, Active: true, CreatedAt: time.Now(),
	}
	stores = &Stores{StageStore: mockStages}

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantRows  int
	}{
		{"all stages", "", 4, 4},
		{"search narrows", "?q=poney", 1, 1},
		{"category filter", "?category=sport", 3, 3},
		{"page size caps rows", "?per_page=10", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/stages"+tt.query, nil)
			rec := httptest.NewRecorder()

			handleStages(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("got status %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
			}
			var body struct {
				Rows       []stageDomain.Stage `json:"rows"`
				TotalCount int                 `json:"totalCount"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.TotalCount != tt.wantTotal {
				t.Errorf("got totalCount %d, want %d", body.TotalCount, tt.wantTotal)
			}
			if len(body.Rows) != tt.wantRows {
				t.Errorf("got %d rows, want %d", len(body.Rows), tt.wantRows)
			}
		})
	}
}

// TestGetTransactions_StatusFilter tests that filtering 25 statement lines
// down to the 10 unmatched ones reports a single page.
func TestGetTransactions_StatusFilter(t *testing.T) {
	mockTx := &mockTransactionStore{transactions: make(map[string]btxDomain.Transaction)}
	for i := 0; i < 25; i++ {
		status := btxDomain.StatusMatched
		if i < 10 {
			status = btxDomain.StatusUnmatched
		}
		id := fmt.Sprintf("tx%02d", i)
		mockTx.transactions[id] = btxDomain.Transaction{
			ID: id, AmountCents: 14500, Counterparty: "BNP Paribas Fortis",
			Status: status, CreatedAt: time.Now(),
		}
	}
	stores = &Stores{TransactionStore: mockTx}

	req := httptest.NewRequest("GET", "/transactions?status=unmatched&per_page=10", nil)
	rec := httptest.NewRecorder()

	handleTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var body struct {
		Rows       []btxDomain.Transaction `json:"rows"`
		TotalCount int                     `json:"totalCount"`
		PageInfo   struct {
			Page       int
			PerPage    int
			Total      int
			TotalPages int
		} `json:"pageInfo"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TotalCount != 10 {
		t.Errorf("got totalCount %d, want 10", body.TotalCount)
	}
	if body.PageInfo.TotalPages != 1 {
		t.Errorf("got totalPages %d, want 1", body.PageInfo.TotalPages)
	}
	if len(body.Rows) != 10 {
		t.Errorf("got %d rows, want 10", len(body.Rows))
	}
	for _, tx := range body.Rows {
		if tx.Status != btxDomain.StatusUnmatched {
			t.Errorf("row %s has status %q, want unmatched", tx.ID, tx.Status)
		}
	}
}

// TestPostStageDelete_Idempotent tests that deleting an already-absent
// stage still succeeds.
func TestPostStageDelete_Idempotent(t *testing.T) {
	mockStages := &mockStageStore{stages: map[string]stageDomain.Stage{
		"s1": {ID: "s1", Title: "Cirque", AgeMin: 5, AgeMax: 10, Active: true},
	}}
	stores = &Stores{StageStore: mockStages}

	for i := 0; i < 2; i++ {
		formData := url.Values{"ID": []string{"s1"}}
		req := httptest.NewRequest("POST", "/stages/delete", strings.NewReader(formData.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		handleStageDelete(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete attempt %d: got status %d, want %d", i+1, rec.Code, http.StatusNoContent)
		}
	}
	if len(mockStages.stages) != 0 {
		t.Errorf("expected stage removed, %d remain", len(mockStages.stages))
	}
}

// TestPostTransactionUnmatch_NotFound tests the 404 path for an unknown
// statement line.
func TestPostTransactionUnmatch_NotFound(t *testing.T) {
	stores = &Stores{TransactionStore: &mockTransactionStore{}}

	formData := url.Values{"TransactionID": []string{"ghost"}}
	req := httptest.NewRequest("POST", "/transactions/unmatch", strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handleTransactionUnmatch(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestGetHealthz tests the liveness probe answers without touching stores.
func TestGetHealthz(t *testing.T) {
	stores = nil

	rec := httptest.NewRecorder()
	handleHealthz(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("unexpected body: %s", body)
	}

	rec = httptest.NewRecorder()
	handleHealthz(rec, httptest.NewRequest("POST", "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
