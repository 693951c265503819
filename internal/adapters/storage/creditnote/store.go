package creditnote

import (
	"context"

	domain "campdesk/internal/domain/creditnote"
)

// Store persists CreditNote state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.CreditNote, error)
	NextSequence(ctx context.Context, year int) (int, error)
	Save(ctx context.Context, value domain.CreditNote) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.CreditNote, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit     int
	Offset    int
	Search    string
	Sort      string
	Dir       string
	Status    string
	InvoiceID string
}
