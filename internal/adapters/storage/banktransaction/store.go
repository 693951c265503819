package banktransaction

import (
	"context"

	domain "campdesk/internal/domain/banktransaction"
)

// Store persists bank Transaction state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	Save(ctx context.Context, value domain.Transaction) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Transaction, error)
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
