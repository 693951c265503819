package invoice

import (
	"context"

	domain "campdesk/internal/domain/invoice"
)

// Store persists Invoice state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Invoice, error)
	GetByReference(ctx context.Context, reference string) (domain.Invoice, error)
	NextSequence(ctx context.Context, year int) (int, error)
	Save(ctx context.Context, value domain.Invoice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Invoice, error)
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
	SessionID string
}
