package request

import (
	"context"

	domain "campdesk/internal/domain/request"
)

// Store persists Request state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Request, error)
	Save(ctx context.Context, value domain.Request) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Request, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit     int
	Offset    int
	Search    string
	Sort      string
	Dir       string
	Kind      string
	Status    string
	SessionID string
}
