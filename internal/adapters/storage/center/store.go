package center

import (
	"context"

	domain "campdesk/internal/domain/center"
)

// Store persists Center state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Center, error)
	Save(ctx context.Context, value domain.Center) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Center, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit  int
	Offset int
	Search string
	Sort   string
	Dir    string
	City   string
	Active *bool
}
