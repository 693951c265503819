package school

import (
	"context"

	domain "campdesk/internal/domain/school"
)

// Store persists School state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.School, error)
	Save(ctx context.Context, value domain.School) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.School, error)
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
}
