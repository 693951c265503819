package stage

import (
	"context"

	domain "campdesk/internal/domain/stage"
)

// Store persists Stage state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Stage, error)
	Save(ctx context.Context, value domain.Stage) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Stage, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit    int
	Offset   int
	Search   string
	Sort     string
	Dir      string
	Category string
	Active   *bool
}
