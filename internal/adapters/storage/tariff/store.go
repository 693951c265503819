package tariff

import (
	"context"

	domain "campdesk/internal/domain/tariff"
)

// Store persists Tariff state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Tariff, error)
	Save(ctx context.Context, value domain.Tariff) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Tariff, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit    int
	Offset   int
	Search   string
	Sort     string
	Dir      string
	Kind     string
	SchoolID string
}
