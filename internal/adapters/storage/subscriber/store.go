package subscriber

import (
	"context"

	domain "campdesk/internal/domain/subscriber"
)

// Store persists Subscriber state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (domain.Subscriber, error)
	Save(ctx context.Context, value domain.Subscriber) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Subscriber, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit  int
	Offset int
	Search string
	Sort   string
	Dir    string
	Status string
}
