package waitlist

import (
	"context"

	domain "campdesk/internal/domain/waitlist"
)

// Store persists waiting-list Entry state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	// NextWaiting returns the waiting entry with the lowest position for the
	// session, or gateway.ErrNotFound when nobody is waiting.
	NextWaiting(ctx context.Context, sessionID string) (domain.Entry, error)
	NextPosition(ctx context.Context, sessionID string) (int, error)
	Save(ctx context.Context, value domain.Entry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Entry, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List/Count operations.
type ListFilter struct {
	Limit     int
	Offset    int
	Search    string
	Sort      string
	Dir       string
	SessionID string
	Status    string
}
