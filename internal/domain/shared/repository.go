package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base interface for aggregate repositories.
// Save must reject a stale aggregate with ErrConcurrencyConflict.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}
