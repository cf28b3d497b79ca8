package doctor

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores doctors. Lookups of a missing doctor return an error
// matching apperr.ErrNotFound; a duplicate name matches apperr.ErrConflict.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByName(ctx context.Context, name string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// List returns doctors ordered by name.
	List(ctx context.Context, activeOnly bool) ([]*Doctor, error)
	Count(ctx context.Context) (int, error)
}
