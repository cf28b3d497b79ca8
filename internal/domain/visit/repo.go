package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
)

type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	// Update replaces every field except id and created_at.
	Update(ctx context.Context, v *Visit) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter) ([]*Visit, error)
	SetStatus(ctx context.Context, id uuid.UUID, status clinic.Status, accepted bool) error
	MarkRevisit(ctx context.Context, id uuid.UUID, revisitDate string) error
	// Distinct returns the sorted non-empty values of a grouping column.
	Distinct(ctx context.Context, field GroupField) ([]string, error)
}
