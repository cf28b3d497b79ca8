package reminder

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Draft) error
	GetByID(ctx context.Context, id uuid.UUID) (*Draft, error)
	// List returns drafts ordered by scheduled_date ascending.
	List(ctx context.Context, filter Filter) ([]*Draft, error)
	// Approve sets approved and status=sent in a single write.
	Approve(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// DeleteForPatient removes drafts addressed to the patient by id or by
	// recipient name.
	DeleteForPatient(ctx context.Context, patientID uuid.UUID, name string) (int64, error)
}
