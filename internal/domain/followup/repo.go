package followup

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f *FollowUp) error
	GetByID(ctx context.Context, id uuid.UUID) (*FollowUp, error)
	// List returns matches ordered by followup_date ascending.
	List(ctx context.Context, filter Filter) ([]*FollowUp, error)
	// UpdateStatus writes followup_status and, when patientStatus is not
	// empty, the patient_status snapshot.
	UpdateStatus(ctx context.Context, id uuid.UUID, followUpStatus, patientStatus string) error
	DeleteForPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
}
