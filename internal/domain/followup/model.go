package followup

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
)

// FollowUp is a scheduled check-in with an undecided patient. The patient
// fields are a snapshot taken when the follow-up was created.
type FollowUp struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	PatientName    string    `json:"patient_name"`
	PhoneNumber    string    `json:"phone_number"`
	Doctor         string    `json:"doctor"`
	PatientStatus  string    `json:"patient_status"`
	FollowUpDate   string    `json:"followup_date"`
	FollowUpStatus string    `json:"followup_status"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Open reports whether the follow-up still awaits an outcome.
func (f *FollowUp) Open() bool {
	return f.FollowUpStatus == clinic.FollowUpPending || f.FollowUpStatus == clinic.FollowUpOverdue
}

// PromoteIfDue moves a pending follow-up dated before today to overdue and
// reports whether it changed. Dates compare as YYYY-MM-DD strings.
func (f *FollowUp) PromoteIfDue(today string) bool {
	if f.FollowUpStatus == clinic.FollowUpPending && f.FollowUpDate < today {
		f.FollowUpStatus = clinic.FollowUpOverdue
		return true
	}
	return false
}

// Snapshot is the patient data copied onto a new follow-up.
type Snapshot struct {
	PatientID   uuid.UUID
	PatientName string
	PhoneNumber string
	Doctor      string
	Status      clinic.Status
	VisitDate   string
}

// Filter selects follow-ups. Zero values match everything.
type Filter struct {
	PatientID uuid.UUID
	Statuses  []string
	Doctor    string
	From      string // followup_date >= From
	To        string // followup_date <= To
	Before    string // followup_date < Before
	Limit     int
	Offset    int
}

var transitions = map[string]map[string]bool{
	clinic.FollowUpPending: {
		clinic.FollowUpPending:   true,
		clinic.FollowUpOverdue:   true,
		clinic.FollowUpCompleted: true,
	},
	clinic.FollowUpOverdue: {
		clinic.FollowUpOverdue:   true,
		clinic.FollowUpCompleted: true,
	},
	clinic.FollowUpCompleted: {
		clinic.FollowUpCompleted: true,
	},
}

// CanTransition reports whether a follow-up may move from one status to another.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}
