package visit

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/pkg/civildate"
)

// Visit is one patient encounter. Accepted mirrors Status and is kept for
// clients and rows that predate the status field.
type Visit struct {
	ID              uuid.UUID        `json:"id"`
	VisitDate       string           `json:"visit_date"`
	PatientName     string           `json:"patient_name"`
	PhoneNumber     string           `json:"phone_number"`
	Doctor          string           `json:"doctor"`
	VisitType       clinic.VisitType `json:"visit_type"`
	Status          clinic.Status    `json:"status"`
	Accepted        bool             `json:"accepted"`
	FamilyGroup     string           `json:"family_group"`
	ProfessionGroup string           `json:"profession_group"`
	IsRevisit       bool             `json:"is_revisit"`
	RevisitDate     string           `json:"revisit_date"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Derive recomputes the fields that follow from Status.
func (v *Visit) Derive() {
	v.Accepted = v.Status == clinic.StatusAccepted
}

// NeedsFollowUp reports whether the visit should have an open follow-up.
func (v *Visit) NeedsFollowUp() bool {
	return v.Status == clinic.StatusUndecided && !v.IsRevisit
}

// EffectiveStatus is Status, or the status implied by Accepted for records
// stored before the field existed.
func (v *Visit) EffectiveStatus() clinic.Status {
	if v.Status != "" {
		return v.Status
	}
	return legacyStatus(v.Accepted)
}

// legacyStatus fills in a status for rows stored before the field existed.
// The result is never written back.
func legacyStatus(accepted bool) clinic.Status {
	if accepted {
		return clinic.StatusAccepted
	}
	return clinic.StatusDeclined
}

// Input is the create/update payload for a visit.
type Input struct {
	VisitDate       string `json:"visit_date"`
	PatientName     string `json:"patient_name"`
	PhoneNumber     string `json:"phone_number"`
	Doctor          string `json:"doctor"`
	VisitType       string `json:"visit_type"`
	Status          string `json:"status"`
	FamilyGroup     string `json:"family_group"`
	ProfessionGroup string `json:"profession_group"`
	IsRevisit       bool   `json:"is_revisit"`
	RevisitDate     string `json:"revisit_date"`
	Notes           string `json:"notes"`
}

func (in Input) toVisit() (*Visit, error) {
	vt, ok := clinic.ParseVisitType(in.VisitType)
	if !ok {
		return nil, apperr.Validation("invalid visit type %q", in.VisitType)
	}
	st, ok := clinic.ParseStatus(in.Status)
	if !ok {
		return nil, apperr.Validation("invalid patient status %q", in.Status)
	}
	if !civildate.Valid(in.VisitDate) {
		return nil, apperr.Validation("visit_date must be YYYY-MM-DD")
	}
	if in.RevisitDate != "" && !civildate.Valid(in.RevisitDate) {
		return nil, apperr.Validation("revisit_date must be YYYY-MM-DD")
	}
	v := &Visit{
		VisitDate:       in.VisitDate,
		PatientName:     strings.TrimSpace(in.PatientName),
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
		Doctor:          strings.TrimSpace(in.Doctor),
		VisitType:       vt,
		Status:          st,
		FamilyGroup:     strings.TrimSpace(in.FamilyGroup),
		ProfessionGroup: strings.TrimSpace(in.ProfessionGroup),
		IsRevisit:       in.IsRevisit,
		RevisitDate:     in.RevisitDate,
		Notes:           in.Notes,
	}
	if v.PatientName == "" {
		return nil, apperr.Validation("patient_name is required")
	}
	if v.Doctor == "" {
		return nil, apperr.Validation("doctor is required")
	}
	v.Derive()
	return v, nil
}

// Filter selects visits. Zero values match everything.
type Filter struct {
	Date            string
	From            string // visit_date >= From
	To              string // visit_date <= To
	Before          string // visit_date < Before
	Doctor          string
	FamilyGroup     string
	ProfessionGroup string
	Status          clinic.Status
	VisitTypes      []clinic.VisitType
	ByCreation      bool // order by created_at ascending instead of visit_date descending
	Limit           int
	Offset          int
}

// GroupField names a grouping column with distinct values.
type GroupField string

const (
	GroupFamily     GroupField = "family_group"
	GroupProfession GroupField = "profession_group"
)
