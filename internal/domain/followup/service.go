package followup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/websocket"
	"github.com/clinic/clinic/pkg/civildate"
)

// DelayDays is the gap between an undecided visit and its follow-up.
const DelayDays = 7

const (
	EventOverdue = "followup.overdue"
	EventUpdated = "followup.updated"
)

// PatientDirectory gives the tracker read access to patient visits and the
// one write it is allowed: syncing a patient's status.
type PatientDirectory interface {
	PatientSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error)
	SyncPatientStatus(ctx context.Context, id uuid.UUID, status clinic.Status) error
}

type Service struct {
	followups Repository
	tx        db.Transactor
	events    websocket.Publisher
	patients  PatientDirectory
	now       func() time.Time
}

func NewService(followups Repository, tx db.Transactor, events websocket.Publisher) *Service {
	if tx == nil {
		tx = db.NoopTransactor{}
	}
	if events == nil {
		events = websocket.NopPublisher{}
	}
	return &Service{
		followups: followups,
		tx:        tx,
		events:    events,
		now:       time.Now,
	}
}

// SetPatients wires the visit ledger. It is set after construction because
// the ledger itself depends on this service.
func (s *Service) SetPatients(p PatientDirectory) {
	s.patients = p
}

// SetClock overrides the clock used to decide "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() string {
	return civildate.Today(s.now())
}

// ScheduleInitial creates the pending follow-up for a newly undecided visit,
// dated DelayDays after the visit.
func (s *Service) ScheduleInitial(ctx context.Context, snap Snapshot) (*FollowUp, error) {
	date, err := civildate.AddDays(snap.VisitDate, DelayDays)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	f := &FollowUp{
		PatientID:      snap.PatientID,
		PatientName:    snap.PatientName,
		PhoneNumber:    snap.PhoneNumber,
		Doctor:         snap.Doctor,
		PatientStatus:  string(snap.Status),
		FollowUpDate:   date,
		FollowUpStatus: clinic.FollowUpPending,
	}
	if err := s.followups.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("schedule follow-up: %w", err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("followup_id", f.ID.String()).
		Str("patient_id", f.PatientID.String()).
		Str("followup_date", f.FollowUpDate).
		Msg("follow-up scheduled")
	return f, nil
}

// CreateInput is a manually scheduled follow-up.
type CreateInput struct {
	PatientID    uuid.UUID `json:"patient_id"`
	FollowUpDate string    `json:"followup_date"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
}

// Create schedules a follow-up by hand for an existing patient.
func (s *Service) Create(ctx context.Context, in CreateInput) (*FollowUp, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if !civildate.Valid(in.FollowUpDate) {
		return nil, apperr.Validation("followup_date must be YYYY-MM-DD")
	}
	status := clinic.FollowUpPending
	if in.Status != "" {
		st, ok := clinic.ParseFollowUpStatus(in.Status)
		if !ok {
			return nil, apperr.Validation("invalid follow-up status %q", in.Status)
		}
		status = st
	}
	if s.patients == nil {
		return nil, errors.New("follow-up service has no patient directory")
	}

	snap, err := s.patients.PatientSnapshot(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	f := &FollowUp{
		PatientID:      snap.PatientID,
		PatientName:    snap.PatientName,
		PhoneNumber:    snap.PhoneNumber,
		Doctor:         snap.Doctor,
		PatientStatus:  string(snap.Status),
		FollowUpDate:   in.FollowUpDate,
		FollowUpStatus: status,
		Reason:         strings.TrimSpace(in.Reason),
	}
	if f.Open() {
		open, err := s.followups.List(ctx, Filter{
			PatientID: in.PatientID,
			Statuses:  []string{clinic.FollowUpPending, clinic.FollowUpOverdue},
		})
		if err != nil {
			return nil, err
		}
		if len(open) > 0 {
			return nil, apperr.Conflict(msgOpen)
		}
	}
	if err := s.followups.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFilter is the query accepted by List.
type ListFilter struct {
	Status string
	Doctor string
	From   string
	To     string
	Limit  int
	Offset int
}

func (s *Service) List(ctx context.Context, lf ListFilter) ([]*FollowUp, error) {
	f := Filter{Doctor: lf.Doctor, From: lf.From, To: lf.To, Limit: lf.Limit, Offset: lf.Offset}
	if lf.Status != "" {
		st, ok := clinic.ParseFollowUpStatus(lf.Status)
		if !ok {
			return nil, apperr.Validation("invalid follow-up status %q", lf.Status)
		}
		f.Statuses = []string{st}
	}
	for _, d := range []string{lf.From, lf.To} {
		if d != "" && !civildate.Valid(d) {
			return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	return s.followups.List(ctx, f)
}

// ListOverdue returns every open follow-up dated before today. Pending ones
// are promoted to overdue and the promotion is stored before returning, so a
// repeated call sees the same set.
func (s *Service) ListOverdue(ctx context.Context) ([]*FollowUp, error) {
	today := s.today()
	items, err := s.followups.List(ctx, Filter{
		Statuses: []string{clinic.FollowUpPending, clinic.FollowUpOverdue},
		Before:   today,
	})
	if err != nil {
		return nil, fmt.Errorf("list overdue follow-ups: %w", err)
	}

	promoted := 0
	for _, f := range items {
		if !f.PromoteIfDue(today) {
			continue
		}
		if err := s.followups.UpdateStatus(ctx, f.ID, f.FollowUpStatus, ""); err != nil {
			return nil, fmt.Errorf("promote follow-up %s: %w", f.ID, err)
		}
		promoted++
	}

	if promoted > 0 {
		zerolog.Ctx(ctx).Info().Int("promoted", promoted).Str("today", today).Msg("follow-ups marked overdue")
		ev := websocket.NewEvent(websocket.TopicFollowUps, EventOverdue, "", map[string]int{
			"promoted": promoted,
			"total":    len(items),
		})
		if err := s.events.Publish(ctx, ev); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("publish overdue event")
		}
	}
	if items == nil {
		items = []*FollowUp{}
	}
	return items, nil
}

// UpdateStatus sets a follow-up's status. A non-empty patientStatus is also
// written to the follow-up and propagated to the patient visit.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, followUpStatus, patientStatus string) (*FollowUp, error) {
	to, ok := clinic.ParseFollowUpStatus(followUpStatus)
	if !ok {
		return nil, apperr.Validation("invalid follow-up status %q", followUpStatus)
	}
	var ps clinic.Status
	if patientStatus != "" {
		if ps, ok = clinic.ParseStatus(patientStatus); !ok {
			return nil, apperr.Validation("invalid patient status %q", patientStatus)
		}
	}

	var updated *FollowUp
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		f, err := s.followups.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(f.FollowUpStatus, to) {
			return apperr.Validation("follow-up cannot move from %s to %s", f.FollowUpStatus, to)
		}
		if err := s.followups.UpdateStatus(ctx, id, to, string(ps)); err != nil {
			return err
		}
		f.FollowUpStatus = to
		if ps != "" {
			f.PatientStatus = string(ps)
			if err := s.syncPatient(ctx, f.PatientID, ps); err != nil {
				return err
			}
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := websocket.NewEvent(websocket.TopicFollowUps, EventUpdated, updated.ID.String(), updated)
	if err := s.events.Publish(ctx, ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("publish follow-up event")
	}
	return updated, nil
}

func (s *Service) syncPatient(ctx context.Context, patientID uuid.UUID, status clinic.Status) error {
	if s.patients == nil {
		return nil
	}
	err := s.patients.SyncPatientStatus(ctx, patientID, status)
	if errors.Is(err, apperr.ErrNotFound) {
		zerolog.Ctx(ctx).Warn().Str("patient_id", patientID.String()).Msg("follow-up refers to a deleted patient, status not synced")
		return nil
	}
	return err
}

// HasFollowUp reports whether any follow-up, in any status, exists for the
// patient.
func (s *Service) HasFollowUp(ctx context.Context, patientID uuid.UUID) (bool, error) {
	items, err := s.followups.List(ctx, Filter{PatientID: patientID, Limit: 1})
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// DeleteForPatient removes every follow-up of the patient.
func (s *Service) DeleteForPatient(ctx context.Context, patientID uuid.UUID) error {
	n, err := s.followups.DeleteForPatient(ctx, patientID)
	if err != nil {
		return fmt.Errorf("delete follow-ups: %w", err)
	}
	if n > 0 {
		zerolog.Ctx(ctx).Debug().Int64("deleted", n).Str("patient_id", patientID.String()).Msg("follow-ups removed")
	}
	return nil
}

// CountScheduledFrom counts the doctor's follow-ups dated on or after date.
func (s *Service) CountScheduledFrom(ctx context.Context, doctor, date string) (int, error) {
	items, err := s.followups.List(ctx, Filter{Doctor: doctor, From: date})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
