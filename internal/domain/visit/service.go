package visit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/followup"
	"github.com/clinic/clinic/internal/domain/reminder"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/civildate"
)

// Roster lists doctors. Per-doctor breakdowns only key active doctors.
type Roster interface {
	List(ctx context.Context, activeOnly bool) ([]*doctor.Doctor, error)
}

// FollowUpTracker is the part of the follow-up service the ledger drives.
type FollowUpTracker interface {
	ScheduleInitial(ctx context.Context, snap followup.Snapshot) (*followup.FollowUp, error)
	HasFollowUp(ctx context.Context, patientID uuid.UUID) (bool, error)
	DeleteForPatient(ctx context.Context, patientID uuid.UUID) error
	CountScheduledFrom(ctx context.Context, doctor, date string) (int, error)
}

// ReminderDrafter is the part of the reminder service the ledger drives.
type ReminderDrafter interface {
	DraftFollowUpReminder(ctx context.Context, in reminder.PatientReminder) (*reminder.Draft, error)
	DraftManualReminder(ctx context.Context, in reminder.PatientReminder) (*reminder.Draft, error)
	DeleteForPatient(ctx context.Context, patientID uuid.UUID, name string) error
}

type Service struct {
	visits    Repository
	tx        db.Transactor
	roster    Roster
	followups FollowUpTracker
	reminders ReminderDrafter
}

func NewService(visits Repository, tx db.Transactor, roster Roster, followups FollowUpTracker, reminders ReminderDrafter) *Service {
	if tx == nil {
		tx = db.NoopTransactor{}
	}
	return &Service{
		visits:    visits,
		tx:        tx,
		roster:    roster,
		followups: followups,
		reminders: reminders,
	}
}

func snapshotOf(v *Visit) followup.Snapshot {
	return followup.Snapshot{
		PatientID:   v.ID,
		PatientName: v.PatientName,
		PhoneNumber: v.PhoneNumber,
		Doctor:      v.Doctor,
		Status:      v.Status,
		VisitDate:   v.VisitDate,
	}
}

// CreateVisit records a visit. An undecided first visit gets a follow-up a
// week later and, when a phone number is known, a reminder draft for that day.
func (s *Service) CreateVisit(ctx context.Context, in Input) (*Visit, error) {
	v, err := in.toVisit()
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.visits.Create(ctx, v); err != nil {
			return fmt.Errorf("create visit: %w", err)
		}
		if !v.NeedsFollowUp() {
			return nil
		}
		f, err := s.followups.ScheduleInitial(ctx, snapshotOf(v))
		if err != nil {
			return err
		}
		if v.PhoneNumber == "" {
			return nil
		}
		_, err = s.reminders.DraftFollowUpReminder(ctx, reminder.PatientReminder{
			PatientID:     v.ID,
			PatientName:   v.PatientName,
			Phone:         v.PhoneNumber,
			ScheduledDate: f.FollowUpDate,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("patient_id", v.ID.String()).
		Str("status", string(v.Status)).
		Str("visit_date", v.VisitDate).
		Msg("visit recorded")
	return v, nil
}

// UpdateVisit replaces a visit. Moving to undecided schedules a follow-up if
// the patient has none (without a new reminder); leaving undecided removes
// the patient's follow-ups.
func (s *Service) UpdateVisit(ctx context.Context, id uuid.UUID, in Input) (*Visit, error) {
	v, err := in.toVisit()
	if err != nil {
		return nil, err
	}
	v.ID = id

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		prev, err := s.visits.GetByID(ctx, id)
		if err != nil {
			return err
		}
		v.CreatedAt = prev.CreatedAt
		if err := s.visits.Update(ctx, v); err != nil {
			return fmt.Errorf("update visit: %w", err)
		}

		if v.NeedsFollowUp() {
			has, err := s.followups.HasFollowUp(ctx, id)
			if err != nil {
				return err
			}
			if !has {
				if _, err := s.followups.ScheduleInitial(ctx, snapshotOf(v)); err != nil {
					return err
				}
			}
		}
		if prev.Status == clinic.StatusUndecided && v.Status != clinic.StatusUndecided {
			if err := s.followups.DeleteForPatient(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteVisit removes a visit, its follow-ups and the reminder drafts
// addressed to the patient. Drafts are matched by id and by recipient name,
// so drafts for another patient with the same name are removed as well.
func (s *Service) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		v, err := s.visits.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.visits.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.followups.DeleteForPatient(ctx, id); err != nil {
			return err
		}
		return s.reminders.DeleteForPatient(ctx, id, v.PatientName)
	})
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.visits.GetByID(ctx, id)
}

// ListFilter is the query accepted by ListVisits.
type ListFilter struct {
	From            string
	To              string
	Doctor          string
	FamilyGroup     string
	ProfessionGroup string
	Limit           int
	Offset          int
}

func validDates(dates ...string) error {
	for _, d := range dates {
		if d != "" && !civildate.Valid(d) {
			return apperr.Validation("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	return nil
}

// ListVisits returns visits newest first.
func (s *Service) ListVisits(ctx context.Context, lf ListFilter) ([]*Visit, error) {
	if err := validDates(lf.From, lf.To); err != nil {
		return nil, err
	}
	return s.visits.List(ctx, Filter{
		From:            lf.From,
		To:              lf.To,
		Doctor:          lf.Doctor,
		FamilyGroup:     lf.FamilyGroup,
		ProfessionGroup: lf.ProfessionGroup,
		Limit:           lf.Limit,
		Offset:          lf.Offset,
	})
}

// ListDaily returns the visits of one date in entry order.
func (s *Service) ListDaily(ctx context.Context, date string) ([]*Visit, error) {
	if !civildate.Valid(date) {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	return s.visits.List(ctx, Filter{Date: date, ByCreation: true})
}

// Range returns every visit with from <= visit_date < before.
func (s *Service) Range(ctx context.Context, from, before string) ([]*Visit, error) {
	return s.visits.List(ctx, Filter{From: from, Before: before})
}

// Period limits a status report either to a month or to an inclusive date
// range. The month wins when both year and month are set.
type Period struct {
	Year  int
	Month int
	From  string
	To    string
}

func (p Period) filter() (Filter, error) {
	if p.Year > 0 && p.Month > 0 {
		start, next, err := civildate.MonthRange(p.Year, p.Month)
		if err != nil {
			return Filter{}, apperr.Validation("%s", err.Error())
		}
		return Filter{From: start, Before: next}, nil
	}
	if err := validDates(p.From, p.To); err != nil {
		return Filter{}, err
	}
	return Filter{From: p.From, To: p.To}, nil
}

type StatusStats struct {
	Implant     int            `json:"implant"`
	Checkup     int            `json:"checkup"`
	Examination int            `json:"examination"`
	DoctorStats map[string]int `json:"doctor_stats"`
}

// StatusReport lists the visits with one status and their breakdown.
type StatusReport struct {
	Total    int         `json:"total"`
	Patients []*Visit    `json:"patients"`
	Stats    StatusStats `json:"stats"`
}

// ListByStatus reports the core-type visits with the given status. Total is
// the sum of the three type counts. DoctorStats has a key for every active
// doctor and no others.
func (s *Service) ListByStatus(ctx context.Context, status clinic.Status, p Period) (*StatusReport, error) {
	f, err := p.filter()
	if err != nil {
		return nil, err
	}
	f.Status = status
	f.VisitTypes = clinic.CoreVisitTypes

	visits, err := s.visits.List(ctx, f)
	if err != nil {
		return nil, err
	}
	doctors, err := s.roster.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	rep := &StatusReport{Patients: visits, Stats: StatusStats{DoctorStats: make(map[string]int, len(doctors))}}
	if rep.Patients == nil {
		rep.Patients = []*Visit{}
	}
	for _, d := range doctors {
		rep.Stats.DoctorStats[d.Name] = 0
	}
	for _, v := range visits {
		switch v.VisitType {
		case clinic.VisitImplant:
			rep.Stats.Implant++
		case clinic.VisitCheckup:
			rep.Stats.Checkup++
		case clinic.VisitExamination:
			rep.Stats.Examination++
		}
		if _, ok := rep.Stats.DoctorStats[v.Doctor]; ok {
			rep.Stats.DoctorStats[v.Doctor]++
		}
	}
	rep.Total = rep.Stats.Implant + rep.Stats.Checkup + rep.Stats.Examination
	return rep, nil
}

// MarkRevisit flags the visit as a repeat engagement.
func (s *Service) MarkRevisit(ctx context.Context, id uuid.UUID, revisitDate string) error {
	if !civildate.Valid(revisitDate) {
		return apperr.Validation("revisit_date must be YYYY-MM-DD")
	}
	return s.visits.MarkRevisit(ctx, id, revisitDate)
}

// SendReminder drafts a manual reminder for the patient, scheduled today.
func (s *Service) SendReminder(ctx context.Context, id uuid.UUID) (*reminder.Draft, error) {
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.PhoneNumber == "" {
		return nil, apperr.Validation("patient has no phone number")
	}
	return s.reminders.DraftManualReminder(ctx, reminder.PatientReminder{
		PatientID:   v.ID,
		PatientName: v.PatientName,
		Phone:       v.PhoneNumber,
	})
}

func (s *Service) FamilyGroups(ctx context.Context) ([]string, error) {
	return s.visits.Distinct(ctx, GroupFamily)
}

func (s *Service) ProfessionGroups(ctx context.Context) ([]string, error) {
	return s.visits.Distinct(ctx, GroupProfession)
}

// PatientSnapshot implements followup.PatientDirectory.
func (s *Service) PatientSnapshot(ctx context.Context, id uuid.UUID) (followup.Snapshot, error) {
	v, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return followup.Snapshot{}, err
	}
	return snapshotOf(v), nil
}

// SyncPatientStatus implements followup.PatientDirectory. It writes the status
// and its derived flag only; follow-up cascades are not triggered.
func (s *Service) SyncPatientStatus(ctx context.Context, id uuid.UUID, status clinic.Status) error {
	v := Visit{Status: status}
	v.Derive()
	return s.visits.SetStatus(ctx, id, v.Status, v.Accepted)
}

// DoctorDays implements reminder.SummarySource. Every visit of the day is
// counted; only accepted visits land in the accepted list.
func (s *Service) DoctorDays(ctx context.Context, date string) ([]reminder.DoctorDay, error) {
	doctors, err := s.roster.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	visits, err := s.visits.List(ctx, Filter{Date: date, ByCreation: true})
	if err != nil {
		return nil, err
	}
	byDoctor := make(map[string][]*Visit)
	for _, v := range visits {
		byDoctor[v.Doctor] = append(byDoctor[v.Doctor], v)
	}

	var days []reminder.DoctorDay
	for _, d := range doctors {
		vs := byDoctor[d.Name]
		if len(vs) == 0 {
			continue
		}
		day := reminder.DoctorDay{Doctor: d.Name, Phone: d.PhoneNumber, Total: len(vs)}
		for _, v := range vs {
			switch v.VisitType {
			case clinic.VisitImplant:
				day.Implant++
			case clinic.VisitCheckup:
				day.Checkup++
			case clinic.VisitExamination:
				day.Examination++
			}
			if v.IsRevisit {
				day.Revisit++
			}
			line := v.PatientName + " - " + v.VisitType.Label()
			if v.Accepted {
				day.Accepted = append(day.Accepted, line)
			} else {
				day.NotAccepted = append(day.NotAccepted, line)
			}
		}
		if day.NewFollowUps, err = s.followups.CountScheduledFrom(ctx, d.Name, date); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}
