package reminder

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
	"github.com/clinic/clinic/internal/platform/notification"
	"github.com/clinic/clinic/internal/platform/websocket"
	"github.com/clinic/clinic/pkg/civildate"
)

const (
	EventDrafted  = "reminder.drafted"
	EventApproved = "reminder.approved"
	EventUpdated  = "reminder.updated"
)

// SummarySource reports each active doctor's activity on a date. Doctors
// without visits that day are omitted.
type SummarySource interface {
	DoctorDays(ctx context.Context, date string) ([]DoctorDay, error)
}

type Service struct {
	drafts    Repository
	templates *notification.TemplateEngine
	events    websocket.Publisher
	summaries SummarySource
	now       func() time.Time
}

func NewService(drafts Repository, templates *notification.TemplateEngine, events websocket.Publisher) *Service {
	if templates == nil {
		templates = notification.NewTemplateEngine()
	}
	if events == nil {
		events = websocket.NopPublisher{}
	}
	return &Service{drafts: drafts, templates: templates, events: events, now: time.Now}
}

// SetSummarySource wires the visit ledger used for daily summaries.
func (s *Service) SetSummarySource(src SummarySource) {
	s.summaries = src
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RenderPatientReminder renders the follow-up reminder text for a patient.
// The manual wording is used when staff trigger the reminder by hand.
func RenderPatientReminder(engine *notification.TemplateEngine, patientName string, manual bool) (string, error) {
	id := notification.TemplateFollowUpReminder
	if manual {
		id = notification.TemplateManualReminder
	}
	return engine.Render(id, map[string]string{"patient_name": patientName})
}

// RenderDailySummary renders a doctor's daily summary for date.
func RenderDailySummary(engine *notification.TemplateEngine, date string, day DoctorDay) (string, error) {
	return engine.Render(notification.TemplateDailySummary, day.templateData(date))
}

// DraftFollowUpReminder drafts the automatic reminder sent with a new
// follow-up, scheduled on the follow-up date.
func (s *Service) DraftFollowUpReminder(ctx context.Context, in PatientReminder) (*Draft, error) {
	return s.draftPatientReminder(ctx, in, false)
}

// DraftManualReminder drafts a reminder requested by staff, scheduled today.
func (s *Service) DraftManualReminder(ctx context.Context, in PatientReminder) (*Draft, error) {
	in.ScheduledDate = civildate.Today(s.now())
	return s.draftPatientReminder(ctx, in, true)
}

func (s *Service) draftPatientReminder(ctx context.Context, in PatientReminder, manual bool) (*Draft, error) {
	if strings.TrimSpace(in.Phone) == "" {
		return nil, apperr.Validation("patient has no phone number")
	}
	if !civildate.Valid(in.ScheduledDate) {
		return nil, apperr.Validation("invalid scheduled date %q", in.ScheduledDate)
	}
	text, err := RenderPatientReminder(s.templates, in.PatientName, manual)
	if err != nil {
		return nil, err
	}
	d := &Draft{
		MessageType:    clinic.MessageFollowUpReminder,
		RecipientName:  in.PatientName,
		RecipientPhone: in.Phone,
		MessageText:    text,
		ScheduledDate:  in.ScheduledDate,
		Status:         clinic.DraftAwaitingApproval,
	}
	if in.PatientID != uuid.Nil {
		id := in.PatientID
		d.PatientID = &id
	}
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create reminder draft: %w", err)
	}
	s.publish(ctx, EventDrafted, d)
	return d, nil
}

// GenerateDailySummaries drafts one summary per active doctor who had visits
// on date. An empty date means today.
func (s *Service) GenerateDailySummaries(ctx context.Context, date string) ([]*Draft, error) {
	if date == "" {
		date = civildate.Today(s.now())
	}
	if !civildate.Valid(date) {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	if s.summaries == nil {
		return nil, errors.New("reminder service has no summary source")
	}

	days, err := s.summaries.DoctorDays(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("collect daily activity: %w", err)
	}
	drafts := make([]*Draft, 0, len(days))
	for _, day := range days {
		text, err := RenderDailySummary(s.templates, date, day)
		if err != nil {
			return nil, err
		}
		d := &Draft{
			MessageType:    clinic.MessageDailySummary,
			RecipientName:  day.Doctor,
			RecipientPhone: day.Phone,
			MessageText:    text,
			ScheduledDate:  date,
			Status:         clinic.DraftAwaitingApproval,
		}
		if err := s.drafts.Create(ctx, d); err != nil {
			return nil, fmt.Errorf("create summary for %s: %w", day.Doctor, err)
		}
		if d.RecipientPhone == "" {
			zerolog.Ctx(ctx).Warn().Str("doctor", day.Doctor).Msg("daily summary drafted without a phone number")
		}
		s.publish(ctx, EventDrafted, d)
		drafts = append(drafts, d)
	}
	zerolog.Ctx(ctx).Info().Str("date", date).Int("summaries", len(drafts)).Msg("daily summaries generated")
	return drafts, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Draft, error) {
	if f.Status != "" {
		st, ok := clinic.ParseDraftStatus(f.Status)
		if !ok {
			return nil, apperr.Validation("invalid message status %q", f.Status)
		}
		f.Status = st
	}
	if f.MessageType != "" && !clinic.ValidMessageType(f.MessageType) {
		return nil, apperr.Validation("invalid message type %q", f.MessageType)
	}
	if f.ScheduledDate != "" && !civildate.Valid(f.ScheduledDate) {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", f.ScheduledDate)
	}
	return s.drafts.List(ctx, f)
}

// Approve marks a draft approved and sent. There is no delivery step.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Draft, error) {
	if err := s.drafts.Approve(ctx, id); err != nil {
		return nil, err
	}
	d, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventApproved, d)
	return d, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Draft, error) {
	st, ok := clinic.ParseDraftStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid message status %q", status)
	}
	if err := s.drafts.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	d, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventUpdated, d)
	return d, nil
}

// DeleteForPatient removes drafts carrying the patient's id and every draft
// whose recipient name equals the patient's name, including drafts for other
// patients who share that name.
func (s *Service) DeleteForPatient(ctx context.Context, patientID uuid.UUID, name string) error {
	n, err := s.drafts.DeleteForPatient(ctx, patientID, name)
	if err != nil {
		return fmt.Errorf("delete reminder drafts: %w", err)
	}
	if n > 0 {
		zerolog.Ctx(ctx).Debug().Int64("deleted", n).Str("recipient", name).Msg("reminder drafts removed")
	}
	return nil
}

// publish announces d once the surrounding transaction, if any, commits.
func (s *Service) publish(ctx context.Context, eventType string, d *Draft) {
	ev := websocket.NewEvent(websocket.TopicReminders, eventType, d.ID.String(), d)
	db.AfterCommit(ctx, func() {
		if err := s.events.Publish(ctx, ev); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("event", eventType).Msg("publish reminder event")
		}
	})
}
