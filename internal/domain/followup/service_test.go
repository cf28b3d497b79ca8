package followup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/websocket"
)

type fakePatients struct {
	snaps  map[uuid.UUID]Snapshot
	synced map[uuid.UUID]clinic.Status
}

func newFakePatients() *fakePatients {
	return &fakePatients{snaps: map[uuid.UUID]Snapshot{}, synced: map[uuid.UUID]clinic.Status{}}
}

func (p *fakePatients) add(name string) Snapshot {
	snap := Snapshot{
		PatientID:   uuid.New(),
		PatientName: name,
		PhoneNumber: "555",
		Doctor:      "DR TEST",
		Status:      clinic.StatusUndecided,
		VisitDate:   "2024-03-01",
	}
	p.snaps[snap.PatientID] = snap
	return snap
}

func (p *fakePatients) PatientSnapshot(_ context.Context, id uuid.UUID) (Snapshot, error) {
	snap, ok := p.snaps[id]
	if !ok {
		return Snapshot{}, apperr.NotFound("patient not found")
	}
	return snap, nil
}

func (p *fakePatients) SyncPatientStatus(_ context.Context, id uuid.UUID, status clinic.Status) error {
	if _, ok := p.snaps[id]; !ok {
		return apperr.NotFound("patient not found")
	}
	p.synced[id] = status
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev websocket.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func fixedClock(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t.Add(10 * time.Hour) }
}

func newTestService() (*Service, *fakePatients, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewService(NewRepoMem(), nil, pub)
	patients := newFakePatients()
	svc.SetPatients(patients)
	svc.SetClock(fixedClock("2024-03-20"))
	return svc, patients, pub
}

func TestFollowUp_PromoteIfDue(t *testing.T) {
	f := &FollowUp{FollowUpDate: "2024-03-08", FollowUpStatus: clinic.FollowUpPending}
	if f.PromoteIfDue("2024-03-08") {
		t.Error("follow-up dated today is not overdue")
	}
	if !f.PromoteIfDue("2024-03-09") {
		t.Fatal("expected promotion")
	}
	if f.FollowUpStatus != clinic.FollowUpOverdue {
		t.Errorf("expected overdue, got %s", f.FollowUpStatus)
	}
	if f.PromoteIfDue("2024-03-10") {
		t.Error("already overdue follow-up should not report a change")
	}

	done := &FollowUp{FollowUpDate: "2024-01-01", FollowUpStatus: clinic.FollowUpCompleted}
	if done.PromoteIfDue("2024-03-10") {
		t.Error("completed follow-up must not be promoted")
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(clinic.FollowUpPending, clinic.FollowUpCompleted) {
		t.Error("pending -> completed should be allowed")
	}
	if !CanTransition(clinic.FollowUpOverdue, clinic.FollowUpCompleted) {
		t.Error("overdue -> completed should be allowed")
	}
	if CanTransition(clinic.FollowUpCompleted, clinic.FollowUpPending) {
		t.Error("completed -> pending must be rejected")
	}
	if CanTransition(clinic.FollowUpOverdue, clinic.FollowUpPending) {
		t.Error("overdue -> pending must be rejected")
	}
}

func TestService_ScheduleInitial(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()
	snap := patients.add("Ayşe")

	f, err := svc.ScheduleInitial(ctx, snap)
	if err != nil {
		t.Fatal(err)
	}
	if f.FollowUpDate != "2024-03-08" {
		t.Errorf("expected 2024-03-08, got %s", f.FollowUpDate)
	}
	if f.FollowUpStatus != clinic.FollowUpPending {
		t.Errorf("expected pending, got %s", f.FollowUpStatus)
	}
	ok, err := svc.HasFollowUp(ctx, snap.PatientID)
	if err != nil || !ok {
		t.Errorf("expected follow-up for patient, got %v %v", ok, err)
	}
}

func TestService_ListOverdue_PromotesAndIsIdempotent(t *testing.T) {
	svc, patients, pub := newTestService()
	ctx := context.Background()

	due, _ := svc.ScheduleInitial(ctx, patients.add("A"))
	later := patients.add("B")
	later.VisitDate = "2024-03-20"
	svc.ScheduleInitial(ctx, later)

	first, err := svc.ListOverdue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 || first[0].ID != due.ID {
		t.Fatalf("expected only the due follow-up, got %+v", first)
	}
	if first[0].FollowUpStatus != clinic.FollowUpOverdue {
		t.Errorf("expected overdue, got %s", first[0].FollowUpStatus)
	}
	stored, _ := svc.followups.GetByID(ctx, due.ID)
	if stored.FollowUpStatus != clinic.FollowUpOverdue {
		t.Error("promotion was not persisted")
	}
	if len(pub.events) != 1 || pub.events[0].Type != EventOverdue {
		t.Errorf("expected one overdue event, got %+v", pub.events)
	}

	second, err := svc.ListOverdue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Errorf("second call returned a different set: %+v", second)
	}
	if len(pub.events) != 1 {
		t.Error("no event expected when nothing was promoted")
	}
}

func TestService_UpdateStatus_SyncsPatient(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()
	snap := patients.add("A")
	f, _ := svc.ScheduleInitial(ctx, snap)

	updated, err := svc.UpdateStatus(ctx, f.ID, "completed", "kabul etti")
	if err != nil {
		t.Fatal(err)
	}
	if updated.FollowUpStatus != clinic.FollowUpCompleted {
		t.Errorf("expected completed, got %s", updated.FollowUpStatus)
	}
	if updated.PatientStatus != string(clinic.StatusAccepted) {
		t.Errorf("expected patient status snapshot accepted, got %s", updated.PatientStatus)
	}
	if patients.synced[snap.PatientID] != clinic.StatusAccepted {
		t.Error("patient status was not synced")
	}

	_, err = svc.UpdateStatus(ctx, f.ID, "pending", "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("completed -> pending should fail validation, got %v", err)
	}
}

func TestService_UpdateStatus_WithoutPatientStatus(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()
	snap := patients.add("A")
	f, _ := svc.ScheduleInitial(ctx, snap)

	if _, err := svc.UpdateStatus(ctx, f.ID, "completed", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := patients.synced[snap.PatientID]; ok {
		t.Error("patient must not be touched without patient_status")
	}
}

func TestService_UpdateStatus_Errors(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), "completed", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	f, _ := svc.ScheduleInitial(ctx, patients.add("A"))
	_, err = svc.UpdateStatus(ctx, f.ID, "bogus", "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	_, err = svc.UpdateStatus(ctx, f.ID, "completed", "maybe")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for patient status, got %v", err)
	}
}

func TestService_Create_Manual(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()
	snap := patients.add("A")

	f, err := svc.Create(ctx, CreateInput{PatientID: snap.PatientID, FollowUpDate: "2024-04-01", Reason: "kontrol"})
	if err != nil {
		t.Fatal(err)
	}
	if f.PatientName != "A" || f.Doctor != "DR TEST" || f.FollowUpStatus != clinic.FollowUpPending {
		t.Errorf("unexpected follow-up: %+v", f)
	}

	_, err = svc.Create(ctx, CreateInput{PatientID: snap.PatientID, FollowUpDate: "2024-04-02"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second open follow-up should conflict, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{PatientID: uuid.New(), FollowUpDate: "2024-04-02"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown patient should be not found, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{PatientID: snap.PatientID, FollowUpDate: "01/04/2024"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad date should fail validation, got %v", err)
	}
}

func TestService_DeleteForPatient(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()
	a := patients.add("A")
	b := patients.add("B")
	svc.ScheduleInitial(ctx, a)
	svc.ScheduleInitial(ctx, b)

	if err := svc.DeleteForPatient(ctx, a.PatientID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := svc.HasFollowUp(ctx, a.PatientID); ok {
		t.Error("follow-ups of A should be gone")
	}
	if ok, _ := svc.HasFollowUp(ctx, b.PatientID); !ok {
		t.Error("follow-ups of B should remain")
	}
}

func TestService_CountScheduledFrom(t *testing.T) {
	svc, patients, _ := newTestService()
	ctx := context.Background()
	svc.ScheduleInitial(ctx, patients.add("A")) // 2024-03-08
	b := patients.add("B")
	b.VisitDate = "2024-03-10"
	svc.ScheduleInitial(ctx, b) // 2024-03-17

	n, err := svc.CountScheduledFrom(ctx, "DR TEST", "2024-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	n, _ = svc.CountScheduledFrom(ctx, "DR OTHER", "2024-03-01")
	if n != 0 {
		t.Errorf("expected 0 for other doctor, got %d", n)
	}
}
