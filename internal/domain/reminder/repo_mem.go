package reminder

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/pkg/pagination"
)

type draftRepoMem struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*Draft
}

// NewRepoMem returns a process-local Repository.
func NewRepoMem() Repository {
	return &draftRepoMem{store: make(map[uuid.UUID]*Draft)}
}

func copyDraft(d *Draft) *Draft {
	cp := *d
	if d.PatientID != nil {
		id := *d.PatientID
		cp.PatientID = &id
	}
	return &cp
}

func (r *draftRepoMem) Create(_ context.Context, d *Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = uuid.New()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	r.store[d.ID] = copyDraft(d)
	return nil
}

func (r *draftRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.store[id]
	if !ok {
		return nil, apperr.NotFound(msgNotFound)
	}
	return copyDraft(d), nil
}

func (r *draftRepoMem) List(_ context.Context, f Filter) ([]*Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Draft
	for _, d := range r.store {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.MessageType != "" && d.MessageType != f.MessageType {
			continue
		}
		if f.ScheduledDate != "" && d.ScheduledDate != f.ScheduledDate {
			continue
		}
		items = append(items, copyDraft(d))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ScheduledDate != items[j].ScheduledDate {
			return items[i].ScheduledDate < items[j].ScheduledDate
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if f.Limit > 0 {
		start, end := pagination.Params{Limit: f.Limit, Offset: f.Offset}.Window(len(items))
		items = items[start:end]
	}
	return items, nil
}

func (r *draftRepoMem) Approve(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	d.Approved = true
	d.Status = clinic.DraftSent
	return nil
}

func (r *draftRepoMem) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	d.Status = status
	return nil
}

func (r *draftRepoMem) DeleteForPatient(_ context.Context, patientID uuid.UUID, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, d := range r.store {
		if d.RecipientName == name || (d.PatientID != nil && *d.PatientID == patientID) {
			delete(r.store, id)
			n++
		}
	}
	return n, nil
}
