package followup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/pkg/pagination"
)

type followUpRepoMem struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*FollowUp
}

// NewRepoMem returns a process-local Repository.
func NewRepoMem() Repository {
	return &followUpRepoMem{store: make(map[uuid.UUID]*FollowUp)}
}

func (r *followUpRepoMem) Create(_ context.Context, f *FollowUp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.Open() {
		for _, existing := range r.store {
			if existing.PatientID == f.PatientID && existing.Open() {
				return apperr.Conflict(msgOpen)
			}
		}
	}
	f.ID = uuid.New()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	cp := *f
	r.store[f.ID] = &cp
	return nil
}

func (r *followUpRepoMem) GetByID(_ context.Context, id uuid.UUID) (*FollowUp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.store[id]
	if !ok {
		return nil, apperr.NotFound(msgNotFound)
	}
	cp := *f
	return &cp, nil
}

func (f Filter) matches(item *FollowUp) bool {
	if f.PatientID != uuid.Nil && item.PatientID != f.PatientID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if item.FollowUpStatus == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Doctor != "" && item.Doctor != f.Doctor {
		return false
	}
	if f.From != "" && item.FollowUpDate < f.From {
		return false
	}
	if f.To != "" && item.FollowUpDate > f.To {
		return false
	}
	if f.Before != "" && item.FollowUpDate >= f.Before {
		return false
	}
	return true
}

func (r *followUpRepoMem) List(_ context.Context, f Filter) ([]*FollowUp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*FollowUp
	for _, item := range r.store {
		if f.matches(item) {
			cp := *item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].FollowUpDate != items[j].FollowUpDate {
			return items[i].FollowUpDate < items[j].FollowUpDate
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if f.Limit > 0 {
		start, end := pagination.Params{Limit: f.Limit, Offset: f.Offset}.Window(len(items))
		items = items[start:end]
	}
	return items, nil
}

func (r *followUpRepoMem) UpdateStatus(_ context.Context, id uuid.UUID, followUpStatus, patientStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.store[id]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	f.FollowUpStatus = followUpStatus
	if patientStatus != "" {
		f.PatientStatus = patientStatus
	}
	return nil
}

func (r *followUpRepoMem) DeleteForPatient(_ context.Context, patientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, f := range r.store {
		if f.PatientID == patientID {
			delete(r.store, id)
			n++
		}
	}
	return n, nil
}
