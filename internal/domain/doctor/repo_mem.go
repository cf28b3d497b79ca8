package doctor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type doctorRepoMem struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*Doctor
}

// NewRepoMem returns a process-local Repository.
func NewRepoMem() Repository {
	return &doctorRepoMem{store: make(map[uuid.UUID]*Doctor)}
}

func (r *doctorRepoMem) nameTakenLocked(name string, except uuid.UUID) bool {
	for _, d := range r.store {
		if d.Name == name && d.ID != except {
			return true
		}
	}
	return false
}

func (r *doctorRepoMem) Create(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTakenLocked(d.Name, uuid.Nil) {
		return apperr.Conflict(msgExists)
	}
	d.ID = uuid.New()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	cp := *d
	r.store[d.ID] = &cp
	return nil
}

func (r *doctorRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.store[id]
	if !ok {
		return nil, apperr.NotFound(msgNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r *doctorRepoMem) GetByName(_ context.Context, name string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.store {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperr.NotFound(msgNotFound)
}

func (r *doctorRepoMem) Update(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.store[d.ID]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	if r.nameTakenLocked(d.Name, d.ID) {
		return apperr.Conflict(msgExists)
	}
	cur.Name = d.Name
	cur.PhoneNumber = d.PhoneNumber
	return nil
}

func (r *doctorRepoMem) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.store[id]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	d.Active = active
	return nil
}

func (r *doctorRepoMem) List(_ context.Context, activeOnly bool) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Doctor
	for _, d := range r.store {
		if activeOnly && !d.Active {
			continue
		}
		cp := *d
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *doctorRepoMem) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store), nil
}
