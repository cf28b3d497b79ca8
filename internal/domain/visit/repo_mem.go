package visit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/pkg/pagination"
)

type visitRepoMem struct {
	mu    sync.RWMutex
	store map[uuid.UUID]*Visit
	seq   map[uuid.UUID]int64 // insertion order, breaks created_at ties
	next  int64
}

// NewRepoMem returns a process-local Repository.
func NewRepoMem() Repository {
	return &visitRepoMem{store: make(map[uuid.UUID]*Visit), seq: make(map[uuid.UUID]int64)}
}

func (r *visitRepoMem) Create(_ context.Context, v *Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = uuid.New()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	cp := *v
	r.store[v.ID] = &cp
	r.next++
	r.seq[v.ID] = r.next
	return nil
}

func (r *visitRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.store[id]
	if !ok {
		return nil, apperr.NotFound(msgNotFound)
	}
	return readCopy(v), nil
}

// readCopy returns a copy of a stored visit with its effective status filled
// in. The stored record keeps whatever status it was written with.
func readCopy(v *Visit) *Visit {
	cp := *v
	cp.Status = cp.EffectiveStatus()
	return &cp
}

func (r *visitRepoMem) Update(_ context.Context, v *Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.store[v.ID]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	cp := *v
	cp.CreatedAt = cur.CreatedAt
	r.store[v.ID] = &cp
	return nil
}

func (r *visitRepoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return apperr.NotFound(msgNotFound)
	}
	delete(r.store, id)
	delete(r.seq, id)
	return nil
}

func (f Filter) matches(v *Visit) bool {
	switch {
	case f.Date != "" && v.VisitDate != f.Date,
		f.From != "" && v.VisitDate < f.From,
		f.To != "" && v.VisitDate > f.To,
		f.Before != "" && v.VisitDate >= f.Before,
		f.Doctor != "" && v.Doctor != f.Doctor,
		f.FamilyGroup != "" && v.FamilyGroup != f.FamilyGroup,
		f.ProfessionGroup != "" && v.ProfessionGroup != f.ProfessionGroup,
		f.Status != "" && v.EffectiveStatus() != f.Status:
		return false
	}
	if len(f.VisitTypes) == 0 {
		return true
	}
	for _, vt := range f.VisitTypes {
		if v.VisitType == vt {
			return true
		}
	}
	return false
}

func (r *visitRepoMem) List(_ context.Context, f Filter) ([]*Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Visit
	for _, v := range r.store {
		if f.matches(v) {
			items = append(items, readCopy(v))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !f.ByCreation && a.VisitDate != b.VisitDate {
			return a.VisitDate > b.VisitDate
		}
		earlier := a.CreatedAt.Before(b.CreatedAt)
		if a.CreatedAt.Equal(b.CreatedAt) {
			earlier = r.seq[a.ID] < r.seq[b.ID]
		}
		if f.ByCreation {
			return earlier
		}
		return !earlier
	})
	if f.Limit > 0 {
		start, end := pagination.Params{Limit: f.Limit, Offset: f.Offset}.Window(len(items))
		items = items[start:end]
	}
	return items, nil
}

func (r *visitRepoMem) SetStatus(_ context.Context, id uuid.UUID, status clinic.Status, accepted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.store[id]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	v.Status = status
	v.Accepted = accepted
	return nil
}

func (r *visitRepoMem) MarkRevisit(_ context.Context, id uuid.UUID, revisitDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.store[id]
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	v.IsRevisit = true
	v.RevisitDate = revisitDate
	return nil
}

func (r *visitRepoMem) Distinct(_ context.Context, field GroupField) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	for _, v := range r.store {
		var val string
		switch field {
		case GroupFamily:
			val = v.FamilyGroup
		case GroupProfession:
			val = v.ProfessionGroup
		default:
			return nil, fmt.Errorf("unknown group field %q", field)
		}
		if val != "" {
			seen[val] = true
		}
	}
	out := make([]string, 0, len(seen))
	for val := range seen {
		out = append(out, val)
	}
	sort.Strings(out)
	return out, nil
}
