package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("doctor name is required")
	}
	return name, nil
}

// Create adds an active doctor. The name check is repeated by the store's
// unique constraint, which decides concurrent inserts.
func (s *Service) Create(ctx context.Context, name, phone string) (*Doctor, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByName(ctx, name); err == nil {
		return nil, apperr.Conflict(msgExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup doctor: %w", err)
	}

	d := &Doctor{Name: name, PhoneNumber: strings.TrimSpace(phone), Active: true}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update renames a doctor or changes the phone number. Existing visits keep
// the name they were recorded with.
func (s *Service) Update(ctx context.Context, id uuid.UUID, name, phone string) (*Doctor, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Name != name {
		if other, err := s.doctors.GetByName(ctx, name); err == nil && other.ID != id {
			return nil, apperr.Conflict(msgExists)
		}
	}
	d.Name = name
	d.PhoneNumber = strings.TrimSpace(phone)
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Deactivate soft-deletes a doctor.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.doctors.SetActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	return s.doctors.SetActive(ctx, id, true)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Doctor, error) {
	return s.doctors.List(ctx, activeOnly)
}

// ActiveNames returns the current roster names in name order.
func (s *Service) ActiveNames(ctx context.Context) ([]string, error) {
	ds, err := s.doctors.List(ctx, true)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names, nil
}

// SetPhone records the number daily summaries are addressed to.
func (s *Service) SetPhone(ctx context.Context, info Info) error {
	name, err := cleanName(info.DoctorName)
	if err != nil {
		return err
	}
	d, err := s.doctors.GetByName(ctx, name)
	if err != nil {
		return err
	}
	d.PhoneNumber = strings.TrimSpace(info.PhoneNumber)
	return s.doctors.Update(ctx, d)
}

// Infos lists the doctors that have a phone number on file.
func (s *Service) Infos(ctx context.Context) ([]Info, error) {
	ds, err := s.doctors.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(ds))
	for _, d := range ds {
		if d.PhoneNumber != "" {
			out = append(out, Info{DoctorName: d.Name, PhoneNumber: d.PhoneNumber})
		}
	}
	return out, nil
}

// SeedRoster inserts names only when the roster is empty, so running it on
// every deploy is harmless. It returns the number of doctors inserted.
func (s *Service) SeedRoster(ctx context.Context, names []string) (int, error) {
	n, err := s.doctors.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count doctors: %w", err)
	}
	if n > 0 {
		zerolog.Ctx(ctx).Info().Int("existing", n).Msg("doctor roster already present, seed skipped")
		return 0, nil
	}
	inserted := 0
	for _, name := range names {
		if err := s.doctors.Create(ctx, &Doctor{Name: name, Active: true}); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				continue
			}
			return inserted, fmt.Errorf("seed doctor %q: %w", name, err)
		}
		inserted++
	}
	return inserted, nil
}
