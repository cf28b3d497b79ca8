// Package sandbox generates reproducible demo visits for development and UI
// walkthroughs. The same seed always yields the same visits.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/domain/visit"
	"github.com/clinic/clinic/pkg/civildate"
)

// SeedConfig controls the volume and shape of generated visits.
type SeedConfig struct {
	Visits int
	// Days is the width of the date window ending at EndDate.
	Days    int
	EndDate string
	Doctors []string
	Seed    int64
	// RevisitRatio is the share of visits flagged as revisits, 0..1.
	RevisitRatio float64
}

func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Visits:       200,
		Days:         90,
		Seed:         1,
		RevisitRatio: 0.1,
	}
}

var (
	firstNames = []string{
		"Ayşe", "Mehmet", "Fatma", "Ahmet", "Zeynep", "Mustafa", "Elif", "Ali",
		"Emine", "Hüseyin", "Hatice", "İbrahim", "Merve", "Murat", "Selin", "Can",
	}
	lastNames = []string{
		"Yılmaz", "Kaya", "Demir", "Şahin", "Çelik", "Yıldız", "Aydın", "Öztürk",
		"Arslan", "Doğan", "Kılıç", "Aslan",
	}
	professions = []string{
		"Öğretmen", "Mühendis", "Emekli", "Esnaf", "Memur", "Öğrenci", "Ev Hanımı", "Doktor",
	}
	visitTypes = []clinic.VisitType{clinic.VisitImplant, clinic.VisitCheckup, clinic.VisitExamination}
	// Weighted towards a decision so that follow-ups stay a minority.
	statuses = []clinic.Status{
		clinic.StatusAccepted, clinic.StatusAccepted, clinic.StatusAccepted,
		clinic.StatusDeclined, clinic.StatusDeclined,
		clinic.StatusUndecided,
	}
)

// DataGenerator produces deterministic visit payloads.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) randomPhone() string {
	return fmt.Sprintf("05%02d %03d %02d %02d",
		30+g.rng.Intn(30),
		g.rng.Intn(1000),
		g.rng.Intn(100),
		g.rng.Intn(100),
	)
}

// GenerateVisit builds one visit on date for one of doctors. About one in
// five patients has no phone number, and most carry a family group.
func (g *DataGenerator) GenerateVisit(date string, doctors []string) visit.Input {
	last := g.pick(lastNames)
	in := visit.Input{
		VisitDate:   date,
		PatientName: g.pick(firstNames) + " " + last,
		Doctor:      g.pick(doctors),
		VisitType:   string(visitTypes[g.rng.Intn(len(visitTypes))]),
		Status:      string(statuses[g.rng.Intn(len(statuses))]),
	}
	if g.rng.Intn(5) != 0 {
		in.PhoneNumber = g.randomPhone()
	}
	if g.rng.Intn(4) != 0 {
		in.FamilyGroup = last + " Ailesi"
	}
	if g.rng.Intn(3) != 0 {
		in.ProfessionGroup = g.pick(professions)
	}
	return in
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Visits    int            `json:"visits"`
	Revisits  int            `json:"revisits"`
	ByType    map[string]int `json:"by_type"`
	ByStatus  map[string]int `json:"by_status"`
	FirstDate string         `json:"first_date"`
	LastDate  string         `json:"last_date"`
	Duration  time.Duration  `json:"duration"`
}

// VisitCreator records a visit with all of its side effects.
type VisitCreator interface {
	CreateVisit(ctx context.Context, in visit.Input) (*visit.Visit, error)
}

// Seeder turns a SeedConfig into visits.
type Seeder struct {
	generator *DataGenerator
	config    SeedConfig
}

func NewSeeder(config SeedConfig) *Seeder {
	return &Seeder{
		generator: NewDataGenerator(config.Seed),
		config:    config,
	}
}

// Generate returns the configured number of visits, oldest first.
func (s *Seeder) Generate(now time.Time) ([]visit.Input, error) {
	cfg := s.config
	if cfg.Visits < 0 {
		return nil, fmt.Errorf("visit count must not be negative, got %d", cfg.Visits)
	}
	if len(cfg.Doctors) == 0 {
		return nil, errors.New("no doctors to assign visits to")
	}
	days := cfg.Days
	if days <= 0 {
		days = 1
	}
	end := cfg.EndDate
	if end == "" {
		end = civildate.Today(now)
	}
	start, err := civildate.AddDays(end, -(days - 1))
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}

	offsets := make([]int, cfg.Visits)
	for i := range offsets {
		offsets[i] = s.generator.rng.Intn(days)
	}
	sort.Ints(offsets)

	out := make([]visit.Input, 0, cfg.Visits)
	for _, off := range offsets {
		date, err := civildate.AddDays(start, off)
		if err != nil {
			return nil, err
		}
		in := s.generator.GenerateVisit(date, cfg.Doctors)
		if s.generator.rng.Float64() < cfg.RevisitRatio {
			in.IsRevisit = true
			if rd, err := civildate.AddDays(date, 14); err == nil {
				in.RevisitDate = rd
			}
		}
		out = append(out, in)
	}
	return out, nil
}

// Load generates visits and records each through dst, so follow-ups and
// reminder drafts are created exactly as for visits entered by staff.
func (s *Seeder) Load(ctx context.Context, dst VisitCreator, now time.Time) (*SeedResult, error) {
	start := time.Now()
	inputs, err := s.Generate(now)
	if err != nil {
		return nil, err
	}

	res := &SeedResult{ByType: map[string]int{}, ByStatus: map[string]int{}}
	for i, in := range inputs {
		v, err := dst.CreateVisit(ctx, in)
		if err != nil {
			return res, fmt.Errorf("visit %d of %d: %w", i+1, len(inputs), err)
		}
		res.Visits++
		res.ByType[string(v.VisitType)]++
		res.ByStatus[string(v.Status)]++
		if v.IsRevisit {
			res.Revisits++
		}
		if res.FirstDate == "" {
			res.FirstDate = v.VisitDate
		}
		res.LastDate = v.VisitDate
	}
	res.Duration = time.Since(start)

	zerolog.Ctx(ctx).Info().
		Int("visits", res.Visits).
		Int("revisits", res.Revisits).
		Str("from", res.FirstDate).
		Str("to", res.LastDate).
		Dur("duration", res.Duration).
		Msg("demo visits seeded")
	return res, nil
}
