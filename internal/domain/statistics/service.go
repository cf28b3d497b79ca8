package statistics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/visit"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/pkg/civildate"
)

// LowWeekRatio is the share of the weekly mean below which the current week
// raises a warning.
const LowWeekRatio = 0.7

// VisitSource reads the visit ledger.
type VisitSource interface {
	Range(ctx context.Context, from, before string) ([]*visit.Visit, error)
	ListDaily(ctx context.Context, date string) ([]*visit.Visit, error)
}

type Roster interface {
	List(ctx context.Context, activeOnly bool) ([]*doctor.Doctor, error)
}

type Service struct {
	visits VisitSource
	roster Roster
	now    func() time.Time
}

func NewService(visits VisitSource, roster Roster) *Service {
	return &Service{visits: visits, roster: roster, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) monthVisits(ctx context.Context, year, month int) ([]*visit.Visit, error) {
	start, next, err := civildate.MonthRange(year, month)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	return s.visits.Range(ctx, start, next)
}

type tally struct{ total, accepted int }

// MonthlyStatistics rolls up the month's implant, checkup and examination
// visits. Doctor rows cover the active roster; family and profession rows
// cover the non-empty values seen in the data.
func (s *Service) MonthlyStatistics(ctx context.Context, year, month int) (*MonthlyStats, error) {
	all, err := s.monthVisits(ctx, year, month)
	if err != nil {
		return nil, err
	}
	doctors, err := s.roster.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	st := &MonthlyStats{Month: month, Year: year}
	byDoctor := make(map[string]*tally)
	families := make(map[string]*tally)
	professions := make(map[string]*tally)
	bump := func(m map[string]*tally, key string, accepted bool) {
		t, ok := m[key]
		if !ok {
			t = &tally{}
			m[key] = t
		}
		t.total++
		if accepted {
			t.accepted++
		}
	}

	for _, v := range all {
		if !v.VisitType.IsCore() {
			continue
		}
		switch v.VisitType {
		case clinic.VisitImplant:
			st.ImplantCount++
		case clinic.VisitCheckup:
			st.CheckupCount++
		case clinic.VisitExamination:
			st.ExaminationCount++
		}
		if v.IsRevisit {
			st.RevisitCount++
		}
		bump(byDoctor, v.Doctor, v.Accepted)
		if v.FamilyGroup != "" {
			bump(families, v.FamilyGroup, v.Accepted)
		}
		if v.ProfessionGroup != "" {
			bump(professions, v.ProfessionGroup, v.Accepted)
		}
	}
	st.TotalPatients = st.ImplantCount + st.CheckupCount + st.ExaminationCount

	st.DoctorStats = make([]DoctorStats, 0, len(doctors))
	for _, d := range doctors {
		t := byDoctor[d.Name]
		if t == nil {
			t = &tally{}
		}
		st.DoctorStats = append(st.DoctorStats, DoctorStats{
			Doctor:            d.Name,
			TotalExaminations: t.total,
			AcceptedCount:     t.accepted,
			AcceptanceRate:    AcceptanceRate(t.accepted, t.total),
		})
	}

	st.FamilyStats = make([]FamilyStats, 0, len(families))
	for _, name := range sortedKeys(families) {
		t := families[name]
		st.FamilyStats = append(st.FamilyStats, FamilyStats{
			FamilyGroup:    name,
			PatientCount:   t.total,
			AcceptedCount:  t.accepted,
			AcceptanceRate: AcceptanceRate(t.accepted, t.total),
		})
	}
	st.ProfessionStats = make([]ProfessionStats, 0, len(professions))
	for _, name := range sortedKeys(professions) {
		t := professions[name]
		st.ProfessionStats = append(st.ProfessionStats, ProfessionStats{
			ProfessionGroup: name,
			PatientCount:    t.total,
			AcceptedCount:   t.accepted,
			AcceptanceRate:  AcceptanceRate(t.accepted, t.total),
		})
	}
	st.TotalFamilies = len(families)
	return st, nil
}

func sortedKeys(m map[string]*tally) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WeeklyTrend buckets every visit of the month into week-of-month and, for
// the current month only, flags a current week below LowWeekRatio of the mean
// over the weeks that have visits.
func (s *Service) WeeklyTrend(ctx context.Context, year, month int) (*WeeklyTrend, error) {
	all, err := s.monthVisits(ctx, year, month)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for _, v := range all {
		day, err := civildate.Day(v.VisitDate)
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", v.ID, err)
		}
		counts[civildate.WeekOfMonth(day)]++
	}
	if len(counts) == 0 {
		return &WeeklyTrend{Message: "Bu ay için veri yok"}, nil
	}

	sum := 0
	for _, n := range counts {
		sum += n
	}
	avg := float64(sum) / float64(len(counts))

	now := s.now().UTC()
	if now.Year() == year && int(now.Month()) == month {
		week := civildate.WeekOfMonth(now.Day())
		current := counts[week]
		threshold := avg * LowWeekRatio
		if float64(current) < threshold {
			msg := fmt.Sprintf("⚠️ Uyarı: Bu hafta hasta sayısı ortalamanın altında! (Mevcut: %d, Ortalama: %s)",
				current, strconv.FormatFloat(round1(avg), 'f', 1, 64))
			return &WeeklyTrend{
				Warning:      true,
				CurrentWeek:  week,
				CurrentCount: &current,
				Average:      round1(avg),
				Threshold:    round1(threshold),
				Message:      msg,
			}, nil
		}
	}

	return &WeeklyTrend{
		WeeklyCounts: counts,
		Average:      round1(avg),
		Message:      "Hasta sayısı normal seviyede",
	}, nil
}
