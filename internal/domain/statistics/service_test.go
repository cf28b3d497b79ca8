package statistics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/clinic"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/visit"
	"github.com/clinic/clinic/internal/platform/apperr"
)

type fakeVisits struct {
	visits []*visit.Visit
}

func (f *fakeVisits) Range(_ context.Context, from, before string) ([]*visit.Visit, error) {
	var out []*visit.Visit
	for _, v := range f.visits {
		if v.VisitDate >= from && v.VisitDate < before {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisits) ListDaily(_ context.Context, date string) ([]*visit.Visit, error) {
	var out []*visit.Visit
	for _, v := range f.visits {
		if v.VisitDate == date {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisits) add(date, doc string, vt clinic.VisitType, st clinic.Status) *visit.Visit {
	v := &visit.Visit{
		ID:          uuid.New(),
		VisitDate:   date,
		PatientName: fmt.Sprintf("patient %d", len(f.visits)+1),
		Doctor:      doc,
		VisitType:   vt,
		Status:      st,
	}
	v.Derive()
	f.visits = append(f.visits, v)
	return v
}

func newTestService(t *testing.T, now time.Time) (*Service, *fakeVisits, *doctor.Service) {
	t.Helper()
	visits := &fakeVisits{}
	doctors := doctor.NewService(doctor.NewRepoMem())
	for _, name := range []string{"DR A", "DR B"} {
		if _, err := doctors.Create(context.Background(), name, ""); err != nil {
			t.Fatal(err)
		}
	}
	svc := NewService(visits, doctors)
	svc.SetClock(func() time.Time { return now })
	return svc, visits, doctors
}

func TestAcceptanceRate(t *testing.T) {
	tests := []struct {
		accepted, total int
		want            float64
	}{
		{2, 3, 66.7},
		{1, 3, 33.3},
		{0, 0, 0},
		{5, 5, 100},
		{1, 8, 12.5},
	}
	for _, tt := range tests {
		if got := AcceptanceRate(tt.accepted, tt.total); got != tt.want {
			t.Errorf("AcceptanceRate(%d, %d) = %v, want %v", tt.accepted, tt.total, got, tt.want)
		}
	}
}

func TestMonthlyStatistics(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	a := visits.add("2024-03-01", "DR A", clinic.VisitExamination, clinic.StatusAccepted)
	a.FamilyGroup = "Yılmaz"
	a.ProfessionGroup = "Öğretmen"
	b := visits.add("2024-03-05", "DR A", clinic.VisitImplant, clinic.StatusAccepted)
	b.FamilyGroup = "Yılmaz"
	b.IsRevisit = true
	visits.add("2024-03-31", "DR A", clinic.VisitCheckup, clinic.StatusDeclined)
	visits.add("2024-03-10", "DR B", clinic.VisitType("consultation"), clinic.StatusAccepted)
	visits.add("2024-04-01", "DR B", clinic.VisitImplant, clinic.StatusAccepted)
	visits.add("2024-02-29", "DR B", clinic.VisitImplant, clinic.StatusAccepted)

	st, err := svc.MonthlyStatistics(context.Background(), 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalPatients != 3 || st.ImplantCount != 1 || st.CheckupCount != 1 || st.ExaminationCount != 1 {
		t.Errorf("unexpected counts %+v", st)
	}
	if st.RevisitCount != 1 {
		t.Errorf("expected 1 revisit, got %d", st.RevisitCount)
	}
	if len(st.DoctorStats) != 2 {
		t.Fatalf("expected a row per active doctor, got %+v", st.DoctorStats)
	}
	for _, d := range st.DoctorStats {
		switch d.Doctor {
		case "DR A":
			if d.TotalExaminations != 3 || d.AcceptedCount != 2 || d.AcceptanceRate != 66.7 {
				t.Errorf("unexpected DR A row %+v", d)
			}
		case "DR B":
			if d.TotalExaminations != 0 || d.AcceptanceRate != 0 {
				t.Errorf("DR B has only non-core or out-of-month visits, got %+v", d)
			}
		}
	}
	if st.TotalFamilies != 1 || len(st.FamilyStats) != 1 {
		t.Fatalf("expected one family, got %+v", st.FamilyStats)
	}
	if f := st.FamilyStats[0]; f.FamilyGroup != "Yılmaz" || f.PatientCount != 2 || f.AcceptanceRate != 100 {
		t.Errorf("unexpected family row %+v", f)
	}
	if len(st.ProfessionStats) != 1 || st.ProfessionStats[0].ProfessionGroup != "Öğretmen" {
		t.Errorf("unexpected profession rows %+v", st.ProfessionStats)
	}
	if st.Month != 3 || st.Year != 2024 {
		t.Errorf("unexpected period %d/%d", st.Month, st.Year)
	}
}

func TestMonthlyStatistics_InactiveDoctorExcluded(t *testing.T) {
	svc, visits, doctors := newTestService(t, time.Now())
	visits.add("2024-03-01", "DR B", clinic.VisitImplant, clinic.StatusAccepted)
	list, _ := doctors.List(context.Background(), false)
	for _, d := range list {
		if d.Name == "DR B" {
			if err := doctors.Deactivate(context.Background(), d.ID); err != nil {
				t.Fatal(err)
			}
		}
	}

	st, err := svc.MonthlyStatistics(context.Background(), 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.DoctorStats) != 1 || st.DoctorStats[0].Doctor != "DR A" {
		t.Errorf("expected only DR A, got %+v", st.DoctorStats)
	}
	if st.TotalPatients != 1 {
		t.Errorf("visits still count toward totals, got %d", st.TotalPatients)
	}
}

func TestMonthlyStatistics_InvalidMonth(t *testing.T) {
	svc, _, _ := newTestService(t, time.Now())
	_, err := svc.MonthlyStatistics(context.Background(), 2024, 13)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

// Weeks 1, 2 and 3 hold 7, 1 and 7 visits: mean 5, threshold 3.5.
func seedUneven(visits *fakeVisits) {
	for i := 0; i < 7; i++ {
		visits.add(fmt.Sprintf("2024-03-%02d", i+1), "DR A", clinic.VisitImplant, clinic.StatusAccepted)
		visits.add(fmt.Sprintf("2024-03-%02d", i+15), "DR A", clinic.VisitType("consultation"), clinic.StatusDeclined)
	}
	visits.add("2024-03-09", "DR A", clinic.VisitCheckup, clinic.StatusUndecided)
}

func TestWeeklyTrend_WarnsOnLowCurrentWeek(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	seedUneven(visits)

	tr, err := svc.WeeklyTrend(context.Background(), 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Warning {
		t.Fatalf("expected a warning, got %+v", tr)
	}
	if tr.CurrentWeek != 2 || tr.CurrentCount == nil || *tr.CurrentCount != 1 {
		t.Errorf("unexpected current week %+v", tr)
	}
	if tr.Average != 5 || tr.Threshold != 3.5 {
		t.Errorf("expected average 5 threshold 3.5, got %v %v", tr.Average, tr.Threshold)
	}
	want := "⚠️ Uyarı: Bu hafta hasta sayısı ortalamanın altında! (Mevcut: 1, Ortalama: 5.0)"
	if tr.Message != want {
		t.Errorf("message = %q", tr.Message)
	}
}

func TestWeeklyTrend_EmptyCurrentWeekWarnsWithZero(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))
	seedUneven(visits)

	tr, err := svc.WeeklyTrend(context.Background(), 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Warning || tr.CurrentWeek != 4 || *tr.CurrentCount != 0 {
		t.Errorf("expected a week 4 warning with zero visits, got %+v", tr)
	}
}

func TestWeeklyTrend_PastMonthIsNormal(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	seedUneven(visits)

	tr, err := svc.WeeklyTrend(context.Background(), 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Warning {
		t.Fatalf("no warning outside the current month, got %+v", tr)
	}
	if tr.WeeklyCounts[1] != 7 || tr.WeeklyCounts[2] != 1 || tr.WeeklyCounts[3] != 7 {
		t.Errorf("unexpected weekly counts %v", tr.WeeklyCounts)
	}
	if tr.Average != 5 || tr.Message != "Hasta sayısı normal seviyede" {
		t.Errorf("unexpected trend %+v", tr)
	}
}

func TestWeeklyTrend_NoData(t *testing.T) {
	svc, _, _ := newTestService(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	tr, err := svc.WeeklyTrend(context.Background(), 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Warning || tr.Message != "Bu ay için veri yok" {
		t.Errorf("unexpected trend %+v", tr)
	}
}

func TestMonthlyDocument(t *testing.T) {
	doc := MonthlyDocument(&MonthlyStats{
		TotalPatients: 3,
		DoctorStats:   []DoctorStats{{Doctor: "DR A", TotalExaminations: 3, AcceptedCount: 2, AcceptanceRate: 66.7}},
		Month:         2,
		Year:          2024,
	})
	if doc.Subtitle != "Şubat 2024" {
		t.Errorf("subtitle = %q", doc.Subtitle)
	}
	if len(doc.Tables) != 2 {
		t.Fatalf("family and profession tables are omitted when empty, got %d tables", len(doc.Tables))
	}
	if got := doc.Tables[1].Rows[0][3]; got != "66.7%" {
		t.Errorf("rate cell = %q", got)
	}
	if MonthlyFilename(2024, 2) != "aylik_istatistik_2024_02.pdf" {
		t.Errorf("filename = %q", MonthlyFilename(2024, 2))
	}
}

func TestDailyDocument(t *testing.T) {
	svc, visits, _ := newTestService(t, time.Now())
	visits.add("2024-03-01", "DR A", clinic.VisitImplant, clinic.StatusAccepted)
	visits.add("2024-03-01", "DR B", clinic.VisitCheckup, clinic.StatusUndecided)

	doc, err := svc.DailyDocument(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	rows := doc.Tables[0].Rows
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "İmplant" || rows[0][3] != "Kabul Edildi" || rows[1][3] != "Kabul Edilmedi" {
		t.Errorf("unexpected rows %v", rows)
	}

	if _, err := svc.DailyDocument(context.Background(), "01.03.2024"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
