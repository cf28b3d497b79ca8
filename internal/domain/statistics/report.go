package statistics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/reporting"
	"github.com/clinic/clinic/pkg/civildate"
)

func percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

func itoa(n int) string { return strconv.Itoa(n) }

// MonthlyDocument lays out st as a printable report.
func MonthlyDocument(st *MonthlyStats) reporting.Document {
	doc := reporting.Document{
		Title:    "Aylık İstatistik Raporu",
		Subtitle: fmt.Sprintf("%s %d", MonthName(st.Month), st.Year),
	}
	doc.Tables = append(doc.Tables, reporting.Table{
		Headers: []string{"Metrik", "Sayı"},
		Widths:  []float64{100, 50},
		Rows: [][]string{
			{"Toplam Hasta", itoa(st.TotalPatients)},
			{"İmplant", itoa(st.ImplantCount)},
			{"Kontrol", itoa(st.CheckupCount)},
			{"Muayene", itoa(st.ExaminationCount)},
			{"Tekrar Görüşme", itoa(st.RevisitCount)},
			{"Aile Sayısı", itoa(st.TotalFamilies)},
		},
	})

	doctors := reporting.Table{
		Title:   "Doktor Performansı",
		Headers: []string{"Doktor", "Muayene", "Kabul", "Oran"},
		Widths:  []float64{70, 35, 35, 35},
	}
	for _, d := range st.DoctorStats {
		doctors.Rows = append(doctors.Rows, []string{
			d.Doctor, itoa(d.TotalExaminations), itoa(d.AcceptedCount), percent(d.AcceptanceRate),
		})
	}
	doc.Tables = append(doc.Tables, doctors)

	if len(st.FamilyStats) > 0 {
		t := reporting.Table{
			Title:   "Aile İstatistikleri",
			Headers: []string{"Aile Grubu", "Hasta Sayısı", "Kabul", "Oran"},
			Widths:  []float64{70, 35, 35, 35},
		}
		for _, f := range st.FamilyStats {
			t.Rows = append(t.Rows, []string{
				f.FamilyGroup, itoa(f.PatientCount), itoa(f.AcceptedCount), percent(f.AcceptanceRate),
			})
		}
		doc.Tables = append(doc.Tables, t)
	}
	if len(st.ProfessionStats) > 0 {
		t := reporting.Table{
			Title:   "Meslek İstatistikleri",
			Headers: []string{"Meslek Grubu", "Hasta Sayısı", "Kabul", "Oran"},
			Widths:  []float64{70, 35, 35, 35},
		}
		for _, p := range st.ProfessionStats {
			t.Rows = append(t.Rows, []string{
				p.ProfessionGroup, itoa(p.PatientCount), itoa(p.AcceptedCount), percent(p.AcceptanceRate),
			})
		}
		doc.Tables = append(doc.Tables, t)
	}
	return doc
}

// DailyDocument lists the visits of one date.
func (s *Service) DailyDocument(ctx context.Context, date string) (reporting.Document, error) {
	if !civildate.Valid(date) {
		return reporting.Document{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	visits, err := s.visits.ListDaily(ctx, date)
	if err != nil {
		return reporting.Document{}, err
	}
	t := reporting.Table{
		Title:   "Hasta Listesi",
		Headers: []string{"Hasta Adı", "Doktor", "Ziyaret Tipi", "Durum"},
		Widths:  []float64{55, 45, 40, 40},
		Empty:   "Bu tarih için hasta bulunamadı.",
	}
	for _, v := range visits {
		state := "Kabul Edilmedi"
		if v.Accepted {
			state = "Kabul Edildi"
		}
		t.Rows = append(t.Rows, []string{v.PatientName, v.Doctor, v.VisitType.Label(), state})
	}
	doc := reporting.Document{
		Title:    "Günlük Hasta Raporu",
		Subtitle: date,
		Tables:   []reporting.Table{t},
	}
	return doc, nil
}

// MonthlyFilename and DailyFilename name the exported PDF attachments.
func MonthlyFilename(year, month int) string {
	return fmt.Sprintf("aylik_istatistik_%d_%02d.pdf", year, month)
}

func DailyFilename(date string) string {
	return fmt.Sprintf("gunluk_rapor_%s.pdf", date)
}
