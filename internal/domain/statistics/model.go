package statistics

import "math"

type DoctorStats struct {
	Doctor            string  `json:"doctor"`
	TotalExaminations int     `json:"total_examinations"`
	AcceptedCount     int     `json:"accepted_count"`
	AcceptanceRate    float64 `json:"acceptance_rate"`
}

type FamilyStats struct {
	FamilyGroup    string  `json:"family_group"`
	PatientCount   int     `json:"patient_count"`
	AcceptedCount  int     `json:"accepted_count"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

type ProfessionStats struct {
	ProfessionGroup string  `json:"profession_group"`
	PatientCount    int     `json:"patient_count"`
	AcceptedCount   int     `json:"accepted_count"`
	AcceptanceRate  float64 `json:"acceptance_rate"`
}

// MonthlyStats is the acceptance rollup of one month's core-type visits.
type MonthlyStats struct {
	TotalPatients    int               `json:"total_patients"`
	ImplantCount     int               `json:"implant_count"`
	CheckupCount     int               `json:"checkup_count"`
	ExaminationCount int               `json:"examination_count"`
	RevisitCount     int               `json:"revisit_count"`
	DoctorStats      []DoctorStats     `json:"doctor_stats"`
	FamilyStats      []FamilyStats     `json:"family_stats"`
	ProfessionStats  []ProfessionStats `json:"profession_stats"`
	TotalFamilies    int               `json:"total_families"`
	Month            int               `json:"month"`
	Year             int               `json:"year"`
}

// WeeklyTrend compares the current week with the month's weekly mean.
// Fields other than Warning and Message are set depending on the outcome.
type WeeklyTrend struct {
	Warning      bool        `json:"warning"`
	CurrentWeek  int         `json:"current_week,omitempty"`
	CurrentCount *int        `json:"current_count,omitempty"`
	Average      float64     `json:"average,omitempty"`
	Threshold    float64     `json:"threshold,omitempty"`
	WeeklyCounts map[int]int `json:"weekly_counts,omitempty"`
	Message      string      `json:"message"`
}

// AcceptanceRate is accepted/total as a percentage with one decimal, or 0
// when total is 0.
func AcceptanceRate(accepted, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(accepted) / float64(total) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

var monthNames = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// MonthName returns the Turkish month name, or "" outside 1..12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
