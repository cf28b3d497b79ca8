package reminder

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/notification"
)

// Draft is an outbound message waiting for a person to approve it.
// Approving marks it sent; nothing is transmitted.
type Draft struct {
	ID             uuid.UUID  `json:"id"`
	MessageType    string     `json:"message_type"`
	RecipientName  string     `json:"recipient_name"`
	RecipientPhone string     `json:"recipient_phone"`
	MessageText    string     `json:"message_text"`
	ScheduledDate  string     `json:"scheduled_date"`
	Status         string     `json:"status"`
	Approved       bool       `json:"approved"`
	PatientID      *uuid.UUID `json:"patient_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Filter struct {
	Status        string
	MessageType   string
	ScheduledDate string
	Limit         int
	Offset        int
}

// PatientReminder addresses a follow-up reminder to a patient.
type PatientReminder struct {
	PatientID     uuid.UUID
	PatientName   string
	Phone         string
	ScheduledDate string
}

// DoctorDay is one doctor's activity on a date, the input of a daily summary.
// Accepted and NotAccepted hold "name - visit type" lines.
type DoctorDay struct {
	Doctor       string
	Phone        string
	Total        int
	Implant      int
	Checkup      int
	Examination  int
	Revisit      int
	Accepted     []string
	NotAccepted  []string
	NewFollowUps int
}

func (d DoctorDay) templateData(date string) map[string]string {
	details := notification.BulletList("Kabul Edilen Hastalar:", d.Accepted)
	if len(d.NotAccepted) > 0 {
		details += "\n" + notification.BulletList("Düşünen/Ret Hastalar:", d.NotAccepted)
	}
	return map[string]string{
		"date":          date,
		"doctor":        d.Doctor,
		"total":         strconv.Itoa(d.Total),
		"implant":       strconv.Itoa(d.Implant),
		"checkup":       strconv.Itoa(d.Checkup),
		"examination":   strconv.Itoa(d.Examination),
		"revisit":       strconv.Itoa(d.Revisit),
		"accepted":      strconv.Itoa(len(d.Accepted)),
		"not_accepted":  strconv.Itoa(len(d.NotAccepted)),
		"new_followups": strconv.Itoa(d.NewFollowUps),
		"details":       details,
	}
}
