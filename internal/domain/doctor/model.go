package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a roster entry. Visits refer to doctors by name.
type Doctor struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Info is the name/phone pair used to address daily summaries.
type Info struct {
	DoctorName  string `json:"doctor_name"`
	PhoneNumber string `json:"phone_number"`
}

// DefaultRoster is inserted by the seed step into an empty doctors table.
var DefaultRoster = []string{
	"DR SEFA ARAS",
	"DR MURATCAN KARBA",
	"DR HÜSEYİN EKİNCİ",
	"DR NAZİF YELKEN",
}
