// Package clinic holds the vocabulary shared by the visit, follow-up and
// reminder packages. Canonical values are English; the Turkish values used by
// the front desk are accepted as aliases on input.
package clinic

import "strings"

// Status is the treatment decision recorded on a patient visit.
type Status string

const (
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusUndecided Status = "undecided"
)

// VisitType classifies a visit. Only the three core types count towards
// statistics.
type VisitType string

const (
	VisitImplant     VisitType = "implant"
	VisitCheckup     VisitType = "checkup"
	VisitExamination VisitType = "examination"
)

// CoreVisitTypes lists the visit types included in acceptance statistics.
var CoreVisitTypes = []VisitType{VisitImplant, VisitCheckup, VisitExamination}

// Statuses lists every patient status in display order.
var Statuses = []Status{StatusAccepted, StatusDeclined, StatusUndecided}

const (
	FollowUpPending   = "pending"
	FollowUpOverdue   = "overdue"
	FollowUpCompleted = "completed"
)

const (
	MessageFollowUpReminder = "followup_reminder"
	MessageDailySummary     = "daily_summary"
)

const (
	DraftAwaitingApproval = "awaiting_approval"
	DraftSent             = "sent"
	DraftFailed           = "failed"
)

var statusAliases = map[string]Status{
	"accepted":     StatusAccepted,
	"declined":     StatusDeclined,
	"undecided":    StatusUndecided,
	"kabul etti":   StatusAccepted,
	"kabul etmedi": StatusDeclined,
	"düşünüyor":    StatusUndecided,
}

var visitTypeAliases = map[string]VisitType{
	"implant":     VisitImplant,
	"checkup":     VisitCheckup,
	"examination": VisitExamination,
	"kontrol":     VisitCheckup,
	"muayene":     VisitExamination,
}

var followUpAliases = map[string]string{
	"pending":    FollowUpPending,
	"overdue":    FollowUpOverdue,
	"completed":  FollowUpCompleted,
	"beklemede":  FollowUpPending,
	"gecikmiş":   FollowUpOverdue,
	"tamamlandı": FollowUpCompleted,
}

var draftStatusAliases = map[string]string{
	"awaiting_approval": DraftAwaitingApproval,
	"sent":              DraftSent,
	"failed":            DraftFailed,
	"onay_bekliyor":     DraftAwaitingApproval,
	"gönderildi":        DraftSent,
	"başarısız":         DraftFailed,
}

var messageTypes = map[string]bool{
	MessageFollowUpReminder: true,
	MessageDailySummary:     true,
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// ParseStatus resolves a canonical or Turkish status value.
func ParseStatus(s string) (Status, bool) {
	st, ok := statusAliases[normalize(s)]
	return st, ok
}

// ParseVisitType resolves a canonical or Turkish visit type value.
func ParseVisitType(s string) (VisitType, bool) {
	vt, ok := visitTypeAliases[normalize(s)]
	return vt, ok
}

// ParseFollowUpStatus resolves a canonical or Turkish follow-up status.
func ParseFollowUpStatus(s string) (string, bool) {
	st, ok := followUpAliases[normalize(s)]
	return st, ok
}

// ParseDraftStatus resolves a canonical or Turkish reminder draft status.
func ParseDraftStatus(s string) (string, bool) {
	st, ok := draftStatusAliases[normalize(s)]
	return st, ok
}

// ValidMessageType reports whether s names a reminder message type.
func ValidMessageType(s string) bool {
	return messageTypes[s]
}

// IsCore reports whether the visit type counts towards statistics.
func (v VisitType) IsCore() bool {
	for _, c := range CoreVisitTypes {
		if v == c {
			return true
		}
	}
	return false
}

// Label returns the Turkish display label used in reports and summaries.
func (v VisitType) Label() string {
	switch v {
	case VisitImplant:
		return "İmplant"
	case VisitCheckup:
		return "Kontrol"
	case VisitExamination:
		return "Muayene"
	}
	return string(v)
}

// Label returns the Turkish display label used in reports.
func (s Status) Label() string {
	switch s {
	case StatusAccepted:
		return "Kabul Etti"
	case StatusDeclined:
		return "Kabul Etmedi"
	case StatusUndecided:
		return "Düşünüyor"
	}
	return string(s)
}
