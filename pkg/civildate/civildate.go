// Package civildate handles calendar dates exchanged as YYYY-MM-DD strings.
// Dates carry no time zone; "today" is always evaluated in UTC.
package civildate

import (
	"fmt"
	"time"
)

// Layout is the wire and storage format for calendar dates.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string into midnight UTC of that day.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Valid reports whether s is a well-formed calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Format renders t as a calendar date in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Today returns the current UTC date for the given instant.
func Today(now time.Time) string {
	return Format(now)
}

// AddDays shifts a calendar date by n days.
func AddDays(s string, n int) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// MonthRange returns the half-open interval [first day, first day of next
// month) for the given month.
func MonthRange(year, month int) (start, end string, err error) {
	if month < 1 || month > 12 {
		return "", "", fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return "", "", fmt.Errorf("invalid year %d", year)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Format(first), Format(first.AddDate(0, 1, 0)), nil
}

// WeekOfMonth buckets a day of month into weeks 1..5 using ((day-1)/7)+1.
func WeekOfMonth(day int) int {
	return (day-1)/7 + 1
}

// Day returns the day-of-month component of a calendar date.
func Day(s string) (int, error) {
	t, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return t.Day(), nil
}
