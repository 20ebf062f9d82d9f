package model

import (
	"strings"
	"time"
)

// DateLayout is the canonical day format used in plans, CSV output and CLI flags.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order. Spreadsheet exports mix ISO timestamps with
// day-first local dates, so "02/01/2006" is read as DD/MM/YYYY.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
	"02/01/2006",
	"2006/01/02",
}

// ParseDate reads a record or week date. Values without a zone are UTC.
// ok is false for empty or unrecognised input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
