// ABOUTME: Date and time parsing for the formats the sources actually emit.
// ABOUTME: Dates normalize to YYYY-MM-DD, times to 24-hour HH:MM:SS.
package transforms

import (
	"strings"
	"time"
)

// dateFormats covers every date shape seen across the export files,
// tried in order. US month/day comes before day/month.
var dateFormats = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"1/2/2006",
	"2006-01-02",
	"2/1/2006",
}

// ParseDate normalizes a date string to YYYY-MM-DD.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseDateTime normalizes a Garmin timestamp to ISO 8601. Accepts
// "2025-11-24 16:00:58", a bare date, or an already-ISO string, which
// passes through unchanged.
func ParseDateTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.Contains(s, "T") {
		return s, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.Format("2006-01-02T15:04:05"), true
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s, true
	}
	return s, true
}

// ParseTime12h converts "9:25 AM" or "3:45:10 PM" to 24-hour HH:MM:SS.
func ParseTime12h(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	if t, err := time.Parse("3:04:05 PM", s); err == nil {
		return t.Format("15:04:05"), true
	}
	if t, err := time.Parse("3:04 PM", s); err == nil {
		return t.Format("15:04:05"), true
	}
	return "", false
}

// SplitDateTime parses a combined stamp like "1/24/2024 8:16 PM" into a
// normalized date and time. A missing or unparseable time comes back
// empty with the date intact.
func SplitDateTime(s string) (date, timeOfDay string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	parts := strings.SplitN(s, " ", 2)
	date, ok = ParseDate(parts[0])
	if !ok {
		return "", "", false
	}
	if len(parts) == 2 {
		if t, tok := ParseTime12h(parts[1]); tok {
			timeOfDay = t
		}
	}
	return date, timeOfDay, true
}
