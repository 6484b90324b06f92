package config

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical textual form of configuration dates.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-01",
	time.RFC3339,
}

// ParseDate accepts a calendar date, a year-month or an RFC 3339 timestamp and
// returns the corresponding UTC date at midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w, %w, empty date", ErrInvalidConfig, ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w, %w, %q", ErrInvalidConfig, ErrInvalidDate, s)
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
