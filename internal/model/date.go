package model

import (
	"strings"
	"time"
)

// DateFormat is the layout used when writing dates.
const DateFormat = "2006-01-02"

// Accepted read layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateFormat,
	"2006-1-2",
	"2006-01",
	"01/02/2006",
}

// ParseDate parses a stored record date. A time carrying an offset keeps it, so the
// calendar month is the one written in the text.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &UnparsableDateError{Value: s}
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, &UnparsableDateError{Value: s}
}

// FormatDate renders t in DateFormat.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// MonthStart returns the first day of the given month at midnight UTC.
func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
