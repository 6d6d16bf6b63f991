package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/elioaoun07/homeagenda/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// StartOfDay returns local midnight of the calendar day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns Monday 00:00 local of the week containing t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	// Weekday() is 0 for Sunday; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// WithTimeOf combines the calendar date of date with the wall-clock time of ref, both read in loc.
func WithTimeOf(date, ref time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	r := ref.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), r.Hour(), r.Minute(), r.Second(), 0, loc)
}

// ParseInstant parses RFC 3339, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD" in loc.
// hasTime is false for the date-only form, whose result is local midnight.
func ParseInstant(s string, loc *time.Location) (t time.Time, hasTime bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty date/time")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true, nil
	}
	if t, err := time.ParseInLocation(constants.DateTimeFormat, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.ParseInLocation(constants.DateFormat, s, loc); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date/time %q (expected RFC3339, %q or %q)", s, constants.DateTimeFormat, constants.DateFormat)
}
