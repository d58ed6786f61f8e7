package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/julianstephens/peakstate/internal/constants"
)

// timestampLayouts are tried in order when decoding stored instants.
// Browsers write toISOString() values, older exports used plain RFC3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	constants.TimestampFormat,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

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

// ParseTimestamp parses a persisted ISO-8601 instant.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders an instant the way entries are persisted.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// FormatClock renders an hour and minute as H:MM (unpadded hour).
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%d:%02d", hour, minute)
}

// FormatClockPadded renders an hour and minute as HH:MM.
func FormatClockPadded(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// MinuteOfDay returns minutes since midnight.
func MinuteOfDay(hour, minute int) int {
	return hour*60 + minute
}

// NormalizeHour folds any integer hour into 0..23.
func NormalizeHour(hour int) int {
	return ((hour % 24) + 24) % 24
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// ParseDay resolves a day expression relative to now.
// Supports "today", YYYY-MM-DD and natural language ("yesterday", "last monday", "3 days ago").
// The result is midnight of that day in loc.
func ParseDay(expr string, now time.Time, loc *time.Location) (time.Time, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" || expr == "today" {
		return StartOfDay(now, loc), nil
	}

	if t, err := time.ParseInLocation(constants.DateFormat, expr, loc); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(expr, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or an expression like 'yesterday'", expr)
	}
	return StartOfDay(r.Time, loc), nil
}
