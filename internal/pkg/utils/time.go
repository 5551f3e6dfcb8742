package utils

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"time"
)

// ParseClock accepts HH:MM or HH:MM:SS and returns the offset since midnight.
func ParseClock(value string) (time.Duration, error) {
	layout := constvars.ClockFormat
	if len(value) == len(constvars.ClockFormatShort) {
		layout = constvars.ClockFormatShort
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return time.Duration(parsed.Hour())*time.Hour +
		time.Duration(parsed.Minute())*time.Minute +
		time.Duration(parsed.Second())*time.Second, nil
}

// FormatClock renders an offset since midnight as HH:MM:SS.
func FormatClock(offset time.Duration) string {
	total := int(offset / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constvars.DateFormat, value, loc)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// LoadLocation returns UTC when the zone database does not know name.
func LoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}
