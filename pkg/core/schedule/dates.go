package schedule

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// MonthKeyOf derives the roster document key (YYYY-MM) from a calendar date.
func MonthKeyOf(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01"), nil
}

// DayIndexOf derives the 0-based day index within the month from a calendar
// date, so the 1st of the month is index 0.
func DayIndexOf(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Day() - 1, nil
}
