package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is the dd/mm/yy format the ride dashboard expects
const DisplayLayout = "02/01/06"

// InputLayout is the dd/mm/yyyy format used in configuration
const InputLayout = "02/01/2006"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// AddDays returns the calendar date n days after date (start of day)
func AddDays(date time.Time, n int) time.Time {
	return StartOfDay(date).AddDate(0, 0, n)
}

// WeekdayIndex returns the weekday with Monday = 0 ... Sunday = 6
func WeekdayIndex(date time.Time) int {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return weekday - 1
}

// FormatDisplay formats date as dd/mm/yy
func FormatDisplay(date time.Time) string {
	return date.Format(DisplayLayout)
}

// FormatInput formats date as dd/mm/yyyy
func FormatInput(date time.Time) string {
	return date.Format(InputLayout)
}

// ParseDate parses date string in various formats.
// A bare "dd/mm" is completed with the year of now.
func ParseDate(dateStr string, now time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if strings.Count(dateStr, "/") == 1 {
		dateStr = fmt.Sprintf("%s/%d", dateStr, now.Year())
	}

	formats := []string{
		"02/01/2006",
		"2/1/2006",
		"02/01/06",
		"2006-01-02",
		"02.01.2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// Today returns today's date (start of day, UTC calendar)
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
