package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/username/commute-ride-bot/pkg/dateutil"
)

const (
	// MinDays and MaxDays bound the length of one shift schedule
	MinDays = 1
	MaxDays = 6

	// DefaultDays is the length of a full shift
	DefaultDays = 6
)

// Shift is the work rotation
type Shift string

const (
	ShiftUnset Shift = ""
	ShiftDay   Shift = "day"
	ShiftNight Shift = "night"
)

// ParseShift normalizes s to a Shift. Empty input means unset.
func ParseShift(s string) (Shift, error) {
	switch shift := Shift(strings.ToLower(strings.TrimSpace(s))); shift {
	case ShiftUnset, ShiftDay, ShiftNight:
		return shift, nil
	default:
		return ShiftUnset, &InvalidShiftError{Value: s}
	}
}

// Direction is the commute leg
type Direction string

const (
	ToWork Direction = "to_work"
	ToHome Direction = "to_home"
)

// Directions lists both legs in booking order
var Directions = []Direction{ToWork, ToHome}

// ParseDirection validates a direction name
func ParseDirection(s string) (Direction, error) {
	switch dir := Direction(strings.ToLower(strings.TrimSpace(s))); dir {
	case ToWork, ToHome:
		return dir, nil
	default:
		return "", &InvalidDirectionError{Value: s}
	}
}

// ValidateTime checks that value is a 24h "HH:MM" string
func ValidateTime(value string) error {
	hours, minutes, ok := strings.Cut(value, ":")
	if !ok || len(hours) != 2 || len(minutes) != 2 {
		return &InvalidTimeFormatError{Value: value}
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 23 {
		return &InvalidTimeFormatError{Value: value}
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 {
		return &InvalidTimeFormatError{Value: value}
	}
	return nil
}

// ShiftConfig holds the global parameters of one shift schedule.
// Empty times, an unset shift and a zero StartDay are allowed here and
// reported later by Checkup.
type ShiftConfig struct {
	Shift      Shift
	TimeToWork string
	TimeToHome string
	StartDay   time.Time
	Days       int
}

// NewShiftConfig validates and builds a ShiftConfig
func NewShiftConfig(shift, timeToWork, timeToHome string, startDay time.Time, days int) (ShiftConfig, error) {
	parsed, err := ParseShift(shift)
	if err != nil {
		return ShiftConfig{}, err
	}
	for _, t := range []string{timeToWork, timeToHome} {
		if t == "" {
			continue
		}
		if err := ValidateTime(t); err != nil {
			return ShiftConfig{}, err
		}
	}
	if err := ValidateDays(days); err != nil {
		return ShiftConfig{}, err
	}

	cfg := ShiftConfig{
		Shift:      parsed,
		TimeToWork: timeToWork,
		TimeToHome: timeToHome,
		Days:       days,
	}
	if !startDay.IsZero() {
		cfg.StartDay = dateutil.StartOfDay(startDay)
	}
	return cfg, nil
}

// ValidateDays checks the schedule length
func ValidateDays(days int) error {
	if days < MinDays || days > MaxDays {
		return &InvalidDaysError{Days: days}
	}
	return nil
}

// TimeFor returns the global default time for a direction
func (c ShiftConfig) TimeFor(dir Direction) string {
	if dir == ToHome {
		return c.TimeToHome
	}
	return c.TimeToWork
}

// dayAfter is 1 when the ride lands on the next calendar day
func (c ShiftConfig) dayAfter(dir Direction) int {
	if c.Shift == ShiftNight && dir == ToHome {
		return 1
	}
	return 0
}
