package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/commute-ride-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// Rotation is a sequence of shift segments
type Rotation string

const (
	RotationUnset    Rotation = ""
	RotationDay      Rotation = "day"
	RotationNight    Rotation = "night"
	RotationDayNight Rotation = "3d+3n" // three day shifts followed by three night shifts
)

// halfRotation is the length of each segment of RotationDayNight
const halfRotation = 3

// ParseRotation normalizes a rotation name
func ParseRotation(s string) (Rotation, error) {
	switch r := Rotation(strings.ToLower(strings.TrimSpace(s))); r {
	case RotationUnset, RotationDay, RotationNight, RotationDayNight:
		return r, nil
	default:
		return RotationUnset, &InvalidShiftError{Value: s}
	}
}

// ShiftTimes are the default commute times of one shift
type ShiftTimes struct {
	TimeToWork string
	TimeToHome string
}

// WeeklyOverride changes the weekly pattern for some weekdays
type WeeklyOverride struct {
	Direction Direction
	Weekdays  []int
	Home      string
	Work      string
	Time      string
}

// RideOverride changes a single ride
type RideOverride struct {
	Date      time.Time
	Direction Direction
	Home      string
	Work      string
	Time      string
}

// Plan is everything needed to build the schedulers of a rotation
type Plan struct {
	Rotation  Rotation
	StartDay  time.Time
	Days      int
	Times     map[Shift]ShiftTimes
	Addresses map[string]string
	Weekly    map[Shift][]WeeklyOverride
	Rides     []RideOverride
}

type segment struct {
	shift Shift
	start time.Time
	days  int
}

func (p Plan) segments() []segment {
	switch p.Rotation {
	case RotationDayNight:
		return []segment{
			{shift: ShiftDay, start: p.StartDay, days: halfRotation},
			{shift: ShiftNight, start: addDaysIfSet(p.StartDay, halfRotation), days: halfRotation},
		}
	default:
		return []segment{{shift: Shift(p.Rotation), start: p.StartDay, days: p.Days}}
	}
}

// BuildSegments returns one scheduler per shift segment of the plan. All
// segments share one AddressBook; blank addresses are left unset. A ride override goes to the segment whose
// date range contains it, or to the first segment otherwise.
func BuildSegments(plan Plan, logger *zap.Logger) ([]*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	book := NewAddressBook()
	if err := book.SetMany(plan.Addresses); err != nil {
		return nil, err
	}

	var schedulers []*Scheduler
	for _, seg := range plan.segments() {
		times := plan.Times[seg.shift]
		cfg, err := NewShiftConfig(string(seg.shift), times.TimeToWork, times.TimeToHome, seg.start, seg.days)
		if err != nil {
			return nil, fmt.Errorf("invalid %s shift: %w", displayShift(seg.shift), err)
		}

		s, err := NewScheduler(cfg, book, logger.With(zap.String("shift", displayShift(seg.shift))))
		if err != nil {
			return nil, err
		}

		for _, o := range plan.Weekly[seg.shift] {
			if err := s.pattern.Override(o.Direction, o.Weekdays, o.Home, o.Work, o.Time); err != nil {
				return nil, fmt.Errorf("invalid weekly override for %s shift: %w", displayShift(seg.shift), err)
			}
		}
		if err := s.Rebuild(); err != nil {
			return nil, err
		}

		schedulers = append(schedulers, s)
	}

	for _, ride := range plan.Rides {
		target := schedulers[0]
		for _, s := range schedulers {
			if s.covers(ride.Date) {
				target = s
				break
			}
		}
		if err := target.SetRide(ride.Date, ride.Direction, ride.Home, ride.Work, ride.Time); err != nil {
			return nil, fmt.Errorf("invalid ride override for %s: %w", dateutil.FormatInput(ride.Date), err)
		}
	}

	return schedulers, nil
}

func (s *Scheduler) covers(date time.Time) bool {
	if s.config.StartDay.IsZero() {
		return false
	}
	date = dateutil.StartOfDay(date)
	end := dateutil.AddDays(s.config.StartDay, s.config.Days)
	return !date.Before(s.config.StartDay) && date.Before(end)
}

func addDaysIfSet(date time.Time, n int) time.Time {
	if date.IsZero() {
		return date
	}
	return dateutil.AddDays(date, n)
}

func displayShift(shift Shift) string {
	if shift == ShiftUnset {
		return "unset"
	}
	return string(shift)
}
