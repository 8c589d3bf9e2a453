package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/commute-ride-bot/pkg/dateutil"
	"go.uber.org/zap"
)

// RideRecord is the resolved description of one ride on one date
type RideRecord struct {
	DisplayDay string // dd/mm/yy, the day the ride actually happens
	Weekday    int
	Time       string
	Home       string
	Work       string
}

// Ride is a RideRecord with the schedule date and direction it belongs to
type Ride struct {
	Date      time.Time
	Direction Direction
	Record    RideRecord
}

// OriginName returns the address name the ride starts from
func (r Ride) OriginName() string {
	if r.Direction == ToWork {
		return r.Record.Home
	}
	return r.Record.Work
}

// DestinationName returns the address name the ride ends at
func (r Ride) DestinationName() string {
	if r.Direction == ToWork {
		return r.Record.Work
	}
	return r.Record.Home
}

type dayRides struct {
	date  time.Time
	rides map[Direction]RideRecord
}

// Scheduler expands a WeeklyPattern over the configured date range
type Scheduler struct {
	config    ShiftConfig
	addresses *AddressBook
	pattern   *WeeklyPattern
	days      map[string]*dayRides
	order     []string
	logger    *zap.Logger
}

// NewScheduler creates a scheduler with a default pattern and builds the schedule
func NewScheduler(cfg ShiftConfig, addresses *AddressBook, logger *zap.Logger) (*Scheduler, error) {
	if addresses == nil {
		addresses = NewAddressBook()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		config:    cfg,
		addresses: addresses,
		pattern:   NewWeeklyPattern(cfg),
		logger:    logger,
	}
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the shift configuration
func (s *Scheduler) Config() ShiftConfig {
	return s.config
}

// Addresses returns the scheduler's address book
func (s *Scheduler) Addresses() *AddressBook {
	return s.addresses
}

// Pattern returns the scheduler's weekly pattern
func (s *Scheduler) Pattern() *WeeklyPattern {
	return s.pattern
}

// Rebuild discards the schedule and regenerates it from the weekly pattern
func (s *Scheduler) Rebuild() error {
	s.days = make(map[string]*dayRides)
	s.order = nil

	if s.config.StartDay.IsZero() {
		s.logger.Debug("No start day configured, schedule left empty")
		return nil
	}

	for i := 0; i < s.config.Days; i++ {
		date := dateutil.AddDays(s.config.StartDay, i)
		for _, dir := range Directions {
			if err := s.SetRide(date, dir, "", "", ""); err != nil {
				return fmt.Errorf("failed to schedule %s %s: %w", dateutil.FormatInput(date), dir, err)
			}
		}
	}

	s.logger.Debug("Schedule rebuilt",
		zap.Time("start_day", s.config.StartDay),
		zap.Int("days", s.config.Days),
		zap.Int("rides", 2*len(s.order)))

	return nil
}

// OverrideWeekdays changes the weekly pattern and rebuilds the schedule.
// Single-ride overrides made with SetRide are discarded by the rebuild.
func (s *Scheduler) OverrideWeekdays(dir Direction, weekdays []int, home, work, at string) error {
	if err := s.pattern.Override(dir, weekdays, home, work, at); err != nil {
		return err
	}
	return s.Rebuild()
}

// SetRide writes the ride for date and dir, filling blank fields from the
// weekly pattern. The pattern itself is not changed.
func (s *Scheduler) SetRide(date time.Time, dir Direction, home, work, at string) error {
	dir, err := ParseDirection(string(dir))
	if err != nil {
		return err
	}
	if at != "" {
		if err := ValidateTime(at); err != nil {
			return err
		}
	}

	date = dateutil.StartOfDay(date)
	weekday := dateutil.WeekdayIndex(date)
	slot, err := s.pattern.Resolve(weekday, dir)
	if err != nil {
		return err
	}
	slot = mergeSlot(slot, home, work, at)

	key := date.Format("2006-01-02")
	day, ok := s.days[key]
	if !ok {
		day = &dayRides{date: date, rides: make(map[Direction]RideRecord, len(Directions))}
		s.days[key] = day
		s.order = append(s.order, key)
	}

	day.rides[dir] = RideRecord{
		DisplayDay: dateutil.FormatDisplay(dateutil.AddDays(date, s.config.dayAfter(dir))),
		Weekday:    weekday,
		Time:       slot.Time,
		Home:       slot.Home,
		Work:       slot.Work,
	}
	return nil
}

// Rides returns every scheduled ride, by date in insertion order and
// to_work before to_home within a date
func (s *Scheduler) Rides() []Ride {
	rides := make([]Ride, 0, 2*len(s.order))
	for _, key := range s.order {
		day := s.days[key]
		for _, dir := range Directions {
			record, ok := day.rides[dir]
			if !ok {
				continue
			}
			rides = append(rides, Ride{Date: day.date, Direction: dir, Record: record})
		}
	}
	return rides
}

// lookup returns the record for date and dir, if scheduled
func (s *Scheduler) lookup(date time.Time, dir Direction) (RideRecord, bool) {
	day, ok := s.days[dateutil.StartOfDay(date).Format("2006-01-02")]
	if !ok {
		return RideRecord{}, false
	}
	record, ok := day.rides[dir]
	return record, ok
}

// Checkup reports every required field that is still unset in one error
func (s *Scheduler) Checkup() error {
	book := s.addresses.All()
	checks := []struct {
		field string
		set   bool
	}{
		{"shift", s.config.Shift != ShiftUnset},
		{"time_to_home", s.config.TimeToHome != ""},
		{"time_to_work", s.config.TimeToWork != ""},
		{"start_day", !s.config.StartDay.IsZero()},
		{"days", s.config.Days != 0},
		{HomeAddress, strings.TrimSpace(book[HomeAddress]) != ""},
		{WorkAddress, strings.TrimSpace(book[WorkAddress]) != ""},
	}

	var missing []string
	for _, check := range checks {
		if !check.set {
			missing = append(missing, check.field)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationIncompleteError{Fields: missing}
	}
	return nil
}
