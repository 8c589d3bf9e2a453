package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestScheduler(t *testing.T, shift string, start time.Time, days int) *Scheduler {
	t.Helper()

	cfg, err := NewShiftConfig(shift, "17:55", "07:05", start, days)
	require.NoError(t, err)

	book := NewAddressBook()
	require.NoError(t, book.Set("home", "H"))
	require.NoError(t, book.Set("work", "W"))

	s, err := NewScheduler(cfg, book, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestRebuild_ProducesTwoRidesPerDay(t *testing.T) {
	for days := MinDays; days <= MaxDays; days++ {
		s := newTestScheduler(t, "day", date(2024, 2, 5), days)

		rides := s.Rides()
		require.Len(t, rides, 2*days)

		for i := 0; i < days; i++ {
			want := date(2024, 2, 5+i)
			assert.True(t, rides[2*i].Date.Equal(want), "day %d to_work date", i)
			assert.Equal(t, ToWork, rides[2*i].Direction)
			assert.True(t, rides[2*i+1].Date.Equal(want), "day %d to_home date", i)
			assert.Equal(t, ToHome, rides[2*i+1].Direction)
		}
	}
}

func TestRebuild_NightShiftHomeRideIsNextDay(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		days  int
		last  string
	}{
		{"Within month", date(2024, 2, 5), 2, "07/02/24"},
		{"Month boundary", date(2024, 1, 30), 2, "01/02/24"},
		{"Leap day", date(2024, 2, 28), 1, "29/02/24"},
		{"Year boundary", date(2024, 12, 30), 2, "01/01/25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(t, "night", tt.start, tt.days)

			var lastHome string
			for _, ride := range s.Rides() {
				switch ride.Direction {
				case ToWork:
					assert.Equal(t, ride.Date.Format("02/01/06"), ride.Record.DisplayDay)
				case ToHome:
					assert.Equal(t, ride.Date.AddDate(0, 0, 1).Format("02/01/06"), ride.Record.DisplayDay)
					lastHome = ride.Record.DisplayDay
				}
			}
			assert.Equal(t, tt.last, lastHome)
		})
	}
}

func TestRebuild_DayShiftRidesOnSameDay(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 1, 30), 3)

	for _, ride := range s.Rides() {
		assert.Equal(t, ride.Date.Format("02/01/06"), ride.Record.DisplayDay,
			"%s %s", ride.Date.Format("2006-01-02"), ride.Direction)
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	s := newTestScheduler(t, "night", date(2024, 2, 5), 6)
	require.NoError(t, s.pattern.Override(ToHome, []int{2}, "gym", "", "08:00"))

	require.NoError(t, s.Rebuild())
	first := s.Rides()
	require.NoError(t, s.Rebuild())
	second := s.Rides()

	assert.Equal(t, first, second)
}

func TestRebuild_DiscardsSingleRideOverrides(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 2, 5), 2)
	require.NoError(t, s.SetRide(date(2024, 2, 5), ToWork, "", "", "06:00"))

	require.NoError(t, s.Rebuild())

	record, ok := s.lookup(date(2024, 2, 5), ToWork)
	require.True(t, ok)
	assert.Equal(t, "17:55", record.Time)
}

func TestRebuild_WithoutStartDayIsEmpty(t *testing.T) {
	cfg, err := NewShiftConfig("day", "06:00", "18:00", time.Time{}, 6)
	require.NoError(t, err)

	s, err := NewScheduler(cfg, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, s.Rides())
}

func TestSetRide_LayersOnPattern(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 2, 5), 6)
	require.NoError(t, s.Addresses().Set("work_back", "WB"))

	// Saturday 10/02 leaves later, Monday's return goes from the back door
	require.NoError(t, s.SetRide(date(2024, 2, 10), ToWork, "", "", "06:00"))
	require.NoError(t, s.SetRide(date(2024, 2, 5), ToHome, "", "work_back", ""))

	sat, ok := s.lookup(date(2024, 2, 10), ToWork)
	require.True(t, ok)
	assert.Equal(t, RideRecord{DisplayDay: "10/02/24", Weekday: 5, Time: "06:00", Home: "home", Work: "work"}, sat)

	mon, ok := s.lookup(date(2024, 2, 5), ToHome)
	require.True(t, ok)
	assert.Equal(t, "work_back", mon.Work)
	assert.Equal(t, "07:05", mon.Time)

	// the pattern itself is untouched
	slot, err := s.Pattern().Resolve(5, ToWork)
	require.NoError(t, err)
	assert.Equal(t, "17:55", slot.Time)
	assert.Len(t, s.Rides(), 12)
}

func TestSetRide_NewDateIsAppended(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 2, 5), 1)

	require.NoError(t, s.SetRide(date(2024, 2, 1), ToWork, "", "", ""))

	rides := s.Rides()
	require.Len(t, rides, 3)
	assert.True(t, rides[2].Date.Equal(date(2024, 2, 1)))
	assert.Equal(t, ToWork, rides[2].Direction)
}

func TestSetRide_Validation(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 2, 5), 1)

	err := s.SetRide(date(2024, 2, 5), Direction("sideways"), "", "", "")
	assert.True(t, errors.Is(err, ErrInvalidDirection))

	err = s.SetRide(date(2024, 2, 5), ToWork, "", "", "25:00")
	assert.True(t, errors.Is(err, ErrInvalidTimeFormat))

	record, _ := s.lookup(date(2024, 2, 5), ToWork)
	assert.Equal(t, "17:55", record.Time)
}

func TestSetRide_NormalizesDirection(t *testing.T) {
	s := newTestScheduler(t, "night", date(2024, 2, 5), 1)

	require.NoError(t, s.SetRide(date(2024, 2, 5), Direction("To_Home"), "", "", "06:45"))

	record, ok := s.lookup(date(2024, 2, 5), ToHome)
	require.True(t, ok)
	assert.Equal(t, "06:45", record.Time)
	assert.Equal(t, "06/02/24", record.DisplayDay)
	assert.Len(t, s.Rides(), 2)
}

func TestSetRide_MissingPattern(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 2, 5), 1)
	delete(s.pattern.slots, 0)

	err := s.SetRide(date(2024, 2, 5), ToWork, "", "", "")

	var missing *MissingPatternError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 0, missing.Weekday)
	assert.Equal(t, ToWork, missing.Direction)
}

func TestOverrideWeekdays_RebuildsSchedule(t *testing.T) {
	s := newTestScheduler(t, "day", date(2024, 2, 5), 6)
	require.NoError(t, s.Addresses().Set("crossfit", "CF"))

	require.NoError(t, s.OverrideWeekdays(ToHome, []int{0, 1, 2, 3, 4}, "crossfit", "", ""))

	for _, ride := range s.Rides() {
		if ride.Direction != ToHome {
			continue
		}
		if ride.Record.Weekday <= 4 {
			assert.Equal(t, "crossfit", ride.Record.Home)
		} else {
			assert.Equal(t, "home", ride.Record.Home)
		}
	}
}

func TestCheckup(t *testing.T) {
	t.Run("Complete configuration passes", func(t *testing.T) {
		s := newTestScheduler(t, "night", date(2024, 2, 5), 2)
		assert.NoError(t, s.Checkup())
	})

	t.Run("Reports all missing fields at once", func(t *testing.T) {
		cfg, err := NewShiftConfig("", "17:55", "07:05", date(2024, 2, 5), 2)
		require.NoError(t, err)
		book := NewAddressBook()
		require.NoError(t, book.Set("work", "W"))
		s, err := NewScheduler(cfg, book, nil)
		require.NoError(t, err)

		err = s.Checkup()

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigurationIncomplete))
		assert.Equal(t, []string{"shift", "home"}, MissingFields(err))
	})

	t.Run("Empty configuration lists the whole checklist", func(t *testing.T) {
		s, err := NewScheduler(ShiftConfig{}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t,
			[]string{"shift", "time_to_home", "time_to_work", "start_day", "days", "home", "work"},
			MissingFields(s.Checkup()))
	})
}

func TestEndToEnd_NightShift(t *testing.T) {
	s := newTestScheduler(t, "night", date(2024, 2, 5), 2)

	type flat struct {
		date, dir, display, at, from, to string
	}
	var got []flat
	for _, ride := range s.Rides() {
		from, err := s.Addresses().Resolve(ride.OriginName())
		require.NoError(t, err)
		to, err := s.Addresses().Resolve(ride.DestinationName())
		require.NoError(t, err)
		got = append(got, flat{
			date:    ride.Date.Format("02/01"),
			dir:     string(ride.Direction),
			display: ride.Record.DisplayDay,
			at:      ride.Record.Time,
			from:    from,
			to:      to,
		})
	}

	assert.Equal(t, []flat{
		{"05/02", "to_work", "05/02/24", "17:55", "H", "W"},
		{"05/02", "to_home", "06/02/24", "07:05", "W", "H"},
		{"06/02", "to_work", "06/02/24", "17:55", "H", "W"},
		{"06/02", "to_home", "07/02/24", "07:05", "W", "H"},
	}, got)
}

func TestSummary(t *testing.T) {
	s := newTestScheduler(t, "night", date(2024, 2, 5), 1)

	summary := s.Summary()

	assert.Contains(t, summary, "Shift 'night' starting on 05/02/2024 for 1 day(s).")
	assert.Contains(t, summary, "Monday 05/02/24")
	assert.Contains(t, summary, "05/02/24 17:55 : home -> work")
	assert.Contains(t, summary, "06/02/24 07:05 : work -> home")
}
