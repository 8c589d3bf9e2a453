package schedule

import (
	"fmt"
	"strings"

	"github.com/username/commute-ride-bot/pkg/dateutil"
)

// WeekdayNames indexes English weekday names with Monday = 0
var WeekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Summary renders the configuration, address book and rides for review
func (s *Scheduler) Summary() string {
	var b strings.Builder

	start := "unset"
	if !s.config.StartDay.IsZero() {
		start = dateutil.FormatInput(s.config.StartDay)
	}
	fmt.Fprintf(&b, "Shift '%s' starting on %s for %d day(s).\n", displayShift(s.config.Shift), start, s.config.Days)

	b.WriteString("Addresses:\n")
	book := s.addresses.All()
	for _, name := range s.addresses.Names() {
		fmt.Fprintf(&b, "    %-12s %s\n", name, book[name])
	}

	b.WriteString("Schedule:\n")
	var current string
	for _, ride := range s.Rides() {
		if key := dateutil.FormatDisplay(ride.Date); key != current {
			current = key
			fmt.Fprintf(&b, "%s %s\n", WeekdayNames[ride.Record.Weekday], key)
		}
		fmt.Fprintf(&b, "    %s %s : %s -> %s\n",
			ride.Record.DisplayDay, ride.Record.Time, ride.OriginName(), ride.DestinationName())
	}

	return b.String()
}
