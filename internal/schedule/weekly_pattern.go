package schedule

// Slot is the default ride for one weekday and direction
type Slot struct {
	Home string
	Work string
	Time string
}

// WeeklyPattern holds the default slot for every weekday (0=Monday) and direction
type WeeklyPattern struct {
	slots map[int]map[Direction]Slot
}

// NewWeeklyPattern creates a pattern seeded from cfg
func NewWeeklyPattern(cfg ShiftConfig) *WeeklyPattern {
	p := &WeeklyPattern{}
	p.SetDefaults(cfg)
	return p
}

// SetDefaults resets all 14 slots to the reserved names and cfg's global times
func (p *WeeklyPattern) SetDefaults(cfg ShiftConfig) {
	p.slots = make(map[int]map[Direction]Slot, 7)
	for weekday := 0; weekday < 7; weekday++ {
		p.slots[weekday] = make(map[Direction]Slot, len(Directions))
		for _, dir := range Directions {
			p.slots[weekday][dir] = Slot{
				Home: HomeAddress,
				Work: WorkAddress,
				Time: cfg.TimeFor(dir),
			}
		}
	}
}

// Override replaces the slot of dir on each weekday. Blank fields keep the
// slot's current value. Nothing is changed unless every input is valid.
func (p *WeeklyPattern) Override(dir Direction, weekdays []int, home, work, at string) error {
	dir, err := ParseDirection(string(dir))
	if err != nil {
		return err
	}
	for _, weekday := range weekdays {
		if weekday < 0 || weekday > 6 {
			return &InvalidWeekdayError{Weekday: weekday}
		}
	}
	if at != "" {
		if err := ValidateTime(at); err != nil {
			return err
		}
	}

	for _, weekday := range weekdays {
		current, err := p.Resolve(weekday, dir)
		if err != nil {
			return err
		}
		p.slots[weekday][dir] = mergeSlot(current, home, work, at)
	}
	return nil
}

// Resolve returns the slot for weekday and dir
func (p *WeeklyPattern) Resolve(weekday int, dir Direction) (Slot, error) {
	byDir, ok := p.slots[weekday]
	if !ok {
		return Slot{}, &MissingPatternError{Weekday: weekday, Direction: dir}
	}
	slot, ok := byDir[dir]
	if !ok {
		return Slot{}, &MissingPatternError{Weekday: weekday, Direction: dir}
	}
	return slot, nil
}

func mergeSlot(base Slot, home, work, at string) Slot {
	if home != "" {
		base.Home = home
	}
	if work != "" {
		base.Work = work
	}
	if at != "" {
		base.Time = at
	}
	return base
}
