package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// EmptyAddressError is returned when an address value is empty or blank
type EmptyAddressError struct {
	Name string
}

func (e *EmptyAddressError) Error() string {
	return fmt.Sprintf("address %q is empty", e.Name)
}

// Is enables errors.Is() comparison for EmptyAddressError
func (e *EmptyAddressError) Is(target error) bool {
	_, ok := target.(*EmptyAddressError)
	return ok
}

// UnknownAddressError is returned when a name is not in the address book
type UnknownAddressError struct {
	Name string
}

func (e *UnknownAddressError) Error() string {
	return fmt.Sprintf("unknown address %q", e.Name)
}

// Is enables errors.Is() comparison for UnknownAddressError
func (e *UnknownAddressError) Is(target error) bool {
	_, ok := target.(*UnknownAddressError)
	return ok
}

// InvalidWeekdayError is returned for weekdays outside 0..6
type InvalidWeekdayError struct {
	Weekday int
}

func (e *InvalidWeekdayError) Error() string {
	return fmt.Sprintf("weekday %d is not between 0 (Monday) and 6 (Sunday)", e.Weekday)
}

// Is enables errors.Is() comparison for InvalidWeekdayError
func (e *InvalidWeekdayError) Is(target error) bool {
	_, ok := target.(*InvalidWeekdayError)
	return ok
}

// MissingPatternError is returned when a weekday/direction slot was never seeded
type MissingPatternError struct {
	Weekday   int
	Direction Direction
}

func (e *MissingPatternError) Error() string {
	return fmt.Sprintf("no weekly pattern for weekday %d %s", e.Weekday, e.Direction)
}

// Is enables errors.Is() comparison for MissingPatternError
func (e *MissingPatternError) Is(target error) bool {
	_, ok := target.(*MissingPatternError)
	return ok
}

// ConfigurationIncompleteError lists every required field that is still unset
type ConfigurationIncompleteError struct {
	Fields []string
}

func (e *ConfigurationIncompleteError) Error() string {
	return fmt.Sprintf("the following fields must be configured: %s", strings.Join(e.Fields, ", "))
}

// Is enables errors.Is() comparison for ConfigurationIncompleteError
func (e *ConfigurationIncompleteError) Is(target error) bool {
	_, ok := target.(*ConfigurationIncompleteError)
	return ok
}

// InvalidShiftError is returned for shift values other than day, night or empty
type InvalidShiftError struct {
	Value string
}

func (e *InvalidShiftError) Error() string {
	return fmt.Sprintf("shift must be one of [day night], got %q", e.Value)
}

// Is enables errors.Is() comparison for InvalidShiftError
func (e *InvalidShiftError) Is(target error) bool {
	_, ok := target.(*InvalidShiftError)
	return ok
}

// InvalidTimeFormatError is returned for times not in HH:MM format
type InvalidTimeFormatError struct {
	Value string
}

func (e *InvalidTimeFormatError) Error() string {
	return fmt.Sprintf("time %q is not in HH:MM format", e.Value)
}

// Is enables errors.Is() comparison for InvalidTimeFormatError
func (e *InvalidTimeFormatError) Is(target error) bool {
	_, ok := target.(*InvalidTimeFormatError)
	return ok
}

// InvalidDaysError is returned when the number of days is outside [MinDays, MaxDays]
type InvalidDaysError struct {
	Days int
}

func (e *InvalidDaysError) Error() string {
	return fmt.Sprintf("days must be between %d and %d, got %d", MinDays, MaxDays, e.Days)
}

// Is enables errors.Is() comparison for InvalidDaysError
func (e *InvalidDaysError) Is(target error) bool {
	_, ok := target.(*InvalidDaysError)
	return ok
}

// InvalidDirectionError is returned for directions other than to_work and to_home
type InvalidDirectionError struct {
	Value string
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("direction must be %q or %q, got %q", ToWork, ToHome, e.Value)
}

// Is enables errors.Is() comparison for InvalidDirectionError
func (e *InvalidDirectionError) Is(target error) bool {
	_, ok := target.(*InvalidDirectionError)
	return ok
}

// InvalidDateError is returned for unparseable dates
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Value, e.Err)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() comparison for InvalidDateError
func (e *InvalidDateError) Is(target error) bool {
	_, ok := target.(*InvalidDateError)
	return ok
}

// Sentinels for errors.Is checks
var (
	ErrEmptyAddress            = &EmptyAddressError{}
	ErrUnknownAddress          = &UnknownAddressError{}
	ErrInvalidWeekday          = &InvalidWeekdayError{}
	ErrMissingPattern          = &MissingPatternError{}
	ErrConfigurationIncomplete = &ConfigurationIncompleteError{}
	ErrInvalidShift            = &InvalidShiftError{}
	ErrInvalidTimeFormat       = &InvalidTimeFormatError{}
	ErrInvalidDays             = &InvalidDaysError{}
	ErrInvalidDirection        = &InvalidDirectionError{}
	ErrInvalidDate             = &InvalidDateError{}
)

// MissingFields returns the field names of a ConfigurationIncompleteError in err's chain
func MissingFields(err error) []string {
	var incomplete *ConfigurationIncompleteError
	if errors.As(err, &incomplete) {
		return incomplete.Fields
	}
	return nil
}
