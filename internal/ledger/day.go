package ledger

import (
	"cmp"
	"fmt"
	"time"
)

// DayKey identifies a calendar day. Month is zero based, 0 is January.
//
// Keys are compared by value and are not checked against the real number of
// days in a month.
type DayKey struct {
	Day   int
	Month int
	Year  int
}

func NewDayKey(t time.Time) DayKey {
	return DayKey{
		Day:   t.Day(),
		Month: int(t.Month()) - 1,
		Year:  t.Year(),
	}
}

// Time returns midnight of the day in loc. Out of range days are normalized
// the way time.Date does it.
func (k DayKey) Time(loc *time.Location) time.Time {
	return time.Date(k.Year, time.Month(k.Month+1), k.Day, 0, 0, 0, 0, loc)
}

// String formats the key as YYYY-MM-DD with a one based month.
func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month+1, k.Day)
}

func (k DayKey) Compare(other DayKey) int {
	if c := cmp.Compare(k.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Month, other.Month); c != 0 {
		return c
	}
	return cmp.Compare(k.Day, other.Day)
}

// ParseDayKey parses a YYYY-MM-DD string.
func ParseDayKey(value string) (DayKey, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return DayKey{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return NewDayKey(t), nil
}

// DaysInMonth returns the number of days in the month of the year, month is
// zero based.
func DaysInMonth(year int, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}
