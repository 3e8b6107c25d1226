package statistics

import (
	"time"

	"github.com/sleeplog/internal/ledger"
)

// Activity aggregates activities sharing a description.
type Activity struct {
	Description string
	Count       int
	Hours       float64
}

type Summary struct {
	// RecordedDays is a number of days with sleep recorded
	RecordedDays  int
	TotalSleep    float64
	ActivityHours float64
	Good          int
	Fair          int
	Poor          int
}

func (s Summary) AverageSleep() float64 {
	if s.RecordedDays == 0 {
		return 0
	}
	return s.TotalSleep / float64(s.RecordedDays)
}

func (s *Summary) add(d Day) {
	switch d.Quality {
	case ledger.QualityGood:
		s.Good++
	case ledger.QualityFair:
		s.Fair++
	case ledger.QualityPoor:
		s.Poor++
	}
	if d.Quality != ledger.QualityUnrecorded {
		s.RecordedDays++
		s.TotalSleep += d.Sleep
	}
	if isFinite(d.ActivityHours) {
		s.ActivityHours += d.ActivityHours
	}
}

type Day struct {
	Key           ledger.DayKey
	Sleep         float64
	ActivityHours float64
	Quality       ledger.Quality
}

func (d Day) Weekday() time.Weekday {
	return d.Key.Time(time.UTC).Weekday()
}

type Week struct {
	Summary
	// Number is a week number
	Number int
}

type Month struct {
	Summary
	Year       int
	Month      time.Month
	Days       []Day
	Weeks      []Week
	Activities []Activity
}

type Year struct {
	Summary
	Year       int
	Months     []Summary
	Activities []Activity
}
