package ledger

import (
	"math"
	"time"
)

const clockLayout = "15:04"

type ActivityEntry struct {
	// Start is a wall clock time formatted as HH:MM
	Start string `json:"start_time"`
	// End is a wall clock time formatted as HH:MM
	End         string `json:"end_time"`
	Description string `json:"description"`
}

// Hours returns End - Start in fractional hours. Both times are placed on the
// same date, so an entry ending before it starts has a negative duration.
// If either time can not be parsed, Hours returns NaN.
func (e ActivityEntry) Hours() float64 {
	start, err := time.Parse(clockLayout, e.Start)
	if err != nil {
		return math.NaN()
	}
	end, err := time.Parse(clockLayout, e.End)
	if err != nil {
		return math.NaN()
	}
	return end.Sub(start).Hours()
}

// ParseClock reports whether value is a valid HH:MM time.
func ParseClock(value string) (time.Time, error) {
	return time.Parse(clockLayout, value)
}
