package timezone

import (
	"fmt"
	"time"

	"github.com/sleeplog/internal/ledger"
)

// Load returns the location by its IANA name, an empty name means local time.
func Load(zone string) (*time.Location, error) {
	if zone == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", zone, err)
	}
	return location, nil
}

// Today returns the current day in location.
func Today(location *time.Location) ledger.DayKey {
	return ledger.NewDayKey(time.Now().In(location))
}
