package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

var ErrIndexOutOfRange = errors.New("activity index out of range")

type DayRecord struct {
	// Sleep is nil when sleep was never recorded for the day
	Sleep      *float64        `json:"sleep,omitempty"`
	Activities []ActivityEntry `json:"activities,omitempty"`
}

func (r DayRecord) IsEmpty() bool {
	return r.Sleep == nil && len(r.Activities) == 0
}

// SleepHours returns recorded sleep or zero.
func (r DayRecord) SleepHours() float64 {
	if r.Sleep == nil {
		return 0
	}
	return *r.Sleep
}

type dayRecordJSON struct {
	Sleep      json.RawMessage `json:"sleep,omitempty"`
	Activities []ActivityEntry `json:"activities,omitempty"`
}

// MarshalJSON writes sleep as a number, or as a quoted "NaN", "+Inf" or
// "-Inf" which plain JSON numbers cannot hold.
func (r DayRecord) MarshalJSON() ([]byte, error) {
	out := dayRecordJSON{Activities: r.Activities}
	if r.Sleep != nil {
		value := strconv.FormatFloat(*r.Sleep, 'g', -1, 64)
		if math.IsNaN(*r.Sleep) || math.IsInf(*r.Sleep, 0) {
			value = strconv.Quote(value)
		}
		out.Sleep = json.RawMessage(value)
	}
	return json.Marshal(out)
}

func (r *DayRecord) UnmarshalJSON(data []byte) error {
	var in dayRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Activities = in.Activities
	r.Sleep = nil
	if len(in.Sleep) == 0 || string(in.Sleep) == "null" {
		return nil
	}
	hours, err := strconv.ParseFloat(strings.Trim(string(in.Sleep), `"`), 64)
	if err != nil {
		return fmt.Errorf("sleep: %w", err)
	}
	r.Sleep = &hours
	return nil
}

func (r DayRecord) clone() DayRecord {
	out := DayRecord{
		Activities: slices.Clone(r.Activities),
	}
	if r.Sleep != nil {
		sleep := *r.Sleep
		out.Sleep = &sleep
	}
	return out
}

// Ledger maps days to their records. A day that was never written reads as
// an empty record.
//
// Ledger is not safe for concurrent use, it is owned by whoever created it.
type Ledger struct {
	days map[DayKey]*DayRecord
}

func New() *Ledger {
	return &Ledger{
		days: make(map[DayKey]*DayRecord),
	}
}

func (l *Ledger) record(day DayKey) *DayRecord {
	r, ok := l.days[day]
	if !ok {
		r = &DayRecord{}
		l.days[day] = r
	}
	return r
}

// Record returns a copy of the record for day.
func (l *Ledger) Record(day DayKey) DayRecord {
	r, ok := l.days[day]
	if !ok {
		return DayRecord{}
	}
	return r.clone()
}

// Put replaces the whole record for day.
func (l *Ledger) Put(day DayKey, record DayRecord) {
	r := record.clone()
	l.days[day] = &r
}

// Days returns all days that have a record, in chronological order.
func (l *Ledger) Days() []DayKey {
	return slices.SortedFunc(maps.Keys(l.days), DayKey.Compare)
}

// SetSleep replaces the sleep value of the day. The value is stored as given.
func (l *Ledger) SetSleep(day DayKey, hours float64) {
	l.record(day).Sleep = &hours
}

// AddActivity appends entry to the activities of the day.
func (l *Ledger) AddActivity(day DayKey, entry ActivityEntry) {
	r := l.record(day)
	r.Activities = append(r.Activities, entry)
}

// UpdateActivity replaces the activity at index. Indices are positions in the
// current list and shift after a delete. An index outside of the list returns
// ErrIndexOutOfRange and leaves the ledger unchanged.
func (l *Ledger) UpdateActivity(day DayKey, index int, entry ActivityEntry) error {
	r, ok := l.days[day]
	if !ok || index < 0 || index >= len(r.Activities) {
		return fmt.Errorf("%s[%d]: %w", day, index, ErrIndexOutOfRange)
	}
	r.Activities[index] = entry
	return nil
}

// DeleteActivity removes the activity at index, moving the following ones
// one position down. Same index contract as UpdateActivity.
func (l *Ledger) DeleteActivity(day DayKey, index int) error {
	r, ok := l.days[day]
	if !ok || index < 0 || index >= len(r.Activities) {
		return fmt.Errorf("%s[%d]: %w", day, index, ErrIndexOutOfRange)
	}
	r.Activities = slices.Delete(r.Activities, index, index+1)
	return nil
}

// TotalActivityHours sums durations of all activities of the day. Activities
// crossing midnight are not wrapped: 23:00 to 01:00 counts as -22 hours.
func (l *Ledger) TotalActivityHours(day DayKey) float64 {
	r, ok := l.days[day]
	if !ok {
		return 0
	}
	var total float64
	for _, activity := range r.Activities {
		total += activity.Hours()
	}
	return total
}

func (l *Ledger) SleepQuality(day DayKey) Quality {
	r, ok := l.days[day]
	if !ok {
		return QualityUnrecorded
	}
	return QualityOf(r.SleepHours())
}
