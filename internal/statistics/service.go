package statistics

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/sleeplog/internal/ledger"
)

type Service struct {
	ledgerService *ledger.Service
}

func NewService(
	ledgerService *ledger.Service,
) *Service {
	return &Service{
		ledgerService: ledgerService,
	}
}

func (s *Service) CalculateYearMonth(ctx context.Context, year int, month time.Month) (*Month, error) {
	l, err := s.ledgerService.Month(ctx, year, int(month)-1)
	if err != nil {
		return nil, fmt.Errorf("load month: %w", err)
	}
	return CalculateYearMonth(l, year, month), nil
}

func (s *Service) CalculateYear(ctx context.Context, year int) (*Year, error) {
	l, err := s.ledgerService.Range(ctx,
		ledger.DayKey{Day: 1, Month: 0, Year: year},
		ledger.DayKey{Day: 31, Month: 11, Year: year},
	)
	if err != nil {
		return nil, fmt.Errorf("load year: %w", err)
	}
	return CalculateYear(l, year), nil
}

func day(l *ledger.Ledger, key ledger.DayKey) Day {
	return Day{
		Key:           key,
		Sleep:         l.Record(key).SleepHours(),
		ActivityHours: l.TotalActivityHours(key),
		Quality:       l.SleepQuality(key),
	}
}

// CalculateYearMonth aggregates every day of the month, including days
// without records.
func CalculateYearMonth(l *ledger.Ledger, year int, month time.Month) *Month {
	stats := &Month{
		Year:  year,
		Month: month,
	}
	weekIndex := map[int]int{}
	activities := map[string]*Activity{}
	days := ledger.DaysInMonth(year, int(month)-1)
	for d := 1; d <= days; d++ {
		key := ledger.DayKey{Day: d, Month: int(month) - 1, Year: year}
		_, week := key.Time(time.UTC).ISOWeek()
		if _, ok := weekIndex[week]; !ok {
			weekIndex[week] = len(weekIndex)
			stats.Weeks = append(stats.Weeks, Week{
				Number: week,
			})
		}
		row := day(l, key)
		stats.Days = append(stats.Days, row)
		stats.Summary.add(row)
		stats.Weeks[weekIndex[week]].add(row)
		addActivities(activities, l.Record(key).Activities)
	}
	stats.Activities = sortActivities(activities)
	return stats
}

func CalculateYear(l *ledger.Ledger, year int) *Year {
	stats := &Year{
		Year:   year,
		Months: make([]Summary, 12),
	}
	activities := map[string]*Activity{}
	for _, key := range l.Days() {
		if key.Year != year || key.Month < 0 || key.Month > 11 {
			continue
		}
		row := day(l, key)
		stats.Summary.add(row)
		stats.Months[key.Month].add(row)
		addActivities(activities, l.Record(key).Activities)
	}
	stats.Activities = sortActivities(activities)
	return stats
}

func addActivities(into map[string]*Activity, entries []ledger.ActivityEntry) {
	for _, entry := range entries {
		description := strings.TrimSpace(entry.Description)
		activity, ok := into[description]
		if !ok {
			activity = &Activity{Description: description}
			into[description] = activity
		}
		activity.Count++
		if hours := entry.Hours(); isFinite(hours) {
			activity.Hours += hours
		}
	}
}

func sortActivities(activities map[string]*Activity) []Activity {
	out := make([]Activity, 0, len(activities))
	for _, activity := range activities {
		out = append(out, *activity)
	}
	slices.SortFunc(out, func(a, b Activity) int {
		if c := cmp.Compare(b.Hours, a.Hours); c != 0 {
			return c
		}
		return strings.Compare(a.Description, b.Description)
	})
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
