package calendars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sleeplog/internal/authentication"
	"github.com/sleeplog/internal/ledger"
	"github.com/sleeplog/internal/tokens"
)

type Service struct {
	store                 *Store
	authenticationService *authentication.Service
	ledgerService         *ledger.Service
	location              *time.Location
}

func NewService(
	store *Store,
	authenticationService *authentication.Service,
	ledgerService *ledger.Service,
	location *time.Location,
) *Service {
	return &Service{
		store:                 store,
		authenticationService: authenticationService,
		ledgerService:         ledgerService,
		location:              location,
	}
}

// CreateCalendar returns the feed of the session owner, creating it on first
// use.
func (s *Service) CreateCalendar(ctx context.Context) (*Calendar, error) {
	token, ok := tokens.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("token missing from context")
	}
	cal, err := s.store.FindByCredentialsID(ctx, token.CredentialsID)
	if err == nil {
		return cal, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find by credentials id: %w", err)
	}
	cal = &Calendar{
		ID:            gonanoid.Must(),
		CredentialsID: token.CredentialsID,
	}
	if err := s.store.InsertCalendar(ctx, cal); err != nil {
		return nil, fmt.Errorf("insert calendar: %w", err)
	}
	return cal, nil
}

func (s *Service) WriteICal(ctx context.Context, w io.Writer, id string) error {
	cal, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find by id %q: %w", id, err)
	}
	ctx, err = s.authenticationService.ContextFor(ctx, cal.CredentialsID)
	if err != nil {
		return fmt.Errorf("authenticate context: %w", err)
	}
	l, err := s.ledgerService.All(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	return s.render(l).SerializeTo(w)
}

func (s *Service) render(l *ledger.Ledger) *ics.Calendar {
	icalendar := ics.NewCalendar()
	icalendar.SetName("Sleeplog")
	icalendar.SetProductId("-//sleeplog//EN")
	for _, day := range l.Days() {
		record := l.Record(day)
		midnight := day.Time(s.location)

		if quality := l.SleepQuality(day); quality != ledger.QualityUnrecorded {
			event := icalendar.AddEvent(fmt.Sprintf("%s-sleep@sleeplog", day))
			event.SetSummary(fmt.Sprintf("Sleep: %sh (%s)", formatHours(record.SleepHours()), quality))
			event.SetAllDayStartAt(midnight)
			event.SetAllDayEndAt(midnight.AddDate(0, 0, 1))
		}

		for i, activity := range record.Activities {
			start, end, ok := activitySpan(midnight, activity)
			if !ok {
				continue
			}
			event := icalendar.AddEvent(fmt.Sprintf("%s-%d@sleeplog", day, i))
			event.SetSummary(activity.Description)
			event.SetStartAt(start)
			event.SetEndAt(end)
		}
	}
	return icalendar
}

// activitySpan places the activity on the day. An end before the start is
// read as the next day, the feed needs positive durations.
func activitySpan(midnight time.Time, activity ledger.ActivityEntry) (time.Time, time.Time, bool) {
	start, err := ledger.ParseClock(activity.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := ledger.ParseClock(activity.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	startAt := wallClock(midnight, start)
	endAt := wallClock(midnight, end)
	if endAt.Before(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, true
}

// wallClock returns clock on the day of midnight, so the hour is kept across
// DST changes.
func wallClock(midnight, clock time.Time) time.Time {
	return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), clock.Hour(), clock.Minute(), 0, 0, midnight.Location())
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
