package ledger

import (
	"context"
	"fmt"

	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/tokens"
)

// Service runs ledger operations against the stored ledger of the session
// owner.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
	}
}

func credentialsID(ctx context.Context) (credentials.ID, error) {
	token, ok := tokens.FromContext(ctx)
	if !ok {
		return "", fmt.Errorf("token missing from context")
	}
	return token.CredentialsID, nil
}

// Month loads all days of the month, month is zero based.
func (s *Service) Month(ctx context.Context, year int, month int) (*Ledger, error) {
	return s.Range(ctx,
		DayKey{Day: 1, Month: month, Year: year},
		DayKey{Day: DaysInMonth(year, month), Month: month, Year: year},
	)
}

func (s *Service) Range(ctx context.Context, from, to DayKey) (*Ledger, error) {
	id, err := credentialsID(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.store.Load(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("load %s..%s: %w", from, to, err)
	}
	return l, nil
}

func (s *Service) All(ctx context.Context) (*Ledger, error) {
	id, err := credentialsID(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.store.LoadAll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load all: %w", err)
	}
	return l, nil
}

func (s *Service) Day(ctx context.Context, day DayKey) (*Ledger, error) {
	return s.Range(ctx, day, day)
}

func (s *Service) apply(ctx context.Context, day DayKey, fn func(*Ledger) error) error {
	id, err := credentialsID(ctx)
	if err != nil {
		return err
	}
	return s.store.Apply(ctx, id, day, fn)
}

func (s *Service) SetSleep(ctx context.Context, day DayKey, hours float64) error {
	return s.apply(ctx, day, func(l *Ledger) error {
		l.SetSleep(day, hours)
		return nil
	})
}

func (s *Service) AddActivity(ctx context.Context, day DayKey, entry ActivityEntry) error {
	return s.apply(ctx, day, func(l *Ledger) error {
		l.AddActivity(day, entry)
		return nil
	})
}

func (s *Service) UpdateActivity(ctx context.Context, day DayKey, index int, entry ActivityEntry) error {
	return s.apply(ctx, day, func(l *Ledger) error {
		return l.UpdateActivity(day, index, entry)
	})
}

func (s *Service) DeleteActivity(ctx context.Context, day DayKey, index int) error {
	return s.apply(ctx, day, func(l *Ledger) error {
		return l.DeleteActivity(day, index)
	})
}
