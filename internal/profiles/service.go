package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/tokens"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
	}
}

// Get returns the profile of the session owner, or a default one if it was
// never saved.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	token, ok := tokens.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("token missing from context")
	}
	profile, err := s.store.FindByCredentialsID(ctx, token.CredentialsID)
	if errors.Is(err, ErrNotFound) {
		return Default(token.CredentialsID), nil
	} else if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return profile, nil
}

type UpdateInput struct {
	Username string
	Email    string
	Height   float64
	Weight   float64
}

// Update validates and saves the editable fields. The avatar is kept.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Profile, error) {
	token, ok := tokens.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("token missing from context")
	}
	return s.store.Update(ctx, token.CredentialsID, func(p *Profile) error {
		p.Username = input.Username
		p.Email = input.Email
		p.Height = input.Height
		p.Weight = input.Weight
		return p.Validate()
	})
}

func (s *Service) SetAvatar(ctx context.Context, credentialsID credentials.ID, url string) (*Profile, error) {
	return s.store.Update(ctx, credentialsID, func(p *Profile) error {
		p.AvatarURL = url
		return nil
	})
}

// ReplaceAvatar sets the avatar to url only while it still points to previous.
func (s *Service) ReplaceAvatar(ctx context.Context, credentialsID credentials.ID, previous, url string) error {
	_, err := s.store.Update(ctx, credentialsID, func(p *Profile) error {
		if p.AvatarURL == previous {
			p.AvatarURL = url
		}
		return nil
	})
	return err
}

// EnsureExists stores a default profile for accounts that have none.
func (s *Service) EnsureExists(ctx context.Context, credentialsID credentials.ID) (bool, error) {
	_, err := s.store.FindByCredentialsID(ctx, credentialsID)
	if err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("find profile: %w", err)
	}
	if err := s.store.Insert(ctx, Default(credentialsID)); err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	return true, nil
}
