package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/tokens"
)

type Service struct {
	tokensStore      *tokens.Store
	credentialsStore *credentials.Store
	now              func() time.Time
}

func NewService(
	tokensStore *tokens.Store,
	credentialsStore *credentials.Store,
) *Service {
	return &Service{
		tokensStore:      tokensStore,
		credentialsStore: credentialsStore,
		now:              time.Now,
	}
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, login, password string) (*tokens.Token, error) {
	creds, err := credentials.New(login, password)
	if err != nil {
		return nil, err
	}
	if err := s.credentialsStore.Insert(ctx, creds); err != nil {
		return nil, fmt.Errorf("insert credentials: %w", err)
	}
	return s.openSession(ctx, creds.ID)
}

// Login checks the password and opens a new session.
func (s *Service) Login(ctx context.Context, login, password string) (*tokens.Token, error) {
	if login == "" || password == "" {
		return nil, credentials.ErrEmptyLoginOrPassword
	}
	creds, err := s.credentialsStore.FindByLogin(ctx, login)
	if errors.Is(err, credentials.ErrNotFound) {
		return nil, credentials.ErrInvalidLoginOrPassword
	} else if err != nil {
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	if err := creds.CheckPassword(password); err != nil {
		return nil, err
	}
	return s.openSession(ctx, creds.ID)
}

func (s *Service) Logout(ctx context.Context, tokenID tokens.ID) error {
	if err := s.tokensStore.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// EnsureAccount creates the account unless the login already exists.
func (s *Service) EnsureAccount(ctx context.Context, login, password string) (*credentials.Credentials, error) {
	creds, err := s.credentialsStore.FindByLogin(ctx, login)
	if err == nil {
		return creds, nil
	} else if !errors.Is(err, credentials.ErrNotFound) {
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	creds, err = credentials.New(login, password)
	if err != nil {
		return nil, err
	}
	if err := s.credentialsStore.Insert(ctx, creds); err != nil {
		return nil, fmt.Errorf("insert credentials: %w", err)
	}
	return creds, nil
}

// AuthenticateContext returns ctx with the session token attached.
func (s *Service) AuthenticateContext(ctx context.Context, tokenID tokens.ID) (context.Context, error) {
	token, err := s.tokensStore.FindByID(ctx, tokenID)
	if err != nil {
		return ctx, fmt.Errorf("find token: %w", err)
	}
	if _, err := s.credentialsStore.FindByID(ctx, token.CredentialsID); err != nil {
		return ctx, fmt.Errorf("find credentials %q: %w", token.CredentialsID, err)
	}
	return tokens.NewContext(ctx, token), nil
}

// ContextFor returns ctx acting as the account, used for requests that carry
// no session such as calendar feeds.
func (s *Service) ContextFor(ctx context.Context, credentialsID credentials.ID) (context.Context, error) {
	if _, err := s.credentialsStore.FindByID(ctx, credentialsID); err != nil {
		return ctx, fmt.Errorf("find credentials %q: %w", credentialsID, err)
	}
	return tokens.NewContext(ctx, &tokens.Token{
		CredentialsID: credentialsID,
		Expires:       s.now().Add(time.Minute),
	}), nil
}

func (s *Service) openSession(ctx context.Context, credentialsID credentials.ID) (*tokens.Token, error) {
	token := tokens.New(credentialsID, s.now())
	if err := s.tokensStore.Insert(ctx, token); err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return token, nil
}
