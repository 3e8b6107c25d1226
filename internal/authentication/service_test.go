package authentication

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(tokens.NewStore(db), credentials.NewStore(db))
}

func TestRegisterAndLogin(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, "user@example.com", "password")
	require.NoError(t, err)

	loggedIn, err := service.Login(ctx, "User@Example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, registered.CredentialsID, loggedIn.CredentialsID)
	assert.NotEqual(t, registered.ID, loggedIn.ID)

	authenticated, err := service.AuthenticateContext(ctx, loggedIn.ID)
	require.NoError(t, err)
	token, ok := tokens.FromContext(authenticated)
	require.True(t, ok)
	assert.Equal(t, loggedIn.CredentialsID, token.CredentialsID)

	require.NoError(t, service.Logout(ctx, loggedIn.ID))
	_, err = service.AuthenticateContext(ctx, loggedIn.ID)
	assert.ErrorIs(t, err, tokens.ErrNotFound)
}

func TestLoginFailures(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "user@example.com", "password")
	require.NoError(t, err)

	_, err = service.Login(ctx, "user@example.com", "wrong")
	assert.ErrorIs(t, err, credentials.ErrInvalidLoginOrPassword)

	_, err = service.Login(ctx, "nobody@example.com", "password")
	assert.ErrorIs(t, err, credentials.ErrInvalidLoginOrPassword)

	_, err = service.Login(ctx, "", "")
	assert.ErrorIs(t, err, credentials.ErrEmptyLoginOrPassword)

	_, err = service.Register(ctx, "user@example.com", "other")
	assert.True(t, errors.Is(err, credentials.ErrLoginTaken))
}

func TestEnsureAccount(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	first, err := service.EnsureAccount(ctx, "user@example.com", "password")
	require.NoError(t, err)
	second, err := service.EnsureAccount(ctx, "user@example.com", "ignored")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	ctxFor, err := service.ContextFor(ctx, first.ID)
	require.NoError(t, err)
	token, ok := tokens.FromContext(ctxFor)
	require.True(t, ok)
	assert.Equal(t, first.ID, token.CredentialsID)
}
