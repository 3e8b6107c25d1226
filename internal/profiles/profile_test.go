package profiles

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Profile{Username: "Ann", Email: "ann@example.com", Height: 170, Weight: 70}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Profile)
		field  string
	}{
		{"missing name", func(p *Profile) { p.Username = "" }, "Username"},
		{"short name", func(p *Profile) { p.Username = "A" }, "Username"},
		{"bad email", func(p *Profile) { p.Email = "ann.example.com" }, "Email"},
		{"short", func(p *Profile) { p.Height = 99 }, "Height"},
		{"tall", func(p *Profile) { p.Height = 251 }, "Height"},
		{"light", func(p *Profile) { p.Weight = 29 }, "Weight"},
		{"heavy", func(p *Profile) { p.Weight = 301 }, "Weight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)
			errs := FieldErrors(p.Validate())
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestService(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	service := NewService(NewStore(db))
	ctx := tokens.NewContext(context.Background(), &tokens.Token{CredentialsID: "id"})

	profile, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultHeight), profile.Height)
	assert.Equal(t, float64(DefaultWeight), profile.Weight)

	_, err = service.SetAvatar(ctx, "id", "/uploads/avatar.png")
	require.NoError(t, err)

	_, err = service.Update(ctx, UpdateInput{Username: "A", Email: "ann@example.com", Height: 170, Weight: 70})
	assert.Error(t, err)

	updated, err := service.Update(ctx, UpdateInput{Username: "Ann", Email: "ann@example.com", Height: 180, Weight: 75})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatar.png", updated.AvatarURL)

	profile, err = service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, *updated, *profile)

	created, err := service.EnsureExists(ctx, "id")
	require.NoError(t, err)
	assert.False(t, created)
	created, err = service.EnsureExists(ctx, "other")
	require.NoError(t, err)
	assert.True(t, created)
}
