package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/sleeplog/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	service := NewService(NewStore(openTestDB(t)))
	ctx := tokens.NewContext(context.Background(), &tokens.Token{CredentialsID: "alice"})
	day := DayKey{Day: 29, Month: 1, Year: 2024}

	require.NoError(t, service.SetSleep(ctx, day, 6))
	require.NoError(t, service.AddActivity(ctx, day, ActivityEntry{Start: "09:00", End: "10:30", Description: "run"}))
	require.NoError(t, service.AddActivity(ctx, day, ActivityEntry{Start: "23:00", End: "01:00", Description: "night shift"}))
	require.NoError(t, service.UpdateActivity(ctx, day, 0, ActivityEntry{Start: "09:00", End: "11:00", Description: "run"}))
	assert.ErrorIs(t, service.DeleteActivity(ctx, day, 5), ErrIndexOutOfRange)

	month, err := service.Month(ctx, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, QualityFair, month.SleepQuality(day))
	assert.Equal(t, -20.0, month.TotalActivityHours(day))

	require.NoError(t, service.DeleteActivity(ctx, day, 1))
	l, err := service.Day(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2.0, l.TotalActivityHours(day))

	other := tokens.NewContext(context.Background(), &tokens.Token{CredentialsID: "bob"})
	all, err := service.All(other)
	require.NoError(t, err)
	assert.Empty(t, all.Days())

	_, err = service.All(context.Background())
	assert.Error(t, err)
}

func TestServiceSetSleepNonFinite(t *testing.T) {
	service := NewService(NewStore(openTestDB(t)))
	ctx := tokens.NewContext(context.Background(), &tokens.Token{CredentialsID: "alice"})
	day := DayKey{Day: 1, Month: 5, Year: 2025}

	for _, hours := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3} {
		require.NoError(t, service.SetSleep(ctx, day, hours), "hours=%v", hours)

		l, err := service.Day(ctx, day)
		require.NoError(t, err)
		sleep := l.Record(day).Sleep
		require.NotNil(t, sleep)
		if math.IsNaN(hours) {
			assert.True(t, math.IsNaN(*sleep))
		} else {
			assert.Equal(t, hours, *sleep)
		}
	}
}
