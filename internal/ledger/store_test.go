package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreApplyAndLoad(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	march := DayKey{Day: 14, Month: 2, Year: 2025}
	april := DayKey{Day: 1, Month: 3, Year: 2025}

	require.NoError(t, store.Apply(ctx, "alice", march, func(l *Ledger) error {
		l.SetSleep(march, 7.5)
		l.AddActivity(march, ActivityEntry{Start: "09:00", End: "10:30", Description: "run"})
		return nil
	}))
	require.NoError(t, store.Apply(ctx, "alice", april, func(l *Ledger) error {
		l.SetSleep(april, 4)
		return nil
	}))
	require.NoError(t, store.Apply(ctx, "bob", march, func(l *Ledger) error {
		l.SetSleep(march, 3)
		return nil
	}))

	l, err := store.Load(ctx, "alice", DayKey{Day: 1, Month: 2, Year: 2025}, DayKey{Day: 31, Month: 2, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, []DayKey{march}, l.Days())
	assert.Equal(t, 1.5, l.TotalActivityHours(march))
	assert.Equal(t, QualityGood, l.SleepQuality(march))

	all, err := store.LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all.Days(), 2)
}

func TestStoreApplyRemovesEmptyRecords(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()
	day := DayKey{Day: 2, Month: 0, Year: 2025}

	require.NoError(t, store.Apply(ctx, "alice", day, func(l *Ledger) error {
		l.AddActivity(day, ActivityEntry{Start: "09:00", End: "10:00"})
		return nil
	}))
	require.NoError(t, store.Apply(ctx, "alice", day, func(l *Ledger) error {
		return l.DeleteActivity(day, 0)
	}))

	l, err := store.LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, l.Days())
}

func TestStoreApplyError(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()
	day := DayKey{Day: 2, Month: 0, Year: 2025}

	err := store.Apply(ctx, "alice", day, func(l *Ledger) error {
		l.SetSleep(day, 8)
		return l.DeleteActivity(day, 3)
	})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	l, err := store.LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, l.Days(), "failed apply must not write")
}

func TestStoreNonFiniteSleep(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	values := map[DayKey]float64{
		{Day: 1, Month: 0, Year: 2025}: math.NaN(),
		{Day: 2, Month: 0, Year: 2025}: math.Inf(1),
		{Day: 3, Month: 0, Year: 2025}: math.Inf(-1),
		{Day: 4, Month: 0, Year: 2025}: -3,
		{Day: 5, Month: 0, Year: 2025}: 1e300,
	}
	for day, hours := range values {
		require.NoError(t, store.Apply(ctx, "alice", day, func(l *Ledger) error {
			l.SetSleep(day, hours)
			return nil
		}), "hours=%v", hours)
	}

	l, err := store.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, l.Days(), len(values))
	assert.Equal(t, QualityUnrecorded, l.SleepQuality(DayKey{Day: 1, Month: 0, Year: 2025}))
	assert.Equal(t, QualityGood, l.SleepQuality(DayKey{Day: 2, Month: 0, Year: 2025}))
	assert.Equal(t, QualityUnrecorded, l.SleepQuality(DayKey{Day: 3, Month: 0, Year: 2025}))
	for day, hours := range values {
		got := l.Record(day).Sleep
		require.NotNil(t, got, day.String())
		if math.IsNaN(hours) {
			assert.True(t, math.IsNaN(*got), day.String())
		} else {
			assert.Equal(t, hours, *got, day.String())
		}
	}
}
