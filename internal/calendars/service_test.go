package calendars

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/authentication"
	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/ledger"
	"github.com/sleeplog/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteICal(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	authenticationService := authentication.NewService(tokens.NewStore(db), credentials.NewStore(db))
	ledgerService := ledger.NewService(ledger.NewStore(db))
	service := NewService(NewStore(db), authenticationService, ledgerService, time.UTC)

	ctx := context.Background()
	token, err := authenticationService.Register(ctx, "user@example.com", "password")
	require.NoError(t, err)
	ctx = tokens.NewContext(ctx, token)

	day := ledger.DayKey{Day: 14, Month: 2, Year: 2025}
	require.NoError(t, ledgerService.SetSleep(ctx, day, 7.5))
	require.NoError(t, ledgerService.AddActivity(ctx, day, ledger.ActivityEntry{Start: "09:00", End: "10:30", Description: "run"}))
	require.NoError(t, ledgerService.AddActivity(ctx, day, ledger.ActivityEntry{Start: "23:00", End: "01:00", Description: "night shift"}))
	require.NoError(t, ledgerService.AddActivity(ctx, day, ledger.ActivityEntry{Start: "bad", End: "01:00", Description: "skipped"}))

	cal, err := service.CreateCalendar(ctx)
	require.NoError(t, err)
	again, err := service.CreateCalendar(ctx)
	require.NoError(t, err)
	assert.Equal(t, cal.ID, again.ID)

	var buf bytes.Buffer
	require.NoError(t, service.WriteICal(context.Background(), &buf, cal.ID))
	out := buf.String()

	assert.Contains(t, out, "SUMMARY:Sleep: 7.5h (good)")
	assert.Contains(t, out, "SUMMARY:run")
	assert.Contains(t, out, "DTSTART:20250314T090000Z")
	assert.Contains(t, out, "DTEND:20250315T010000Z")
	assert.NotContains(t, out, "skipped")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))

	err = service.WriteICal(context.Background(), &buf, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivitySpanKeepsWallClockAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// clocks go forward at 02:00 on 2025-03-30
	midnight := ledger.DayKey{Day: 30, Month: 2, Year: 2025}.Time(berlin)

	start, end, ok := activitySpan(midnight, ledger.ActivityEntry{Start: "09:00", End: "10:00"})
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 30, 9, 0, 0, 0, berlin), start)
	assert.Equal(t, time.Date(2025, time.March, 30, 10, 0, 0, 0, berlin), end)
	assert.Equal(t, time.Hour, end.Sub(start))

	start, end, ok = activitySpan(midnight, ledger.ActivityEntry{Start: "23:00", End: "01:00"})
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.March, 30, 23, 0, 0, 0, berlin), start)
	assert.Equal(t, time.Date(2025, time.March, 31, 1, 0, 0, 0, berlin), end)
}
