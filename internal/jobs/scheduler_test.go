package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sleeplog/internal/credentials"
)

type fakeResizer struct {
	failures int
	calls    []string
}

func (f *fakeResizer) ResizeAvatar(_ context.Context, _ credentials.ID, filename string) error {
	f.calls = append(f.calls, filename)
	if len(f.calls) <= f.failures {
		return errors.New("broken image")
	}
	return nil
}

func newTestScheduler(t *testing.T, resizer AvatarResizer) (*Scheduler, *Store) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	store := NewStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(logger, store, resizer), store
}

func TestRunJobSucceeds(t *testing.T) {
	resizer := &fakeResizer{}
	scheduler, store := newTestScheduler(t, resizer)
	ctx := context.Background()

	job := NewResizeAvatarJob("id", "avatar.png")
	if err := scheduler.Schedule(ctx, job); err != nil {
		t.Fatal(err)
	}

	pending, err := scheduler.PendingAvatars(ctx, "id")
	if err != nil {
		t.Fatal(err)
	}
	if !pending {
		t.Fatal("expected pending avatar")
	}

	succeeded := 0
	scheduler.OnJobSucceeded(func(context.Context, *Job) { succeeded++ })
	scheduler.runDue(ctx, job.Time.Add(time.Second))

	if succeeded != 1 {
		t.Fatalf("expected 1 success callback, got %d", succeeded)
	}
	stored, err := store.FindByID(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusSucceded {
		t.Fatalf("expected status %d, got %d", StatusSucceded, stored.Status)
	}
	if len(scheduler.jobs) != 0 {
		t.Fatal("finished job must be unscheduled")
	}
	pending, err = scheduler.PendingAvatars(ctx, "id")
	if err != nil {
		t.Fatal(err)
	}
	if pending {
		t.Fatal("expected no pending avatars")
	}
}

func TestRunJobRetries(t *testing.T) {
	resizer := &fakeResizer{failures: MaxAttempts}
	scheduler, store := newTestScheduler(t, resizer)
	ctx := context.Background()

	job := NewResizeAvatarJob("id", "avatar.png")
	if err := scheduler.Schedule(ctx, job); err != nil {
		t.Fatal(err)
	}

	succeeded := 0
	scheduler.OnJobSucceeded(func(context.Context, *Job) { succeeded++ })

	previous := job.Time
	for i := 0; i < MaxAttempts; i++ {
		scheduler.runDue(ctx, job.Time.Add(time.Millisecond))
		if i < MaxAttempts-1 && !job.Time.After(previous) {
			t.Fatalf("attempt %d: retry time must move forward", i)
		}
		previous = job.Time
	}

	if len(resizer.calls) != MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", MaxAttempts, len(resizer.calls))
	}
	if succeeded != 0 {
		t.Fatalf("failed job must not report success, got %d", succeeded)
	}
	stored, err := store.FindByID(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusFailing || len(stored.Attempts) != MaxAttempts {
		t.Fatalf("unexpected job state: %+v", stored)
	}
	if len(scheduler.jobs) != 0 {
		t.Fatal("exhausted job must be unscheduled")
	}
}

func TestNextRetry(t *testing.T) {
	job := &Job{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	job.Attempts = []time.Time{job.Time}
	next := nextRetry(job)
	if next == nil || !next.Equal(job.Time.Add(400*time.Millisecond)) {
		t.Fatalf("unexpected next retry: %v", next)
	}

	job.Attempts = make([]time.Time, MaxAttempts)
	if nextRetry(job) != nil {
		t.Fatal("expected no retry after max attempts")
	}
}
