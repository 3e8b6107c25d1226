package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sleeplog/internal/credentials"
)

type Scheduler struct {
	logger        *slog.Logger
	store         *Store
	avatarResizer AvatarResizer

	jobsGuard sync.RWMutex
	jobs      map[ID]*Job

	jobSucceededCallbacks []func(context.Context, *Job)
}

func NewScheduler(
	logger *slog.Logger,
	store *Store,
	avatarResizer AvatarResizer,
) *Scheduler {
	return &Scheduler{
		logger:        logger,
		store:         store,
		avatarResizer: avatarResizer,
		jobs:          make(map[ID]*Job),
	}
}

func (s *Scheduler) OnJobSucceeded(cb func(context.Context, *Job)) {
	s.jobSucceededCallbacks = append(s.jobSucceededCallbacks, cb)
}

// succeeded jobs are kept for a week
const pruneAfter = 7 * 24 * time.Hour

// Init will load all unfinished jobs from database into memory, and start
// running them once they are due.
func (s *Scheduler) Init(ctx context.Context) error {
	pruned, err := s.store.Prune(ctx, time.Now().Add(-pruneAfter))
	if err != nil {
		return fmt.Errorf("prune jobs: %w", err)
	}
	if pruned > 0 {
		s.logger.InfoContext(ctx, "pruned jobs", "count", pruned)
	}

	jobs, err := s.store.ListJobs(ctx, ByStatus(StatusPending, StatusFailing, StatusRunning))
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if len(job.Attempts) >= MaxAttempts {
			continue
		}
		s.setupTimerForJob(ctx, job)
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.runDue(ctx, now)
			}
		}
	}()

	return nil
}

func (s *Scheduler) runDue(ctx context.Context, now time.Time) {
	jobsToRun := []*Job{}
	s.jobsGuard.RLock()
	for _, job := range s.jobs {
		if now.After(job.Time) {
			jobsToRun = append(jobsToRun, job)
		}
	}
	s.jobsGuard.RUnlock()

	for _, job := range jobsToRun {
		s.logger.InfoContext(ctx, "starting job", "job_id", job.ID, "attempt", len(job.Attempts))
		if err := s.runJob(ctx, job); err != nil {
			s.logger.WarnContext(ctx, "job failed", "job_id", job.ID, "attempt", len(job.Attempts), "error", err)
		} else {
			for _, cb := range s.jobSucceededCallbacks {
				cb(ctx, job)
			}
		}
	}
}

func (s *Scheduler) Schedule(ctx context.Context, job *Job) error {
	if err := s.store.InsertJob(ctx, job); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	s.setupTimerForJob(ctx, job)
	return nil
}

// PendingAvatars reports whether the account has thumbnails waiting to be
// rendered.
func (s *Scheduler) PendingAvatars(ctx context.Context, credentialsID credentials.ID) (bool, error) {
	jobs, err := s.store.ListByCredentialsID(ctx, credentialsID,
		func(job *Job) bool { return job.ResizeAvatar != nil },
		ByStatus(StatusPending, StatusRunning, StatusFailing),
	)
	if err != nil {
		return false, err
	}
	for _, job := range jobs {
		if len(job.Attempts) < MaxAttempts {
			return true, nil
		}
	}
	return false, nil
}

func (s *Scheduler) deleteTimer(ctx context.Context, job *Job) {
	s.jobsGuard.Lock()
	delete(s.jobs, job.ID)
	s.jobsGuard.Unlock()
	s.logger.InfoContext(ctx, "unscheduled job", "job_id", job.ID)
}

func (s *Scheduler) setupTimerForJob(ctx context.Context, job *Job) {
	s.jobsGuard.Lock()
	s.jobs[job.ID] = job
	s.jobsGuard.Unlock()
	s.logger.InfoContext(ctx, "scheduled job", "job_id", job.ID)
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	job.Status = StatusRunning
	job.Attempts = append(job.Attempts, time.Now())

	if err := s.store.InsertJob(ctx, job); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	jobError := job.Do(ctx, s)
	if jobError != nil {
		job.Errors = append(job.Errors, jobError.Error())
		job.Status = StatusFailing
		if next := nextRetry(job); next != nil {
			job.Time = *next
		} else {
			s.deleteTimer(ctx, job)
		}
	} else {
		job.Status = StatusSucceded
		job.Errors = append(job.Errors, "")
		s.deleteTimer(ctx, job)
	}

	if err := s.store.InsertJob(ctx, job); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	return jobError
}

func nextRetry(job *Job) *time.Time {
	if len(job.Attempts) >= MaxAttempts {
		return nil
	}
	next := job.Time.Add(100 * time.Millisecond * 2 << len(job.Attempts))
	return &next
}
