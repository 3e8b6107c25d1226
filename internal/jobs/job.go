package jobs

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sleeplog/internal/credentials"
)

type ID string

func NewID() ID {
	return ID(gonanoid.Must())
}

type Status uint

const (
	StatusUndefined Status = iota
	StatusPending
	StatusRunning
	StatusSucceded
	StatusFailing
)

// MaxAttempts is how many times a job is tried before it is given up.
const MaxAttempts = 5

type Job struct {
	ID       ID          `json:"id"`
	Time     time.Time   `json:"time"`
	Status   Status      `json:"status"`
	Attempts []time.Time `json:"attempts"`
	Errors   []string    `json:"errors"`

	ResizeAvatar *ResizeAvatarJob `json:"resize_avatar,omitempty"`
}

type ResizeAvatarJob struct {
	CredentialsID credentials.ID `json:"credentials_id"`
	Filename      string         `json:"filename"`
}

// CredentialsID returns the account the job works for.
func (j Job) CredentialsID() credentials.ID {
	if j.ResizeAvatar != nil {
		return j.ResizeAvatar.CredentialsID
	}
	return ""
}

// AvatarResizer renders thumbnails for ResizeAvatar jobs.
type AvatarResizer interface {
	ResizeAvatar(ctx context.Context, credentialsID credentials.ID, filename string) error
}

func (j Job) Do(ctx context.Context, s *Scheduler) error {
	if j.ResizeAvatar != nil {
		if err := s.avatarResizer.ResizeAvatar(ctx, j.ResizeAvatar.CredentialsID, j.ResizeAvatar.Filename); err != nil {
			return fmt.Errorf("resize avatar: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported job type")
}

func NewResizeAvatarJob(credentialsID credentials.ID, filename string) *Job {
	return &Job{
		ID:     NewID(),
		Status: StatusPending,
		Time:   time.Now(),
		ResizeAvatar: &ResizeAvatarJob{
			CredentialsID: credentialsID,
			Filename:      filename,
		},
	}
}
