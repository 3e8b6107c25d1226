package avatars

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sleeplog/internal/jobs"
	"github.com/sleeplog/internal/profiles"
	"github.com/sleeplog/internal/tokens"
)

// URLPrefix is where the uploads directory is served from.
const URLPrefix = "/uploads/"

type Service struct {
	dir             string
	profilesService *profiles.Service
	scheduler       *jobs.Scheduler
}

func NewService(
	dir string,
	profilesService *profiles.Service,
	scheduler *jobs.Scheduler,
) *Service {
	return &Service{
		dir:             dir,
		profilesService: profilesService,
		scheduler:       scheduler,
	}
}

// Upload stores the file as the session owner's avatar and schedules a
// thumbnail. It returns the url of the stored original.
func (s *Service) Upload(ctx context.Context, header *multipart.FileHeader) (string, error) {
	token, ok := tokens.FromContext(ctx)
	if !ok {
		return "", fmt.Errorf("token missing from context")
	}
	if header == nil {
		return "", ErrMissingFile
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, err := Validate(header.Filename, header.Header.Get("Content-Type"), header.Size, head[:n])
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	filename := fmt.Sprintf("avatar_%s%s", uuid.NewString(), ext)
	if err := s.write(filename, io.LimitReader(file, MaxSize+1)); err != nil {
		return "", err
	}

	url := URLPrefix + filename
	if _, err := s.profilesService.SetAvatar(ctx, token.CredentialsID, url); err != nil {
		return "", fmt.Errorf("set avatar: %w", err)
	}

	if err := s.scheduler.Schedule(ctx, jobs.NewResizeAvatarJob(token.CredentialsID, filename)); err != nil {
		return "", fmt.Errorf("schedule resize: %w", err)
	}
	return url, nil
}

func (s *Service) write(filename string, r io.Reader) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	path := filepath.Join(s.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > MaxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func thumbnailName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + "_thumb.png"
}
