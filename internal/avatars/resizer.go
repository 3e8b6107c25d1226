package avatars

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/jobs"
	"github.com/sleeplog/internal/profiles"
	_ "golang.org/x/image/webp"
)

// ThumbnailSize is the edge of the square avatar thumbnail in pixels.
const ThumbnailSize = 256

// Resizer renders avatar thumbnails for the job scheduler.
type Resizer struct {
	dir             string
	profilesService *profiles.Service
}

func NewResizer(dir string, profilesService *profiles.Service) *Resizer {
	return &Resizer{
		dir:             dir,
		profilesService: profilesService,
	}
}

// ResizeAvatar writes a square thumbnail next to filename and points the
// profile at it, unless the profile has moved on to another avatar.
func (r *Resizer) ResizeAvatar(ctx context.Context, credentialsID credentials.ID, filename string) error {
	img, err := imaging.Open(filepath.Join(r.dir, filename), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}
	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)
	thumbName := thumbnailName(filename)
	if err := imaging.Save(thumb, filepath.Join(r.dir, thumbName)); err != nil {
		return fmt.Errorf("save %s: %w", thumbName, err)
	}

	if err := r.profilesService.ReplaceAvatar(ctx, credentialsID, URLPrefix+filename, URLPrefix+thumbName); err != nil {
		return fmt.Errorf("replace avatar: %w", err)
	}
	return nil
}

// RemoveOriginal deletes the uploaded file of a finished resize job. The
// profile points at the thumbnail or at a newer upload by then.
func (r *Resizer) RemoveOriginal(job *jobs.Job) error {
	if job.ResizeAvatar == nil {
		return nil
	}
	err := os.Remove(filepath.Join(r.dir, job.ResizeAvatar.Filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
