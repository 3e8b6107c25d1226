package avatars

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

var (
	ErrMissingFile = errors.New("no file uploaded")
	ErrNotAnImage  = errors.New("please upload an image file")
	ErrTooLarge    = errors.New("file is too large, maximum size is 5MB")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// Validate checks the declared content type, the extension and the first
// bytes of the file. It returns the normalized extension.
func Validate(filename, contentType string, size int64, head []byte) (string, error) {
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}
	if size > MaxSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrNotAnImage
	}
	if !allowedMime[http.DetectContentType(head)] {
		return "", ErrNotAnImage
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext, nil
}
