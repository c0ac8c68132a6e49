// Package blob stores uploaded file content addressed by generated ids.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"yojeong/internal/domain"
)

// MaxFileSize is the upload ceiling (100 KiB).
const MaxFileSize int64 = 100 * 1024

var ErrNotFound = errors.New("blob not found")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
}

// Object describes a stored blob.
type Object struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
}

type Store interface {
	Put(ctx context.Context, obj Object, body io.Reader) error
	Get(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

// Entry is a stored blob as seen by a listing.
type Entry struct {
	ID      string
	ModTime time.Time
}

// Lister is implemented by stores that can enumerate their blobs.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
}

func NewID() string {
	return uuid.New().String()
}

// ValidateFile checks the extension allow-list first, then the size ceiling.
func ValidateFile(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return domain.NewValidationError("INVALID_FILE_FORMAT",
			"Invalid file type. Allowed types: jpg, jpeg, png, gif, pdf.")
	}
	if size > MaxFileSize {
		return domain.NewValidationError("FILE_TOO_LARGE",
			fmt.Sprintf("File is too large. Maximum size is %d KB.", MaxFileSize/1024))
	}
	if size <= 0 {
		return domain.NewValidationError("EMPTY_FILE", "The uploaded file is empty.")
	}
	return nil
}

// ContentTypeFor guesses a content type from the file name.
func ContentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeName strips directories and characters that do not belong in a
// download file name.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}

// readLimited reads at most MaxFileSize bytes and fails if the body is longer.
func readLimited(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, domain.NewValidationError("FILE_TOO_LARGE",
			fmt.Sprintf("File is too large. Maximum size is %d KB.", MaxFileSize/1024))
	}
	return data, nil
}
