// Package media stores product images in an external object store.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidFile is returned when an upload is rejected before reaching the store
var ErrInvalidFile = errors.New("invalid image file")

// File is an image received from a client
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult identifies a stored image
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Store is the capability surface of an image host
type Store interface {
	Upload(ctx context.Context, file *File) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// UploadOptions constrains what a store accepts
type UploadOptions struct {
	Folder            string
	MaxSize           int64 // in bytes
	AllowedExtensions []string
}

// DefaultUploadOptions are the limits applied to product images
func DefaultUploadOptions(folder string, maxSize int64) UploadOptions {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024 // 5MB
	}
	return UploadOptions{
		Folder:            folder,
		MaxSize:           maxSize,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp"},
	}
}

// ValidateFile checks content type, extension and size
func (o UploadOptions) ValidateFile(file *File) error {
	if file == nil || file.Body == nil {
		return fmt.Errorf("%w: no file content", ErrInvalidFile)
	}

	if !strings.HasPrefix(file.ContentType, "image/") {
		return fmt.Errorf("%w: only image files are allowed", ErrInvalidFile)
	}

	if o.MaxSize > 0 && file.Size > o.MaxSize {
		return fmt.Errorf("%w: file size %d bytes exceeds maximum allowed size %d bytes", ErrInvalidFile, file.Size, o.MaxSize)
	}

	if len(o.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		allowed := false
		for _, a := range o.AllowedExtensions {
			if ext == a {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: file type %q is not allowed", ErrInvalidFile, ext)
		}
	}

	return nil
}

// objectKey generates a unique key such as Product/20250101_1a2b3c4d.jpg
func objectKey(folder, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%s_%s%s", now.Format("20060102"), uuid.New().String()[:8], ext)

	if folder != "" {
		return path.Join(folder, name)
	}
	return name
}

// readAllLimited reads at most max+1 bytes so oversize bodies are detected even
// when the declared size was wrong
func readAllLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: file exceeds maximum allowed size %d bytes", ErrInvalidFile, max)
	}
	return data, nil
}
