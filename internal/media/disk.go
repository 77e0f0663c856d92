package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DiskStore keeps images on the local filesystem. It is the development
// fallback when no object store credentials are configured.
type DiskStore struct {
	root    string
	baseURL string
	options UploadOptions
	logger  *zap.Logger
	now     func() time.Time
}

// NewDiskStore stores files below root and builds URLs from baseURL
// (for example http://localhost:5000/uploads)
func NewDiskStore(root, baseURL string, options UploadOptions, logger *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		options: options,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Upload writes the file below the configured folder
func (s *DiskStore) Upload(ctx context.Context, file *File) (*UploadResult, error) {
	if err := s.options.ValidateFile(file); err != nil {
		return nil, err
	}

	data, err := readAllLimited(file.Body, s.options.MaxSize)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(s.options.Folder, file.Filename, s.now())
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Stored image on disk", zap.String("key", key), zap.String("path", path))

	return &UploadResult{URL: s.baseURL + "/" + key, Key: key}, nil
}

// Delete removes the file stored under key. Missing files are not an error.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Handler serves stored files; mount it with http.StripPrefix
func (s *DiskStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.root))
}

// path resolves key inside root and refuses keys escaping it
func (s *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
