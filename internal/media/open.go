package media

import (
	"fmt"

	"food-catalog/internal/config"

	"go.uber.org/zap"
)

// UploadsPath is where the server mounts a DiskStore
const UploadsPath = "/uploads"

// Open builds the store selected by cfg.Driver. A disk store builds its URLs
// from cfg.PublicURL, or from the local server address when that is empty.
func Open(cfg config.MediaConfig, serverPort string, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(cfg, logger)
	case "disk":
		baseURL := cfg.PublicURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%s%s", serverPort, UploadsPath)
		}
		return NewDiskStore(cfg.LocalDir, baseURL, DefaultUploadOptions(cfg.Folder, cfg.MaxUploadBytes), logger)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}
