package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StorageBackend selects where finished decks are published.
type StorageBackend string

const (
	StorageBackendGCS   StorageBackend = "gcs"
	StorageBackendLocal StorageBackend = "local"
)

// StorageConfig configures the publisher.
type StorageConfig struct {
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"gcs"`
	// KeyPrefix is prepended to every object key.
	KeyPrefix string `env:"STORAGE_KEY_PREFIX" envDefault:"presentations"`

	Bucket          string        `env:"GCS_BUCKET"`
	PublicBaseURL   string        `env:"GCS_PUBLIC_BASE_URL"`
	CredentialsJSON string        `env:"GCS_CREDENTIALS_JSON"`
	CredentialsFile string        `env:"GCS_CREDENTIALS_FILE"`
	UploadTimeout   time.Duration `env:"GCS_UPLOAD_TIMEOUT" envDefault:"2m"`

	LocalDir     string `env:"LOCAL_STORAGE_DIR"      envDefault:"./data/presentations"`
	// LocalBaseURL prefixes returned URLs; empty yields file:// URLs.
	LocalBaseURL string `env:"LOCAL_STORAGE_BASE_URL"`

	// TempDir holds decks between assembly and upload; empty means os.TempDir.
	TempDir string `env:"DECK_TEMP_DIR"`
}

// Sanitize normalises storage settings. Development mode without a bucket falls back to local files.
func (c *StorageConfig) Sanitize(isDev bool) {
	c.Backend = StorageBackend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	c.KeyPrefix = strings.Trim(strings.TrimSpace(c.KeyPrefix), "/")
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = 2 * time.Minute
	}
	if isDev && c.Backend == StorageBackendGCS && c.Bucket == "" {
		c.Backend = StorageBackendLocal
	}
}

// Validate reports missing settings for the selected backend.
func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case StorageBackendGCS:
		if c.Bucket == "" {
			return errors.New("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
	case StorageBackendLocal:
		if strings.TrimSpace(c.LocalDir) == "" {
			return errors.New("LOCAL_STORAGE_DIR is required when STORAGE_BACKEND=local")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q (valid options: gcs, local)", c.Backend)
	}
	return nil
}
