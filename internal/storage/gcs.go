package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig configures the Cloud Storage publisher.
type GCSConfig struct {
	Bucket string
	// PublicBaseURL overrides the https://storage.googleapis.com/<bucket> prefix, e.g. for a CDN.
	PublicBaseURL string
	// CredentialsJSON or CredentialsFile select explicit credentials; both empty uses ADC.
	CredentialsJSON string
	CredentialsFile string
	UploadTimeout   time.Duration
}

// GCSPublisher stores decks in a Cloud Storage bucket.
type GCSPublisher struct {
	client  *storage.Client
	bucket  string
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// ClientOptions converts credential settings into client options.
func (c GCSConfig) ClientOptions() []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	switch {
	case strings.TrimSpace(c.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(c.CredentialsJSON)))
	case strings.TrimSpace(c.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	return opts
}

// NewGCSPublisher builds a storage client for cfg. Extra options are appended,
// which lets tests point the client at an emulator.
func NewGCSPublisher(ctx context.Context, cfg GCSConfig, logger *slog.Logger, extra ...option.ClientOption) (*GCSPublisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs publisher: bucket is required")
	}
	client, err := storage.NewClient(ctx, append(cfg.ClientOptions(), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return NewGCSPublisherWithClient(client, cfg, logger), nil
}

// NewGCSPublisherWithClient wraps an existing client.
func NewGCSPublisherWithClient(client *storage.Client, cfg GCSConfig, logger *slog.Logger) *GCSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &GCSPublisher{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: base,
		timeout: timeout,
		logger:  logger.With("component", "gcs_publisher"),
	}
}

// Publish uploads the file at localPath and returns its public URL.
func (p *GCSPublisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	w := p.client.Bucket(p.bucket).Object(key).NewWriter(ctx)
	w.ContentType = ContentTypePPTX
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %q: %w", key, err)
	}
	url := joinURL(p.baseURL, key)
	p.logger.InfoContext(ctx, "document published", "bucket", p.bucket, "key", key)
	return url, nil
}

// Open streams the object stored under key.
func (p *GCSPublisher) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := p.client.Bucket(p.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open object %q: %w", key, err)
	}
	return r, nil
}

// Delete removes key. Missing objects are ignored.
func (p *GCSPublisher) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := p.client.Bucket(p.bucket).Object(key).Delete(ctx)
	if err == nil || errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return fmt.Errorf("delete object %q: %w", key, err)
}

// Close releases the underlying client.
func (p *GCSPublisher) Close() error { return p.client.Close() }
