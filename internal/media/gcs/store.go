package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Rrens/talent-chat/internal/config"
	"google.golang.org/api/option"
)

// Store keeps blobs in a Google Cloud Storage bucket
type Store struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// New creates a storage client for the configured bucket
func New(ctx context.Context, cfg config.GCSConfig, baseURL string, opts ...option.ClientOption) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media.gcs.bucket is required")
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &Store{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *Store) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return key, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(ref).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", ref, s.bucket, err)
	}
	return nil
}

func (s *Store) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + ref
}

func (s *Store) Close() error {
	return s.client.Close()
}
