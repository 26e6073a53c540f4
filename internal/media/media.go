// Package media stores audio blobs for answers and summaries. The backend is
// chosen by media.driver; stored objects are addressed by a reference string
// that the drivers resolve back to a URL.
package media

import (
	"context"
	"fmt"
	"io"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/media/gcs"
	"github.com/Rrens/talent-chat/internal/media/gridfs"
	"github.com/Rrens/talent-chat/internal/media/local"
)

// Store saves and removes blobs by key
type Store interface {
	// Save writes r under key and returns the reference to persist
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes a stored blob. Missing blobs are not an error.
	Delete(ctx context.Context, ref string) error
	// URL resolves a reference for clients
	URL(ref string) string
	Close() error
}

// New opens the store selected by cfg.Driver
func New(ctx context.Context, cfg config.MediaConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return local.New(cfg.Root, cfg.BaseURL)
	case "gcs":
		return gcs.New(ctx, cfg.GCS, cfg.BaseURL)
	case "gridfs":
		return gridfs.New(ctx, cfg.GridFS, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported media driver: %s", cfg.Driver)
	}
}
