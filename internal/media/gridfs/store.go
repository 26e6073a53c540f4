package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps blobs in a MongoDB GridFS bucket. The media key doubles as the
// GridFS file id so a reference is enough to delete it.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	bucket  string
	baseURL string
}

// New connects to MongoDB and verifies the connection
func New(ctx context.Context, cfg config.GridFSConfig, baseURL string) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("media.gridfs.uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client:  client,
		db:      client.Database(cfg.Database),
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

// openBucket returns a bucket bound to the context deadline. Buckets are
// cheap handles, so one is created per call.
func (s *Store) openBucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		b.SetWriteDeadline(deadline)
		b.SetReadDeadline(deadline)
	}
	return b, nil
}

func (s *Store) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, err := s.openBucket(ctx)
	if err != nil {
		return "", err
	}

	// replace an earlier blob under the same key
	if err := b.DeleteContext(ctx, key); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return "", fmt.Errorf("failed to replace gridfs file: %w", err)
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if err := b.UploadFromStreamWithID(key, key, r, opts); err != nil {
		return "", fmt.Errorf("failed to upload gridfs file: %w", err)
	}
	return key, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	b, err := s.openBucket(ctx)
	if err != nil {
		return err
	}
	if err := b.DeleteContext(ctx, ref); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("failed to delete gridfs file: %w", err)
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
	return s.client.Disconnect(context.Background())
}
