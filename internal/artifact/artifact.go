// Package artifact mirrors generated audio files into a NATS JetStream
// object store so other services can fetch them by filename.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const connectTimeout = 5 * time.Second

// ErrNotFound is returned by Download for keys the bucket does not hold.
var ErrNotFound = errors.New("artifact not found")

// Store is an object store bucket holding generated audio.
type Store struct {
	conn   *nats.Conn
	bucket string
	store  jetstream.ObjectStore
}

// Connect dials url and binds the bucket, creating it when missing.
func Connect(ctx context.Context, url, bucket string) (*Store, error) {
	nc, err := nats.Connect(url, nats.Name("ttsgen"), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening jetstream: %w", err)
	}

	s, err := New(ctx, js, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}
	s.conn = nc

	slog.Info("artifact mirror connected", "url", url, "bucket", bucket)
	return s, nil
}

// New binds bucket on an existing JetStream context.
func New(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	store, err := js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      bucket,
		Description: "Generated speech audio",
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("creating object store %s: %w", bucket, err)
		}
		store, err = js.ObjectStore(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("binding object store %s: %w", bucket, err)
		}
	}

	return &Store{bucket: bucket, store: store}, nil
}

// Upload stores the file at path under its base name.
func (s *Store) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path) // #nosec G304 -- path is produced by the output resolver
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	key := filepath.Base(path)
	info, err := s.store.Put(ctx, jetstream.ObjectMeta{
		Name:        key,
		Description: "synthesized audio",
	}, f)
	if err != nil {
		return fmt.Errorf("putting %s to bucket %s: %w", key, s.bucket, err)
	}

	slog.Debug("artifact mirrored", "bucket", s.bucket, "key", key, "bytes", info.Size)
	return nil
}

// Download returns the object stored under key.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	data, err := s.store.GetBytes(ctx, key)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s in bucket %s: %w", ErrNotFound, key, s.bucket, err)
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s from bucket %s: %w", key, s.bucket, err)
	}
	return data, nil
}

// Close drains the connection opened by Connect.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
