package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSStore keeps each key as an object in a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCSStore uses Application Default Credentials.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET must be set for the gcs storage driver")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: client.Bucket(bucket)}, nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	r, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("read %s: %w", key, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("open gcs object %s: %w", key, describe(err))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gcs object %s: %w", key, err)
	}
	return data, nil
}

// Put uploads the whole document; the object only becomes visible once the
// writer is closed successfully.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write to GCS: %w", describe(err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", describe(err))
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// describe adds the HTTP status of a googleapi error to its message.
func describe(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("gcs status %d: %w", gerr.Code, err)
	}
	return err
}
