package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// FirebaseStore keeps blobs as objects in a Firebase Cloud Storage bucket.
type FirebaseStore struct {
	bucket *gcs.BucketHandle
	prefix string
}

// NewFirebaseStore stores objects under prefix ("pictures/" for example).
func NewFirebaseStore(bucket *gcs.BucketHandle, prefix string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, prefix: prefix}
}

func (s *FirebaseStore) object(name string) *gcs.ObjectHandle {
	return s.bucket.Object(s.prefix + name)
}

func (s *FirebaseStore) Save(ctx context.Context, name string, r io.Reader) error {
	if !validName(name) {
		return fmt.Errorf("invalid blob name %q", name)
	}
	if ok, err := s.Exists(ctx, name); err != nil || ok {
		return err
	}
	w := s.object(name).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("upload %s to firebase: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s in firebase: %w", name, err)
	}
	return nil
}

func (s *FirebaseStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	rc, err := s.object(name).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func (s *FirebaseStore) Exists(ctx context.Context, name string) (bool, error) {
	if !validName(name) {
		return false, nil
	}
	_, err := s.object(name).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
