package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucketName = "pictures"

// GridFSStore keeps blobs in a MongoDB GridFS bucket keyed by filename.
type GridFSStore struct {
	db *mongo.Database
}

func NewGridFSStore(db *mongo.Database) *GridFSStore {
	return &GridFSStore{db: db}
}

// bucket applies the context deadline, if any, to a fresh bucket handle.
// GridFS buckets hold their deadlines as mutable state, so handles are not
// shared between requests.
func (s *GridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(gridFSBucketName))
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStore) Save(ctx context.Context, name string, r io.Reader) error {
	if !validName(name) {
		return fmt.Errorf("invalid blob name %q", name)
	}
	if ok, err := s.Exists(ctx, name); err != nil || ok {
		return err
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if _, err := b.UploadFromStream(name, r); err != nil {
		return fmt.Errorf("upload %s to gridfs: %w", name, err)
	}
	return nil
}

func (s *GridFSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := b.OpenDownloadStreamByName(name)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *GridFSStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.db.Collection(gridFSBucketName+".files").CountDocuments(ctx, bson.M{"filename": name})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
