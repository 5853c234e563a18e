package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrEmptyCollection = errors.New("gridfs collection may not be empty")

// GridFS stores blobs in a MongoDB GridFS bucket. Reads always return the
// newest revision of a name.
type GridFS struct {
	bucket *gridfs.Bucket
	now    func() time.Time
}

func NewGridFS(db *mongo.Database, collection string) (*GridFS, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(collection))
	if err != nil {
		return nil, fmt.Errorf("create gridfs bucket failed: %w", err)
	}
	return &GridFS{bucket: bucket, now: time.Now}, nil
}

// AvailableName appends the upload timestamp so concurrent uploads of the
// same file never clash.
func (s *GridFS) AvailableName(name string) string {
	ts := float64(s.now().UnixMicro()) / 1e6
	return BaseName(name) + "_" + strconv.FormatFloat(ts, 'f', 6, 64)
}

func (s *GridFS) Save(ctx context.Context, name string, r io.Reader) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	finalName := s.AvailableName(name)
	counter := &countingReader{r: r}
	id, err := s.bucket.UploadFromStream(finalName, counter)
	if err != nil {
		return Stored{}, fmt.Errorf("upload gridfs file failed: %w", err)
	}
	return Stored{Name: finalName, FileID: id.Hex(), Size: counter.n}, nil
}

func (s *GridFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open gridfs file failed: %w", err)
	}
	return stream, nil
}

// Delete removes the newest revision of name. Missing files are ignored.
func (s *GridFS) Delete(ctx context.Context, name string) error {
	file, err := s.latest(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete gridfs file failed: %w", err)
	}
	return nil
}

func (s *GridFS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.latest(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *GridFS) Size(ctx context.Context, name string) (int64, error) {
	file, err := s.latest(ctx, name)
	if err != nil {
		return 0, err
	}
	return file.Length, nil
}

type gridFile struct {
	ID     primitive.ObjectID `bson:"_id"`
	Length int64              `bson:"length"`
}

func (s *GridFS) latest(ctx context.Context, name string) (*gridFile, error) {
	opts := options.GridFSFind().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetLimit(1)
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": name}, opts)
	if err != nil {
		return nil, fmt.Errorf("find gridfs file failed: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("find gridfs file failed: %w", err)
		}
		return nil, ErrNotFound
	}
	var file gridFile
	if err := cursor.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode gridfs file failed: %w", err)
	}
	return &file, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
