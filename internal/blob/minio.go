package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pypln-web/internal/config"
)

// MinIO stores blobs in an S3-compatible bucket.
type MinIO struct {
	client *minio.Client
	bucket string
}

func NewMinIO(ctx context.Context, cfg config.StorageConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinIO{client: cli, bucket: cfg.Bucket}, nil
}

func (s *MinIO) Save(ctx context.Context, name string, r io.Reader) (Stored, error) {
	key := fmt.Sprintf("documents/%s_%s", uuid.NewString(), BaseName(name))
	info, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		UserMetadata: map[string]string{"original-filename": BaseName(name)},
	})
	if err != nil {
		return Stored{}, fmt.Errorf("put object: %w", err)
	}
	return Stored{Name: key, FileID: key, Size: info.Size}, nil
}

func (s *MinIO) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, s.translate(err)
	}
	return obj, nil
}

func (s *MinIO) Delete(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

func (s *MinIO) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if s.translate(err) == ErrNotFound {
		return false, nil
	}
	return false, err
}

func (s *MinIO) Size(ctx context.Context, name string) (int64, error) {
	st, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return 0, s.translate(err)
	}
	return st.Size, nil
}

func (s *MinIO) translate(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return err
}
