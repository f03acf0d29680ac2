package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/arzan03/TaskManager/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStore keeps task attachments in a single MinIO bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to MinIO and creates the attachment bucket if needed.
func NewMinio(ctx context.Context, cfg config.MinioConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		zap.L().Info("created bucket", zap.String("bucket", cfg.Bucket))
	}

	zap.L().Info("connected to MinIO", zap.String("endpoint", cfg.Endpoint))
	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *ObjectStore) Put(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *ObjectStore) Remove(ctx context.Context, object string) error {
	return s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{})
}

// PresignedURL returns a temporary download link for object.
func (s *ObjectStore) PresignedURL(ctx context.Context, object, filename string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, object, expiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
