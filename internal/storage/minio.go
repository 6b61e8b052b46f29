package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/deskspace/deskspace/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// publicReadPolicy lets anonymous clients GET objects so image URLs can be
// embedded directly in listing pages.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// Minio stores listing images in a single public-read bucket.
type Minio struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinio(cfg config.MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Minio{client: client, bucket: cfg.Bucket, baseURL: cfg.PublicBaseURL}, nil
}

// EnsureBucket creates the bucket if missing and applies the public-read policy.
// Failures are logged, not fatal.
func (m *Minio) EnsureBucket(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		log.Printf("Warning: Failed to check bucket existence: %v", err)
		return
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			log.Printf("Warning: Failed to create bucket: %v", err)
			return
		}
		log.Printf("Created bucket: %s", m.bucket)
	}
	if err := m.client.SetBucketPolicy(ctx, m.bucket, fmt.Sprintf(publicReadPolicy, m.bucket)); err != nil {
		log.Printf("Warning: Failed to set bucket policy: %v", err)
	}
	log.Println("✅ Connected to MinIO")
}

// Put uploads one object and returns its public URL.
func (m *Minio) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return m.URL(name), nil
}

func (m *Minio) Remove(ctx context.Context, name string) error {
	return m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
}

// URL is the public address of an object in the bucket.
func (m *Minio) URL(name string) string {
	return fmt.Sprintf("%s/%s/%s", m.baseURL, m.bucket, name)
}
