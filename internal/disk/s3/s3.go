package s3

import (
	"context"
	"fmt"
	"gallery/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"io"
	"log/slog"
	"strings"
)

// Disk stores files as objects in an S3 compatible bucket.
type Disk struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// New connects to the endpoint and creates the bucket when it does not exist yet.
func New(ctx context.Context, cfg *config.S3, log *slog.Logger) (*Disk, error) {
	const op = "disk.s3.New"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("bucket created", slog.String("bucket", cfg.Bucket))
	}

	return &Disk{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: PublicBaseURL(cfg),
	}, nil
}

// PublicBaseURL is the URL prefix objects of the configured bucket are reachable under.
func PublicBaseURL(cfg *config.S3) string {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}

	return base + "/" + cfg.Bucket
}

func (d *Disk) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	const op = "disk.s3.Put"

	_, err := d.client.PutObject(ctx, d.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	const op = "disk.s3.Delete"

	err := d.client.RemoveObject(ctx, d.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (d *Disk) URL(key string) string {
	return d.baseURL + "/" + strings.TrimPrefix(key, "/")
}

func (d *Disk) Key(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, d.baseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
