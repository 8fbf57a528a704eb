// Package objectstore adapts S3-compatible object stores (MinIO, S3) to the
// fetch and presign operations used by the services.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Lllllllleong/resumeflow/internal/gcp"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds connection settings for an S3-compatible endpoint. A set
// Region skips the bucket location lookup.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// NewMinIOClient initializes and returns a MinIO client.
func NewMinIOClient(cfg MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client for %s: %w", cfg.Endpoint, err)
	}
	slog.Info("MinIO client initialized.", "endpoint", cfg.Endpoint)
	return client, nil
}

// MinIOFetcher downloads objects from an S3-compatible store.
type MinIOFetcher struct {
	client *minio.Client
}

func NewMinIOFetcher(client *minio.Client) *MinIOFetcher {
	return &MinIOFetcher{client: client}
}

// Fetch streams bucket/key into destPath. The parent directory of destPath must
// already exist. Nothing is written outside destPath.
func (f *MinIOFetcher) Fetch(ctx context.Context, bucket, key, destPath string) error {
	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get object reader for s3://%s/%s: %w", bucket, key, classifyMinIOError(err))
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces a missing object before a file is created.
	if _, err := obj.Stat(); err != nil {
		return fmt.Errorf("failed to stat s3://%s/%s: %w", bucket, key, classifyMinIOError(err))
	}

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create local file at %s: %w", destPath, err)
	}
	if _, err := io.Copy(localFile, obj); err != nil {
		_ = localFile.Close()
		return fmt.Errorf("failed to copy s3://%s/%s to local file: %w", bucket, key, classifyMinIOError(err))
	}
	if err := localFile.Close(); err != nil {
		return fmt.Errorf("failed to finalize local file %s: %w", destPath, err)
	}
	return nil
}

func classifyMinIOError(err error) error {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return err
	}
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", gcp.ErrObjectNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", gcp.ErrPermissionDenied, err)
	}
	return err
}

// MinIOURLSigner issues presigned PUT URLs for a single bucket.
type MinIOURLSigner struct {
	client *minio.Client
	bucket string
}

func NewMinIOURLSigner(client *minio.Client, bucket string) *MinIOURLSigner {
	return &MinIOURLSigner{client: client, bucket: bucket}
}

// SignedUploadURL returns a presigned PUT URL for key. S3 presigned PUTs do not
// bind the content type, so contentType is informational only.
func (s *MinIOURLSigner) SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload URL for s3://%s/%s: %w", s.bucket, key, err)
	}
	return u.String(), nil
}
