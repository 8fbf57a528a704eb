package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

var (
	// ErrObjectNotFound is returned when the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrPermissionDenied is returned when the caller may not read the object.
	ErrPermissionDenied = errors.New("permission denied")
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GCSFetcher downloads Cloud Storage objects to the local filesystem.
type GCSFetcher struct {
	client *storage.Client
}

func NewGCSFetcher(client *storage.Client) *GCSFetcher {
	return &GCSFetcher{client: client}
}

// Fetch streams gs://bucket/object into destPath. The parent directory of destPath
// must already exist.
func (f *GCSFetcher) Fetch(ctx context.Context, bucket, object, destPath string) error {
	gcsReader, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, classifyGCSError(err))
	}
	defer gcsReader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create local file at %s: %w", destPath, err)
	}
	if _, err := io.Copy(localFile, gcsReader); err != nil {
		_ = localFile.Close()
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	if err := localFile.Close(); err != nil {
		return fmt.Errorf("failed to finalize local file %s: %w", destPath, err)
	}
	return nil
}

// classifyGCSError tags not-found and permission failures with a sentinel so
// callers can tell them apart from transient errors.
func classifyGCSError(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
	}
	return err
}

// GCSURLSigner issues V4 signed upload URLs for a single bucket.
type GCSURLSigner struct {
	client *storage.Client
	bucket string
}

func NewGCSURLSigner(client *storage.Client, bucket string) *GCSURLSigner {
	return &GCSURLSigner{client: client, bucket: bucket}
}

// SignedUploadURL returns a URL that allows a single PUT of key until ttl elapses.
func (s *GCSURLSigner) SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign upload URL for gs://%s/%s: %w", s.bucket, key, err)
	}
	return url, nil
}
