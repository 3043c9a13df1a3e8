// Package s3 implements storage.ObjectStore on top of an S3-compatible
// bucket using the MinIO client. The client speaks the plain S3 API, so it
// works against AWS itself as well as MinIO or any other compatible store
// (handy for local development).
package s3

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sakif/filevault/internal/storage"
)

// uploadTTL bounds how long a presigned POST stays valid. Ten minutes is
// plenty for a browser to start the upload; the actual transfer may outlast
// the window once started.
const uploadTTL = 10 * time.Minute

// Compile-time check that *Store implements storage.ObjectStore.
var _ storage.ObjectStore = (*Store)(nil)

type Config struct {
	Endpoint  string // host only, e.g. "s3.eu-central-1.amazonaws.com"
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type Store struct {
	client *minio.Client
	bucket string
}

// New creates a Store for the configured bucket. It validates the
// configuration but does not touch the network — bucket existence and
// credential validity surface on first use.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3: access credentials are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: true,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: creating client: %w", err)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// PresignUpload builds a presigned POST policy for key, locked to the given
// content type, valid for uploadTTL.
func (s *Store) PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedPost, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, fmt.Errorf("s3: setting policy bucket: %w", err)
	}
	if err := policy.SetKey(key); err != nil {
		return nil, fmt.Errorf("s3: setting policy key: %w", err)
	}
	if err := policy.SetContentType(contentType); err != nil {
		return nil, fmt.Errorf("s3: setting policy content type: %w", err)
	}
	if err := policy.SetExpires(time.Now().UTC().Add(uploadTTL)); err != nil {
		return nil, fmt.Errorf("s3: setting policy expiry: %w", err)
	}

	postURL, formData, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("s3: presigning upload for %s: %w", key, err)
	}

	return &storage.PresignedPost{
		URL:    postURL.String(),
		Fields: formData,
	}, nil
}

// Remove deletes the object at key. S3 DeleteObject is idempotent, so a
// missing key succeeds.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("s3: removing object %s: %w", key, err)
	}
	return nil
}

// ObjectURL returns the virtual-hosted-style URL of the object at key.
func (s *Store) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.client.EndpointURL().Host, url.PathEscape(key))
}
