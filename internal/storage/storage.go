// Package storage abstracts the object store backing uploaded files.
//
// The application never proxies file bytes: clients upload directly to the
// store using a presigned POST, and download via the object's public URL.
// The server only mints upload credentials and removes objects when their
// metadata rows go away.
package storage

import "context"

// PresignedPost holds everything a browser needs to upload one object with
// a multipart/form-data POST: the target URL and the signed form fields that
// must accompany the file part.
type PresignedPost struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// ObjectStore is the minimal surface the file service needs from an object
// store. The s3 subpackage provides the real implementation; tests use fakes.
type ObjectStore interface {
	// PresignUpload returns a presigned POST for the given key, constrained
	// to the given content type.
	PresignUpload(ctx context.Context, key, contentType string) (*PresignedPost, error)

	// Remove deletes the object at key. Removing a key that does not exist
	// is not an error.
	Remove(ctx context.Context, key string) error

	// ObjectURL returns the public HTTPS URL of the object at key.
	ObjectURL(key string) string
}
