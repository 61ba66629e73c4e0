package storage

import (
	"context"
	"io"
)

// ObjectStore abstracts the bucket holding memorial images. Implementations
// must resolve a public URL synchronously after a successful upload.
type ObjectStore interface {
	// Upload writes the object at the given path and returns its public URL.
	Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error)

	// PublicURL resolves the public URL an object at path is served under.
	PublicURL(path string) string

	// Remove deletes the listed objects in one call. Missing objects are not an error.
	Remove(ctx context.Context, paths []string) error
}
