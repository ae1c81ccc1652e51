// Package storage abstracts the object store that receives uploaded
// images. The ingest pipeline only needs Put semantics; retry policy
// lives behind the Store implementation, never in callers.
package storage

import (
	"context"
	"io"
)

// Store uploads objects into a bucket and returns the final key.
// Implementations must be safe for concurrent independent uploads.
type Store interface {
	// Put uploads the contents of body under bucket/key.
	Put(ctx context.Context, body io.Reader, bucket, key string) (string, error)
	// PutFile uploads a local file under bucket/key.
	PutFile(ctx context.Context, path, bucket, key string) (string, error)
}

// Key joins an optional path prefix and a file name into an object
// key, ensuring exactly one separating slash.
func Key(pathPrefix, name string) string {
	if pathPrefix == "" {
		return name
	}
	if pathPrefix[len(pathPrefix)-1] != '/' {
		pathPrefix += "/"
	}
	return pathPrefix + name
}
