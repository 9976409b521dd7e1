// Package objectstore abstracts the S3-compatible backing store. The store
// is deliberately dumb: whole-object put/get/delete plus presigned URLs.
// It has no multipart or resumable support, which is why chunking exists at
// the layer above.
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by Get when the key has no object.
var ErrObjectNotFound = errors.New("object not found")

// Store is the contract the upload and reassembly code relies on. A
// successful Put acknowledges durability of exactly the named object.
type Store interface {
	// Put stores body under key with the given content type.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// Get returns the object bytes, or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is present under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the named objects. The result has one entry per key,
	// nil on success; deleting a missing object is a success. A failed key
	// never aborts the remaining deletions.
	Delete(ctx context.Context, keys ...string) []error

	// PublicURL returns the unauthenticated URL of an object.
	PublicURL(key string) string

	// PresignPut returns a URL a client can PUT the object bytes to.
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)

	// PresignGet returns a URL a client can GET the object bytes from.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
