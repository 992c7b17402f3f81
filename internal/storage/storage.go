// Package storage keeps archived upload bytes in an S3-compatible object store.
package storage

import (
	"context"
	"io"
	"time"
)

// Object is an upload to be written. Size must be exact; the archive always
// knows it because uploads are buffered before extraction.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	// Filename is the client's original name, kept as object metadata.
	Filename string
}

// Stored describes an object after a successful write.
type Stored struct {
	Key  string
	Size int64
	ETag string
}

// Storage is the object store behind the upload archive.
type Storage interface {
	Put(ctx context.Context, obj Object) (Stored, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a credential-free download URL valid for expiry.
	// When filename is set the response is served as an attachment with that name.
	PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
	// Ping checks that the bucket is reachable.
	Ping(ctx context.Context) error
}
