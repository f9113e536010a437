// Package blobstore abstracts the blob storage index snapshots are written
// to. A local filesystem store is provided alongside S3 and MinIO backends
// for S3-compatible object storage.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing named data blobs.
type Store interface {
	// Create creates a blob for writing. The blob becomes visible under
	// its name once the returned writer is closed without error.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
