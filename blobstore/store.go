package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is a flat namespace of immutable blobs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores everything read from r under name, replacing an existing blob.
	// The blob becomes visible only once Put returns without error.
	Put(ctx context.Context, name string, r io.Reader) error
	// Get opens a blob for reading. The caller closes the reader.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
