package artifact

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an artifact or file does not exist.
var ErrNotFound = errors.New("artifact not found")

// Store persists named artifact bundles. Uploading under an existing
// name replaces the previous contents entirely, so re-running the same
// commit overwrites prior artifacts.
type Store interface {
	// Upload persists every file under dir as the artifact's contents.
	Upload(ctx context.Context, name, dir string) error

	// List returns all artifact names, sorted.
	List(ctx context.Context) ([]string, error)

	// Files returns the file paths inside one artifact, sorted.
	Files(ctx context.Context, name string) ([]string, error)

	// Open returns a reader for one file inside an artifact.
	Open(ctx context.Context, name, path string) (io.ReadCloser, error)
}
