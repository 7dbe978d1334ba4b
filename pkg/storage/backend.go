package storage

import (
	"context"
	"io"
	"time"

	"github.com/sdejongh/filesim/pkg/models"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
}

// Backend defines the read-only operations used to build file descriptors.
// Implementations include the local filesystem.
type Backend interface {
	// List returns all regular files under path recursively, minus excluded ones
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Load builds a descriptor for the file, with content when it is text
	// and within the configured size limit
	Load(ctx context.Context, path string) (models.FileDescriptor, error)

	// Close releases any resources held by the backend
	Close() error
}
