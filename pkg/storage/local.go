package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"

	"github.com/sdejongh/filesim/pkg/models"
	"github.com/sdejongh/filesim/pkg/ratelimit"
)

// Options configures a Local backend
type Options struct {
	// Exclude lists patterns skipped by List
	Exclude []string
	// MaxContentBytes skips loading content of larger files (0 = no limit)
	MaxContentBytes int64
	// Limiter throttles content reads (nil = unlimited)
	Limiter *ratelimit.Limiter
}

// Local is a filesystem-based storage backend rooted at a directory
type Local struct {
	rootPath string
	exclude  *ExcludeMatcher
	opts     Options
}

// NewLocal creates a new local filesystem backend
func NewLocal(rootPath string, opts Options) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{
		rootPath: absPath,
		exclude:  NewExcludeMatcher(opts.Exclude),
		opts:     opts,
	}, nil
}

// Root returns the absolute root directory
func (l *Local) Root() string {
	return l.rootPath
}

// List returns all regular files under path recursively, sorted by relative path.
// Excluded directories are not descended into.
func (l *Local) List(ctx context.Context, path string) ([]FileInfo, error) {
	fullPath := l.resolve(path)
	var files []FileInfo

	err := filepath.WalkDir(fullPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}

		if relPath != "." && l.exclude.Match(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         p,
			RelativePath: relPath,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	relPath, err := filepath.Rel(l.rootPath, fullPath)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:         fullPath,
		RelativePath: relPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
	}, nil
}

// Read opens a file for reading, rate limited when a limiter is configured
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return ratelimit.NewReadCloser(ctx, file, l.opts.Limiter), nil
}

// Load builds a descriptor for the file.
// Content is attached only for text files within MaxContentBytes.
func (l *Local) Load(ctx context.Context, path string) (models.FileDescriptor, error) {
	info, err := l.Stat(ctx, path)
	if err != nil {
		return models.FileDescriptor{}, err
	}
	if info.IsDir {
		return models.FileDescriptor{}, fmt.Errorf("cannot load directory: %s", info.Path)
	}

	desc := models.FileDescriptor{
		Path: info.Path,
		Metadata: models.FileMetadata{
			Size:         info.Size,
			Extension:    filepath.Ext(info.Path),
			LastModified: info.ModTime,
		},
	}

	if l.opts.MaxContentBytes > 0 && info.Size > l.opts.MaxContentBytes {
		desc.Metadata.MimeType = DetectMimeType(info.Path, nil)
		return desc, nil
	}

	rc, err := l.Read(ctx, path)
	if err != nil {
		return models.FileDescriptor{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return models.FileDescriptor{}, fmt.Errorf("failed to read file: %w", err)
	}

	desc.Metadata.Size = int64(len(data))
	desc.Metadata.MimeType = DetectMimeType(info.Path, data)
	if !enry.IsBinary(data) && utf8.Valid(data) {
		text := string(data)
		desc.Content = &text
	}
	return desc, nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

// resolve joins relative paths to the root; absolute paths are used as-is
func (l *Local) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.rootPath, path)
}
