package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/filesim/pkg/ratelimit"
)

// writeTree creates files under root
func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, content, 0644))
	}
}

func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(t.TempDir(), Options{})
		require.NoError(t, err)
		defer local.Close()

		assert.True(t, filepath.IsAbs(local.Root()), "Root() = %q, want an absolute path", local.Root())
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist", Options{})
		assert.Error(t, err)
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		writeTree(t, filepath.Dir(path), map[string][]byte{"file.txt": []byte("x")})

		_, err := NewLocal(path, Options{})
		assert.Error(t, err, "a file path is not a valid root")
	})
}

func TestLocalList(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"b.md":                      []byte("b"),
		"a.md":                      []byte("a"),
		"notes/c.md":                []byte("c"),
		"notes/scratch.tmp":         []byte("tmp"),
		".git/config":               []byte("[core]"),
		"node_modules/pkg/index.js": []byte("js"),
	})

	local, err := NewLocal(root, Options{Exclude: []string{"*.tmp", ".git/", "node_modules/"}})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("ListAll", func(t *testing.T) {
		entries, err := local.List(ctx, "")
		require.NoError(t, err)

		want := []string{"a.md", "b.md", filepath.Join("notes", "c.md")}
		require.Len(t, entries, len(want))
		for i, e := range entries {
			assert.Equal(t, want[i], e.RelativePath)
			assert.False(t, e.IsDir, "List() should only return files, got dir %q", e.RelativePath)
		}
	})

	t.Run("ListSubdir", func(t *testing.T) {
		entries, err := local.List(ctx, "notes")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, filepath.Join("notes", "c.md"), entries[0].RelativePath)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := local.List(cancelled, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalStatAndRead(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{"doc.txt": []byte("hello")})

	local, err := NewLocal(root, Options{})
	require.NoError(t, err)
	ctx := context.Background()

	info, err := local.Stat(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.False(t, info.IsDir)
	assert.Equal(t, "doc.txt", info.RelativePath)

	_, err = local.Stat(ctx, "missing.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)

	rc, err := local.Read(ctx, "doc.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalLoad(t *testing.T) {
	root := t.TempDir()
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	writeTree(t, root, map[string][]byte{
		"main.go":   []byte("package main\n\nfunc main() {}\n"),
		"big.txt":   make([]byte, 2048),
		"image.png": png,
	})
	modTime := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "main.go"), modTime, modTime))

	local, err := NewLocal(root, Options{
		MaxContentBytes: 1024,
		Limiter:         ratelimit.NewLimiter(10 * 1024 * 1024),
	})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("TextFile", func(t *testing.T) {
		desc, err := local.Load(ctx, "main.go")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(local.Root(), "main.go"), desc.Path)
		require.True(t, desc.HasContent())
		assert.Equal(t, "package main\n\nfunc main() {}\n", desc.Text())
		assert.Equal(t, ".go", desc.Metadata.Extension)
		assert.Equal(t, "text/x-go", desc.Metadata.MimeType)
		assert.True(t, desc.Metadata.LastModified.Equal(modTime), "LastModified = %v, want %v", desc.Metadata.LastModified, modTime)
	})

	t.Run("AboveSizeLimit", func(t *testing.T) {
		desc, err := local.Load(ctx, "big.txt")
		require.NoError(t, err)
		assert.False(t, desc.HasContent(), "content above MaxContentBytes should not be loaded")
		assert.Equal(t, int64(2048), desc.Metadata.Size)
	})

	t.Run("BinaryFile", func(t *testing.T) {
		desc, err := local.Load(ctx, "image.png")
		require.NoError(t, err)
		assert.False(t, desc.HasContent(), "binary content should not be attached")
		assert.Equal(t, "image/png", desc.Metadata.MimeType)
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := local.Load(ctx, ".")
		assert.Error(t, err)
	})
}

func TestExcludeMatcher(t *testing.T) {
	m := NewExcludeMatcher([]string{"*.tmp", ".git/", "build/*", "**/testdata/*.md", ""})

	tests := []struct {
		path string
		want bool
	}{
		{"scratch.tmp", true},
		{"notes/scratch.tmp", true},
		{".git", true},
		{".git/config", true},
		{"sub/.git/HEAD", true},
		{"build/out.md", true},
		{"src/build/out.md", true},
		{"pkg/testdata/case.md", true},
		{"pkg/testdata/case.txt", false},
		{"notes/readme.md", false},
		{"gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}

	empty := NewExcludeMatcher(nil)
	assert.True(t, empty.Empty())
	assert.False(t, empty.Match("anything"), "an empty matcher should exclude nothing")
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content []byte
		want    string
	}{
		{"go source", "main.go", []byte("package main\n"), "text/x-go"},
		{"pdf by extension", "report.pdf", nil, "application/pdf"},
		{"png by content", "blob", []byte("\x89PNG\r\n\x1a\n\x00\x00"), "image/png"},
		{"unknown", "blob", nil, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMimeType(tt.path, tt.content))
		})
	}
}

// TestBackendInterface verifies Local implements Backend interface
func TestBackendInterface(t *testing.T) {
	local, err := NewLocal(t.TempDir(), Options{})
	require.NoError(t, err)
	defer local.Close()

	var _ Backend = local
}
