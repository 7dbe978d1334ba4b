// Package layers provides the default analyzer layers for the similarity engine
package layers

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sdejongh/filesim/pkg/models"
	"github.com/sdejongh/filesim/pkg/similarity"
)

// Default returns the built-in layers in registration order:
// filename, structure, semantic, content.
func Default() []similarity.Layer {
	return []similarity.Layer{
		NewFilename(),
		NewStructure(),
		NewSemantic(),
		NewContent(),
	}
}

// bothHaveContent is the CanAnalyze rule for content-based layers
func bothHaveContent(a, b models.FileDescriptor) bool {
	return a.HasContent() && b.HasContent()
}

// extension returns the lowercased extension from metadata, falling back to the path
func extension(d models.FileDescriptor) string {
	ext := d.Metadata.Extension
	if ext == "" {
		ext = filepath.Ext(d.Path)
	}
	return strings.ToLower(ext)
}

// splitLines splits text into lines, accepting both \n and \r\n
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// words splits text into lowercased letter/digit runs
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func ratio(x, y float64) float64 {
	if x == 0 && y == 0 {
		return 1
	}
	if x > y {
		x, y = y, x
	}
	return x / y
}
