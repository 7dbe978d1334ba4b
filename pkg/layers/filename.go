package layers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

const (
	filenameNameWeight     = 0.8
	filenameExtWeight      = 0.2
	filenameConfidence     = 0.6
	filenameExactConfident = 0.9
)

// Filename compares base names by edit distance and extensions by equality
type Filename struct{}

// NewFilename creates a filename layer
func NewFilename() *Filename {
	return &Filename{}
}

// Name returns the layer name
func (l *Filename) Name() string {
	return config.LayerFilename
}

// CanAnalyze accepts every pair: only paths are needed
func (l *Filename) CanAnalyze(a, b models.FileDescriptor) bool {
	return true
}

// Analyze scores the similarity of the two file names
func (l *Filename) Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error) {
	extA, extB := extension(a), extension(b)
	stemA, stemB := normalizeStem(a.Path, extA), normalizeStem(b.Path, extB)

	distance := levenshtein.ComputeDistance(stemA, stemB)
	longest := max(utf8.RuneCountInString(stemA), utf8.RuneCountInString(stemB))
	nameSim := 1.0
	if longest > 0 {
		nameSim = 1 - float64(distance)/float64(longest)
	}

	extMatch := 0.0
	if extA == extB {
		extMatch = 1
	}

	exact := stemA == stemB
	confidence := filenameConfidence
	if exact {
		confidence = filenameExactConfident
	}

	score := filenameNameWeight*nameSim + filenameExtWeight*extMatch
	return models.LayerScore{
		Score:       score,
		Confidence:  confidence,
		Explanation: fmt.Sprintf("names %q and %q are %.0f%% alike", stemA, stemB, nameSim*100),
		Breakdown: map[string]any{
			"name_similarity": nameSim,
			"edit_distance":   distance,
			"extension_match": extA == extB,
		},
	}, nil
}

// normalizeStem lowercases the base name without extension and folds separators to spaces
func normalizeStem(path, ext string) string {
	base := strings.ToLower(filepath.Base(path))
	base = strings.TrimSuffix(base, ext)
	base = strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '.', ' ':
			return ' '
		}
		return r
	}, base)
	return strings.Join(strings.Fields(base), " ")
}
