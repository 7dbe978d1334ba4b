package layers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

// Confidence levels for the content layer
const (
	contentHashConfidence = 1.0
	contentLineConfidence = 0.9
	contentSizeConfidence = 0.2
)

// Content compares raw content: hash equality, then line overlap.
// Without content on both sides it falls back to the size ratio.
type Content struct{}

// NewContent creates a content layer
func NewContent() *Content {
	return &Content{}
}

// Name returns the layer name
func (l *Content) Name() string {
	return config.LayerContent
}

// CanAnalyze accepts every pair
func (l *Content) CanAnalyze(a, b models.FileDescriptor) bool {
	return true
}

// Analyze compares the two files' content
func (l *Content) Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error) {
	if !bothHaveContent(a, b) {
		r := ratio(float64(a.Metadata.Size), float64(b.Metadata.Size))
		return models.LayerScore{
			Score:       r,
			Confidence:  contentSizeConfidence,
			Explanation: fmt.Sprintf("content unavailable, size ratio %.2f", r),
			Breakdown:   map[string]any{"size_a": a.Metadata.Size, "size_b": b.Metadata.Size},
		}, nil
	}

	hashA, hashB := hashText(a.Text()), hashText(b.Text())
	if hashA == hashB {
		return models.LayerScore{
			Score:       1,
			Confidence:  contentHashConfidence,
			Explanation: "content hashes match",
			Breakdown:   map[string]any{"sha256": hashA},
		}, nil
	}
	if err := ctx.Err(); err != nil {
		return models.LayerScore{}, err
	}

	la, lb := lineSet(a.Text()), lineSet(b.Text())
	shared := 0
	for line := range la {
		if lb[line] {
			shared++
		}
	}
	union := len(la) + len(lb) - shared

	jaccard := 0.0
	if union > 0 {
		jaccard = float64(shared) / float64(union)
	}

	return models.LayerScore{
		Score:       jaccard,
		Confidence:  contentLineConfidence,
		Explanation: fmt.Sprintf("%d of %d distinct lines shared", shared, union),
		Breakdown: map[string]any{
			"shared_lines": shared,
			"union_lines":  union,
			"sha256_a":     hashA,
			"sha256_b":     hashB,
		},
	}, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// lineSet returns the distinct non-blank lines with surrounding whitespace removed
func lineSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range splitLines(text) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}
