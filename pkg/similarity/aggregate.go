package similarity

import (
	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

// Aggregate combines layer scores into the overall score and confidence.
//
// It is a straight weighted sum over the invoked layers, not a normalized
// mean: a layer that was disabled, declined or failed contributes nothing
// and the remaining weights are not rescaled.
func Aggregate(scores map[string]models.LayerScore, used []string, weights map[string]float64) (score, confidence float64) {
	for _, name := range used {
		s, ok := scores[name]
		if !ok {
			continue
		}
		w := weights[name]
		score += w * s.Score
		confidence += w * s.Confidence
	}
	return clamp01(score), clamp01(confidence)
}

// IsIdentical reports whether two descriptors denote the same file:
// either the same path, or equal content together with equal metadata.
func IsIdentical(a, b models.FileDescriptor) bool {
	if a.Path == b.Path {
		return true
	}
	if !a.HasContent() || !b.HasContent() {
		return false
	}
	return a.Text() == b.Text() && a.Metadata.SameMetadata(b.Metadata)
}

// identicalScores builds the per-layer map reported for a short-circuited pair
func identicalScores(layers []string, cfg config.SimilarityConfig) (map[string]models.LayerScore, []string) {
	scores := make(map[string]models.LayerScore, len(layers))
	used := make([]string, 0, len(layers))
	for _, name := range layers {
		if !cfg.IsEnabled(name) {
			scores[name] = models.ZeroScore(explainDisabled)
			continue
		}
		scores[name] = models.LayerScore{Score: 1, Confidence: 1, Explanation: "identical input"}
		used = append(used, name)
	}
	return scores, used
}
