package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

// updateGrace is how much newer the target must be to prefer update over merge
const updateGrace = time.Second

// contributionTolerance groups layers whose contributions tie
const contributionTolerance = 1e-9

// ActionFor maps a score onto the threshold ladder, without the update/merge tie-break
func ActionFor(score float64, th config.Thresholds) models.Action {
	switch {
	case score >= th.Identical:
		return models.ActionDuplicate
	case score >= th.Similar:
		return models.ActionMerge
	case score >= th.Different:
		return models.ActionReview
	default:
		return models.ActionCreate
	}
}

// Recommend derives the action for a verdict on the pair (a, b).
// In the similar band, update is chosen when b was modified more than a
// second after a (both timestamps set), merge otherwise.
func Recommend(score, confidence float64, scores map[string]models.LayerScore, weights map[string]float64, a, b models.FileDescriptor, th config.Thresholds) models.Recommendation {
	action := ActionFor(score, th)
	if action == models.ActionMerge && targetIsNewer(a, b) {
		action = models.ActionUpdate
	}

	return models.Recommendation{
		Action:        action,
		Confidence:    confidence,
		Reason:        reason(action, score, th, scores, weights),
		InvolvedFiles: []string{a.Path, b.Path},
	}
}

func targetIsNewer(a, b models.FileDescriptor) bool {
	ta, tb := a.Metadata.LastModified, b.Metadata.LastModified
	if ta.IsZero() || tb.IsZero() {
		return false
	}
	return tb.Sub(ta) > updateGrace
}

func reason(action models.Action, score float64, th config.Thresholds, scores map[string]models.LayerScore, weights map[string]float64) string {
	var band string
	switch action {
	case models.ActionDuplicate:
		band = fmt.Sprintf("score %.2f reaches the identical threshold %.2f", score, th.Identical)
	case models.ActionUpdate:
		band = fmt.Sprintf("score %.2f reaches the similar threshold %.2f and the target is newer", score, th.Similar)
	case models.ActionMerge:
		band = fmt.Sprintf("score %.2f reaches the similar threshold %.2f", score, th.Similar)
	case models.ActionReview:
		band = fmt.Sprintf("score %.2f reaches the different threshold %.2f", score, th.Different)
	default:
		band = fmt.Sprintf("score %.2f is below the different threshold %.2f", score, th.Different)
	}

	dominant := DominantLayers(scores, weights)
	if len(dominant) == 0 {
		return band + "; no layer contributed"
	}
	return fmt.Sprintf("%s; dominant: %s", band, strings.Join(dominant, ", "))
}

// DominantLayers returns the layers with the largest weighted contribution,
// sorted by name. Layers within 1e-9 of the maximum are all returned.
// Zero contributions are never dominant.
func DominantLayers(scores map[string]models.LayerScore, weights map[string]float64) []string {
	best := 0.0
	for name, s := range scores {
		if c := weights[name] * s.Score; c > best {
			best = c
		}
	}
	if best <= 0 {
		return nil
	}

	var names []string
	for name, s := range scores {
		if c := weights[name] * s.Score; math.Abs(c-best) <= contributionTolerance {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
