package models

import (
	"time"
)

// Action represents what should be done with incoming content
type Action string

const (
	// ActionCreate keeps the new file as-is: nothing similar exists
	ActionCreate Action = "create"
	// ActionReview asks a human to look at a partial overlap
	ActionReview Action = "review"
	// ActionUpdate replaces the older file with the newer one
	ActionUpdate Action = "update"
	// ActionMerge folds the two files together
	ActionMerge Action = "merge"
	// ActionDuplicate drops the new file as a duplicate
	ActionDuplicate Action = "duplicate"
)

// LayerScore is the verdict of a single analyzer layer
type LayerScore struct {
	// Score in [0,1]
	Score float64 `json:"score"`
	// Confidence in [0,1]
	Confidence float64 `json:"confidence"`
	// Explanation is a human-readable summary
	Explanation string `json:"explanation"`
	// Breakdown holds optional diagnostics
	Breakdown map[string]any `json:"breakdown,omitempty"`
}

// ZeroScore returns the score recorded for a layer that did not contribute
func ZeroScore(explanation string) LayerScore {
	return LayerScore{Explanation: explanation}
}

// Recommendation is the action derived from a similarity verdict
type Recommendation struct {
	Action        Action   `json:"action"`
	Confidence    float64  `json:"confidence"`
	Reason        string   `json:"reason"`
	InvolvedFiles []string `json:"involved_files"`
}

// ResultMetadata describes how a result was produced
type ResultMetadata struct {
	AnalysisID       string    `json:"analysis_id"`
	AnalysisTime     time.Time `json:"analysis_time"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	// AlgorithmsUsed lists the layers actually invoked, in registration order
	AlgorithmsUsed []string `json:"algorithms_used"`
	SourceFile     string   `json:"source_file"`
	TargetFile     string   `json:"target_file"`
	// CacheHit is true when the result was served from the cache
	CacheHit bool `json:"cache_hit"`
	// ShortCircuit is true when identical inputs skipped layer analysis
	ShortCircuit bool `json:"short_circuit"`
}

// SimilarityResult is the verdict for one file pair.
// The engine hands out deep copies; the values it caches are never exposed.
type SimilarityResult struct {
	OverallScore      float64               `json:"overall_score"`
	OverallConfidence float64               `json:"overall_confidence"`
	LayerScores       map[string]LayerScore `json:"layer_scores"`
	Recommendation    Recommendation        `json:"recommendation"`
	Metadata          ResultMetadata        `json:"metadata"`
}

// Clone returns a copy sharing no maps or slices with r.
// Breakdown values are copied one level deep.
func (r *SimilarityResult) Clone() *SimilarityResult {
	if r == nil {
		return nil
	}
	out := *r

	if r.LayerScores != nil {
		out.LayerScores = make(map[string]LayerScore, len(r.LayerScores))
		for name, ls := range r.LayerScores {
			if ls.Breakdown != nil {
				breakdown := make(map[string]any, len(ls.Breakdown))
				for k, v := range ls.Breakdown {
					breakdown[k] = v
				}
				ls.Breakdown = breakdown
			}
			out.LayerScores[name] = ls
		}
	}
	out.Recommendation.InvolvedFiles = cloneStrings(r.Recommendation.InvolvedFiles)
	out.Metadata.AlgorithmsUsed = cloneStrings(r.Metadata.AlgorithmsUsed)
	return &out
}

// cloneStrings copies s, keeping nil and empty distinct
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// BatchResult is the ranking of many candidates against one new file
type BatchResult struct {
	NewFile string `json:"new_file"`
	// Results are sorted by descending score
	Results             []SimilarityResult `json:"results"`
	BestMatch           *SimilarityResult  `json:"best_match,omitempty"`
	PotentialDuplicates []SimilarityResult `json:"potential_duplicates"`
	TotalAnalysisTimeMs int64              `json:"total_analysis_time_ms"`
	Stats               BatchStats         `json:"stats"`
}

// BatchStats holds batch counters
type BatchStats struct {
	Candidates int `json:"candidates"`
	Compared   int `json:"compared"`
	// Skipped counts candidates with the same path as the new file
	Skipped   int `json:"skipped"`
	CacheHits int `json:"cache_hits"`
}
