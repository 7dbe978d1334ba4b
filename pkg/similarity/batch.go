package similarity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/filesim/pkg/logging"
	"github.com/sdejongh/filesim/pkg/models"
)

// FindSimilarFiles compares target against every candidate and ranks the results.
//
// Candidates sharing target's path are skipped and counted in Stats.Skipped.
// Results hold every compared candidate, best first. BestMatch is set only
// when the top score reaches minScore. A timeout or cancellation in any
// comparison fails the whole batch.
func (e *Engine) FindSimilarFiles(ctx context.Context, target models.FileDescriptor, candidates []models.FileDescriptor, minScore float64) (*models.BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := e.now()

	if err := validateInput(target); err != nil {
		return nil, err
	}
	if math.IsNaN(minScore) || minScore < 0 || minScore > 1 {
		return nil, &AnalysisError{Path: target.Path, Reason: fmt.Sprintf("minimum score %v is outside [0,1]", minScore)}
	}
	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, &AnalysisError{Path: c.Path, Reason: fmt.Sprintf("candidate %d: %v", i, err)}
		}
	}

	cfg := e.cfg.Load()
	batch := &models.BatchResult{
		NewFile:             target.Path,
		Results:             []models.SimilarityResult{},
		PotentialDuplicates: []models.SimilarityResult{},
		Stats:               models.BatchStats{Candidates: len(candidates)},
	}

	var toCompare []int
	for i, c := range candidates {
		if c.Path == target.Path {
			batch.Stats.Skipped++
			continue
		}
		toCompare = append(toCompare, i)
	}

	workers := cfg.Performance.BatchWorkers
	if workers < 1 {
		workers = 1
	}

	slots := make([]*models.SimilarityResult, len(candidates))
	total := len(toCompare)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, i := range toCompare {
		candidate := candidates[i]
		slot := i
		g.Go(func() error {
			res, err := e.AnalyzeSimilarity(gctx, target, candidate)
			if err != nil {
				return fmt.Errorf("comparing %s with %s: %w", target.Path, candidate.Path, err)
			}
			slots[slot] = res
			n := done.Add(1)
			if e.progress != nil {
				e.progress(int(n), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range slots {
		if res == nil {
			continue
		}
		batch.Results = append(batch.Results, *res)
		if res.Metadata.CacheHit {
			batch.Stats.CacheHits++
		}
	}
	batch.Stats.Compared = len(batch.Results)

	// Stable: equal score and confidence keep candidate order
	sort.SliceStable(batch.Results, func(i, j int) bool {
		ri, rj := batch.Results[i], batch.Results[j]
		if ri.OverallScore != rj.OverallScore {
			return ri.OverallScore > rj.OverallScore
		}
		return ri.OverallConfidence > rj.OverallConfidence
	})

	for _, res := range batch.Results {
		if res.OverallScore >= cfg.Thresholds.Identical {
			batch.PotentialDuplicates = append(batch.PotentialDuplicates, res)
		}
	}
	if len(batch.Results) > 0 && batch.Results[0].OverallScore >= minScore {
		best := batch.Results[0]
		batch.BestMatch = &best
	}

	batch.TotalAnalysisTimeMs = e.now().Sub(start).Milliseconds()
	e.logger.Info(ctx, "batch analysis complete", logging.Fields{
		"target":     target.Path,
		"candidates": batch.Stats.Candidates,
		"compared":   batch.Stats.Compared,
		"duplicates": len(batch.PotentialDuplicates),
	})
	return batch, nil
}
