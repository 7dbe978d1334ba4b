package similarity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/logging"
	"github.com/sdejongh/filesim/pkg/models"
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger (default: discard)
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for cache expiry and timings
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithProgress sets a callback invoked after each batch comparison.
// It may be called from several goroutines at once.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// EngineStats is a snapshot of engine counters
type EngineStats struct {
	Comparisons   int64 `json:"comparisons"`
	ShortCircuits int64 `json:"short_circuits"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	LayerFailures int64 `json:"layer_failures"`
	Timeouts      int64 `json:"timeouts"`
	CacheEntries  int   `json:"cache_entries"`
}

// Engine scores file pairs. All methods are safe for concurrent use.
type Engine struct {
	cfg          atomic.Pointer[config.SimilarityConfig]
	cfgMu        sync.Mutex
	orchestrator *Orchestrator
	layerNames   []string
	cache        *ResultCache
	logger       logging.Logger
	now          func() time.Time
	progress     func(done, total int)

	comparisons   atomic.Int64
	shortCircuits atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	timeouts      atomic.Int64
}

// NewEngine validates the configuration and layer set and returns a ready engine
func NewEngine(cfg config.SimilarityConfig, layers []Layer, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := validateLayers(layers); err != nil {
		return nil, &ConfigError{Err: err}
	}

	e := &Engine{
		logger: logging.NewNullLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	active := cfg.Clone()
	e.cfg.Store(&active)
	e.orchestrator = NewOrchestrator(layers, e.logger)
	e.layerNames = e.orchestrator.Layers()
	e.cache = NewResultCache(active.Performance.CacheTTL(), active.Performance.CacheMaxEntries, e.now)

	return e, nil
}

// GetConfig returns a copy of the active configuration
func (e *Engine) GetConfig() config.SimilarityConfig {
	return e.cfg.Load().Clone()
}

// UpdateConfig merges patch into the active configuration.
// On error the previous configuration stays active; on success the cache is cleared.
func (e *Engine) UpdateConfig(patch config.Partial) error {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	merged, err := config.Merge(*e.cfg.Load(), patch)
	if err != nil {
		e.logger.Warn(context.Background(), "configuration update rejected", logging.Fields{"error": err.Error()})
		return &ConfigError{Err: err}
	}

	e.cfg.Store(&merged)
	e.cache.Reset(merged.Performance.CacheTTL(), merged.Performance.CacheMaxEntries)
	e.logger.Info(context.Background(), "configuration updated", logging.Fields{"config": merged.String()})
	return nil
}

// ClearCache drops every cached result
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Comparisons:   e.comparisons.Load(),
		ShortCircuits: e.shortCircuits.Load(),
		CacheHits:     e.cacheHits.Load(),
		CacheMisses:   e.cacheMisses.Load(),
		LayerFailures: e.orchestrator.Failures(),
		Timeouts:      e.timeouts.Load(),
		CacheEntries:  e.cache.Len(),
	}
}

// AnalyzeSimilarity scores the pair (a, b).
// a is the source (new) file and b the target (existing) file; the score is
// symmetric but the update/merge recommendation depends on the orientation.
func (e *Engine) AnalyzeSimilarity(ctx context.Context, a, b models.FileDescriptor) (*models.SimilarityResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateInput(a); err != nil {
		return nil, err
	}
	if err := validateInput(b); err != nil {
		return nil, err
	}

	// Generation before config: UpdateConfig stores then resets, so a result
	// computed under a replaced config always carries a stale generation.
	gen := e.cache.Generation()
	cfg := e.cfg.Load()
	start := e.now()
	e.comparisons.Add(1)

	if IsIdentical(a, b) {
		e.shortCircuits.Add(1)
		return e.identicalResult(*cfg, a, b, start), nil
	}

	if cfg.Performance.EnableCache {
		if cached, ok := e.cache.Get(a.Path, b.Path); ok {
			e.cacheHits.Add(1)
			e.logger.Debug(ctx, "cache hit", logging.Fields{"source": a.Path, "target": b.Path})
			return orient(cached, *cfg, a, b), nil
		}
		e.cacheMisses.Add(1)
	}

	scores, used, err := e.orchestrator.RunLayers(ctx, a, b, *cfg)
	if err != nil {
		var timeout *TimeoutError
		if errors.As(err, &timeout) {
			e.timeouts.Add(1)
		}
		e.logger.Error(ctx, "similarity analysis failed", err, logging.Fields{"source": a.Path, "target": b.Path})
		return nil, err
	}

	score, confidence := Aggregate(scores, used, cfg.LayerWeights)
	result := &models.SimilarityResult{
		OverallScore:      score,
		OverallConfidence: confidence,
		LayerScores:       scores,
		Recommendation:    Recommend(score, confidence, scores, cfg.LayerWeights, a, b, cfg.Thresholds),
		Metadata: models.ResultMetadata{
			AnalysisID:       uuid.NewString(),
			AnalysisTime:     start,
			ProcessingTimeMs: e.now().Sub(start).Milliseconds(),
			AlgorithmsUsed:   used,
			SourceFile:       a.Path,
			TargetFile:       b.Path,
		},
	}

	e.logger.Debug(ctx, "pair analyzed", logging.Fields{
		"analysis_id": result.Metadata.AnalysisID,
		"source":      a.Path,
		"target":      b.Path,
		"score":       score,
		"action":      string(result.Recommendation.Action),
	})

	if cfg.Performance.EnableCache {
		e.cache.Set(a.Path, b.Path, result, gen)
	}

	return result.Clone(), nil
}

func (e *Engine) identicalResult(cfg config.SimilarityConfig, a, b models.FileDescriptor, start time.Time) *models.SimilarityResult {
	scores, used := identicalScores(e.layerNames, cfg)
	return &models.SimilarityResult{
		OverallScore:      1,
		OverallConfidence: 1,
		LayerScores:       scores,
		Recommendation: models.Recommendation{
			Action:        models.ActionDuplicate,
			Confidence:    1,
			Reason:        "files are identical",
			InvolvedFiles: []string{a.Path, b.Path},
		},
		Metadata: models.ResultMetadata{
			AnalysisID:       uuid.NewString(),
			AnalysisTime:     start,
			ProcessingTimeMs: e.now().Sub(start).Milliseconds(),
			AlgorithmsUsed:   used,
			SourceFile:       a.Path,
			TargetFile:       b.Path,
			ShortCircuit:     true,
		},
	}
}

// orient returns a deep copy of a cached result seen from the (a, b) orientation.
// The cached value itself is never modified.
func orient(cached *models.SimilarityResult, cfg config.SimilarityConfig, a, b models.FileDescriptor) *models.SimilarityResult {
	out := cached.Clone()
	out.Metadata.CacheHit = true
	if cached.Metadata.SourceFile == a.Path {
		return out
	}

	out.Metadata.SourceFile = a.Path
	out.Metadata.TargetFile = b.Path
	out.Recommendation = Recommend(out.OverallScore, out.OverallConfidence, out.LayerScores, cfg.LayerWeights, a, b, cfg.Thresholds)
	return out
}

func validateInput(d models.FileDescriptor) error {
	if err := d.Validate(); err != nil {
		return &AnalysisError{Path: strings.TrimSpace(d.Path), Reason: err.Error()}
	}
	return nil
}
