package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sdejongh/filesim/pkg/models"
)

// Layer names understood by the default configuration
const (
	LayerFilename  = "filename"
	LayerStructure = "structure"
	LayerSemantic  = "semantic"
	LayerContent   = "content"
)

// weightEpsilon is the tolerance allowed on the sum of layer weights
const weightEpsilon = 1e-6

// SimilarityConfig holds the engine configuration.
// Values are treated as immutable once validated: use Merge to derive a new one.
type SimilarityConfig struct {
	LayerWeights  map[string]float64 `yaml:"layer_weights" json:"layer_weights"`
	EnabledLayers map[string]bool    `yaml:"enabled_layers" json:"enabled_layers"`
	Thresholds    Thresholds         `yaml:"thresholds" json:"thresholds"`
	Performance   Performance        `yaml:"performance" json:"performance"`
}

// Thresholds drive the recommendation ladder
type Thresholds struct {
	Identical float64 `yaml:"identical" json:"identical"`
	Similar   float64 `yaml:"similar" json:"similar"`
	Different float64 `yaml:"different" json:"different"`
}

// Performance holds timing, cache and parallelism settings
type Performance struct {
	MaxAnalysisTimeMs int  `yaml:"max_analysis_time_ms" json:"max_analysis_time_ms"`
	EnableCache       bool `yaml:"enable_cache" json:"enable_cache"`
	CacheTTLMs        int  `yaml:"cache_ttl_ms" json:"cache_ttl_ms"`
	// CacheMaxEntries bounds the cache size (0 = unbounded)
	CacheMaxEntries int `yaml:"cache_max_entries" json:"cache_max_entries"`
	// MaxParallelLayers bounds concurrent layer calls per comparison (0 = one per layer)
	MaxParallelLayers int `yaml:"max_parallel_layers" json:"max_parallel_layers"`
	// BatchWorkers bounds concurrent comparisons in a batch (0 = 1)
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"`
}

// DefaultSimilarity returns the default engine configuration
func DefaultSimilarity() SimilarityConfig {
	return SimilarityConfig{
		LayerWeights: map[string]float64{
			LayerFilename:  0.2,
			LayerStructure: 0.2,
			LayerSemantic:  0.3,
			LayerContent:   0.3,
		},
		EnabledLayers: map[string]bool{
			LayerFilename:  true,
			LayerStructure: true,
			LayerSemantic:  true,
			LayerContent:   true,
		},
		Thresholds: Thresholds{
			Identical: 0.95,
			Similar:   0.75,
			Different: 0.30,
		},
		Performance: Performance{
			MaxAnalysisTimeMs: 5000,
			EnableCache:       true,
			CacheTTLMs:        5 * 60 * 1000,
			CacheMaxEntries:   10000,
			MaxParallelLayers: 0,
			BatchWorkers:      4,
		},
	}
}

// MaxAnalysisTime returns the analysis budget as a duration
func (p Performance) MaxAnalysisTime() time.Duration {
	return time.Duration(p.MaxAnalysisTimeMs) * time.Millisecond
}

// CacheTTL returns the cache TTL as a duration
func (p Performance) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLMs) * time.Millisecond
}

// IsEnabled reports whether the named layer is enabled
func (c SimilarityConfig) IsEnabled(name string) bool {
	return c.EnabledLayers[name]
}

// Weight returns the weight of the named layer (0 when unset)
func (c SimilarityConfig) Weight(name string) float64 {
	return c.LayerWeights[name]
}

// Validate checks weights, thresholds and performance settings
func (c SimilarityConfig) Validate() error {
	names := make([]string, 0, len(c.LayerWeights))
	for name := range c.LayerWeights {
		names = append(names, name)
	}
	sort.Strings(names)

	var total float64
	for _, name := range names {
		w := c.LayerWeights[name]
		if math.IsNaN(w) || w < 0 || w > 1 {
			return &models.ValidationError{
				Field:   "layer_weights." + name,
				Message: fmt.Sprintf("must be between 0.0 and 1.0 (got %v)", w),
			}
		}
		total += w
	}
	if total > 1+weightEpsilon {
		return &models.ValidationError{
			Field:   "layer_weights",
			Message: fmt.Sprintf("weights must sum to at most 1.0 (got %.4f)", total),
		}
	}

	t := c.Thresholds
	for _, th := range []struct {
		field string
		value float64
	}{
		{"thresholds.identical", t.Identical},
		{"thresholds.similar", t.Similar},
		{"thresholds.different", t.Different},
	} {
		if math.IsNaN(th.value) || th.value < 0 || th.value > 1 {
			return &models.ValidationError{
				Field:   th.field,
				Message: fmt.Sprintf("must be between 0.0 and 1.0 (got %v)", th.value),
			}
		}
	}
	if t.Similar > t.Identical {
		return &models.ValidationError{
			Field:   "thresholds.similar",
			Message: fmt.Sprintf("must not exceed identical (%.2f > %.2f)", t.Similar, t.Identical),
		}
	}
	if t.Different > t.Similar {
		return &models.ValidationError{
			Field:   "thresholds.different",
			Message: fmt.Sprintf("must not exceed similar (%.2f > %.2f)", t.Different, t.Similar),
		}
	}

	p := c.Performance
	if p.MaxAnalysisTimeMs <= 0 {
		return &models.ValidationError{Field: "performance.max_analysis_time_ms", Message: "must be positive"}
	}
	if p.EnableCache && p.CacheTTLMs <= 0 {
		return &models.ValidationError{Field: "performance.cache_ttl_ms", Message: "must be positive when the cache is enabled"}
	}
	if p.CacheTTLMs < 0 {
		return &models.ValidationError{Field: "performance.cache_ttl_ms", Message: "cannot be negative"}
	}
	if p.CacheMaxEntries < 0 {
		return &models.ValidationError{Field: "performance.cache_max_entries", Message: "cannot be negative"}
	}
	if p.MaxParallelLayers < 0 {
		return &models.ValidationError{Field: "performance.max_parallel_layers", Message: "cannot be negative"}
	}
	if p.BatchWorkers < 0 {
		return &models.ValidationError{Field: "performance.batch_workers", Message: "cannot be negative"}
	}
	return nil
}

// Clone returns a deep copy
func (c SimilarityConfig) Clone() SimilarityConfig {
	out := c
	out.LayerWeights = make(map[string]float64, len(c.LayerWeights))
	for k, v := range c.LayerWeights {
		out.LayerWeights[k] = v
	}
	out.EnabledLayers = make(map[string]bool, len(c.EnabledLayers))
	for k, v := range c.EnabledLayers {
		out.EnabledLayers[k] = v
	}
	return out
}

// String returns a human-readable representation of the config
func (c SimilarityConfig) String() string {
	return fmt.Sprintf(
		"SimilarityConfig{Weights: %v, Enabled: %v, Identical: %.2f, Similar: %.2f, Different: %.2f, "+
			"Timeout: %dms, Cache: %t, TTL: %dms}",
		c.LayerWeights, c.EnabledLayers,
		c.Thresholds.Identical, c.Thresholds.Similar, c.Thresholds.Different,
		c.Performance.MaxAnalysisTimeMs, c.Performance.EnableCache, c.Performance.CacheTTLMs,
	)
}

// Partial is a field-by-field update to a SimilarityConfig.
// Nil pointers and absent map keys leave the base value untouched.
type Partial struct {
	LayerWeights  map[string]float64
	EnabledLayers map[string]bool
	Thresholds    *ThresholdsPatch
	Performance   *PerformancePatch
}

// ThresholdsPatch updates individual thresholds
type ThresholdsPatch struct {
	Identical *float64
	Similar   *float64
	Different *float64
}

// PerformancePatch updates individual performance settings
type PerformancePatch struct {
	MaxAnalysisTimeMs *int
	EnableCache       *bool
	CacheTTLMs        *int
	CacheMaxEntries   *int
	MaxParallelLayers *int
	BatchWorkers      *int
}

// Merge applies patch over base and validates the merged result.
// base is never modified; on error the returned config is the zero value.
func Merge(base SimilarityConfig, patch Partial) (SimilarityConfig, error) {
	merged := base.Clone()

	for name, w := range patch.LayerWeights {
		merged.LayerWeights[name] = w
	}
	for name, on := range patch.EnabledLayers {
		merged.EnabledLayers[name] = on
	}

	if th := patch.Thresholds; th != nil {
		setFloat(&merged.Thresholds.Identical, th.Identical)
		setFloat(&merged.Thresholds.Similar, th.Similar)
		setFloat(&merged.Thresholds.Different, th.Different)
	}

	if p := patch.Performance; p != nil {
		setInt(&merged.Performance.MaxAnalysisTimeMs, p.MaxAnalysisTimeMs)
		if p.EnableCache != nil {
			merged.Performance.EnableCache = *p.EnableCache
		}
		setInt(&merged.Performance.CacheTTLMs, p.CacheTTLMs)
		setInt(&merged.Performance.CacheMaxEntries, p.CacheMaxEntries)
		setInt(&merged.Performance.MaxParallelLayers, p.MaxParallelLayers)
		setInt(&merged.Performance.BatchWorkers, p.BatchWorkers)
	}

	if err := merged.Validate(); err != nil {
		return SimilarityConfig{}, err
	}
	return merged, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Float returns a pointer to v, for building patches
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building patches
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building patches
func Bool(v bool) *bool { return &v }
