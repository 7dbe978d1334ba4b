package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/logging"
	"github.com/sdejongh/filesim/pkg/models"
)

// Explanations recorded for layers that did not run
const (
	explainDisabled      = "layer disabled"
	explainNotApplicable = "layer not applicable to these files"
)

// Orchestrator runs the registered layers concurrently under one deadline
type Orchestrator struct {
	layers   []Layer
	logger   logging.Logger
	failures atomic.Int64
}

// NewOrchestrator creates an orchestrator for an ordered set of layers
func NewOrchestrator(layers []Layer, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Orchestrator{
		layers: append([]Layer(nil), layers...),
		logger: logger,
	}
}

// Layers returns the registered layer names in order
func (o *Orchestrator) Layers() []string {
	names := make([]string, len(o.layers))
	for i, l := range o.layers {
		names[i] = l.Name()
	}
	return names
}

// Failures returns how many layer invocations failed or panicked
func (o *Orchestrator) Failures() int64 {
	return o.failures.Load()
}

type layerOutcome struct {
	name  string
	score models.LayerScore
	err   error
}

// RunLayers scores the pair with every enabled and applicable layer.
//
// The returned map holds an entry for every registered layer; layers that
// were disabled, declined or failed are recorded with a zero score. The
// returned slice lists the layers actually invoked, in registration order.
// If the analysis budget elapses first, a *TimeoutError is returned and
// any partial scores are discarded.
func (o *Orchestrator) RunLayers(ctx context.Context, a, b models.FileDescriptor, cfg config.SimilarityConfig) (map[string]models.LayerScore, []string, error) {
	scores := make(map[string]models.LayerScore, len(o.layers))
	var launched []Layer
	for _, l := range o.layers {
		name := l.Name()
		switch {
		case !cfg.IsEnabled(name):
			scores[name] = models.ZeroScore(explainDisabled)
		case !l.CanAnalyze(a, b):
			scores[name] = models.ZeroScore(explainNotApplicable)
		default:
			launched = append(launched, l)
		}
	}

	used := make([]string, len(launched))
	for i, l := range launched {
		used[i] = l.Name()
	}
	if len(launched) == 0 {
		return scores, used, nil
	}

	timeout := cfg.Performance.MaxAnalysisTime()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limit := cfg.Performance.MaxParallelLayers
	if limit <= 0 || limit > len(launched) {
		limit = len(launched)
	}
	sem := semaphore.NewWeighted(int64(limit))

	// Buffered so that layers finishing after the deadline never block
	results := make(chan layerOutcome, len(launched))
	for _, l := range launched {
		go runLayer(ctx, sem, l, a, b, results)
	}

	pending := make(map[string]bool, len(launched))
	for _, name := range used {
		pending[name] = true
	}

	for len(pending) > 0 {
		select {
		case out := <-results:
			if out.err != nil && ctx.Err() != nil {
				// The layer gave up because the deadline passed
				return nil, nil, deadlineError(ctx, timeout, pending)
			}
			delete(pending, out.name)
			if out.err != nil {
				o.failures.Add(1)
				o.logger.Warn(ctx, "layer failed, scoring zero", logging.Fields{
					"layer":  out.name,
					"source": a.Path,
					"target": b.Path,
					"error":  out.err.Error(),
				})
				scores[out.name] = models.ZeroScore(out.err.Error())
				continue
			}
			scores[out.name] = clampScore(out.score)

		case <-ctx.Done():
			return nil, nil, deadlineError(ctx, timeout, pending)
		}
	}

	return scores, used, nil
}

// deadlineError reports a finished context as a timeout or a cancellation
func deadlineError(ctx context.Context, timeout time.Duration, pending map[string]bool) error {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout, Pending: names}
	}
	return fmt.Errorf("analysis cancelled: %w", ctx.Err())
}

// runLayer invokes one layer and always reports exactly one outcome
func runLayer(ctx context.Context, sem *semaphore.Weighted, l Layer, a, b models.FileDescriptor, out chan<- layerOutcome) {
	name := l.Name()
	result := layerOutcome{name: name}

	defer func() {
		if r := recover(); r != nil {
			result = layerOutcome{name: name, err: &LayerError{Layer: name, Err: fmt.Errorf("panic: %v", r)}}
		}
		out <- result
	}()

	if err := sem.Acquire(ctx, 1); err != nil {
		result.err = &LayerError{Layer: name, Err: err}
		return
	}
	defer sem.Release(1)

	score, err := l.Analyze(ctx, a, b)
	if err != nil {
		result.err = &LayerError{Layer: name, Err: err}
		return
	}
	result.score = score
}

// clampScore forces score and confidence into [0,1]
func clampScore(s models.LayerScore) models.LayerScore {
	s.Score = clamp01(s.Score)
	s.Confidence = clamp01(s.Confidence)
	return s
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
