package similarity

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdejongh/filesim/pkg/config"
	"github.com/sdejongh/filesim/pkg/models"
)

// stubLayer is a configurable Layer for engine tests
type stubLayer struct {
	name       string
	score      float64
	confidence float64
	err        error
	panicMsg   string
	decline    bool
	// block waits for the context to be done
	block bool
	// release, when set, blocks regardless of the context until closed
	release chan struct{}
	calls   atomic.Int32
}

func newStub(name string, score float64) *stubLayer {
	return &stubLayer{name: name, score: score, confidence: 1}
}

func (s *stubLayer) Name() string { return s.name }

func (s *stubLayer) CanAnalyze(a, b models.FileDescriptor) bool { return !s.decline }

func (s *stubLayer) Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error) {
	s.calls.Add(1)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.block {
		<-ctx.Done()
		return models.LayerScore{}, ctx.Err()
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return models.LayerScore{}, s.err
	}
	return models.LayerScore{Score: s.score, Confidence: s.confidence, Explanation: "stub"}, nil
}

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// weightedConfig enables exactly the given layers with the given weights
func weightedConfig(weights map[string]float64) config.SimilarityConfig {
	cfg := config.DefaultSimilarity()
	cfg.LayerWeights = weights
	cfg.EnabledLayers = make(map[string]bool, len(weights))
	for name := range weights {
		cfg.EnabledLayers[name] = true
	}
	return cfg
}

func doc(path, content string) models.FileDescriptor {
	return models.NewFileDescriptor(path, content, models.FileMetadata{
		Size:      int64(len(content)),
		Extension: ".md",
		MimeType:  "text/markdown",
	})
}

func newTestEngine(t *testing.T, cfg config.SimilarityConfig, layers []Layer, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, layers, opts...)
	require.NoError(t, err)
	return engine
}
