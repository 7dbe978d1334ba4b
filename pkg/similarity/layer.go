// Package similarity implements the multi-layer file similarity engine.
//
// An Engine runs a fixed, ordered set of Layers against a file pair,
// combines their scores with the configured weights and maps the result
// onto a recommended action. Results are memoized in a TTL cache keyed
// on the unordered pair of paths.
package similarity

import (
	"context"
	"fmt"

	"github.com/sdejongh/filesim/pkg/models"
)

// Layer is a pluggable similarity heuristic.
// Implementations must be safe for concurrent use.
type Layer interface {
	// Name returns the layer name used for weights and enablement
	Name() string

	// CanAnalyze reports whether the layer applies to the pair.
	// A declining layer is treated exactly like a disabled one.
	CanAnalyze(a, b models.FileDescriptor) bool

	// Analyze compares the pair. ctx carries the analysis deadline;
	// layers should return promptly once it is done.
	Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error)
}

// LayerFunc adapts a plain function into a Layer that accepts every pair
type LayerFunc struct {
	LayerName string
	Fn        func(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error)
}

// Name returns the layer name
func (f LayerFunc) Name() string { return f.LayerName }

// CanAnalyze always returns true
func (f LayerFunc) CanAnalyze(a, b models.FileDescriptor) bool { return true }

// Analyze calls the wrapped function
func (f LayerFunc) Analyze(ctx context.Context, a, b models.FileDescriptor) (models.LayerScore, error) {
	return f.Fn(ctx, a, b)
}

// validateLayers rejects nil layers and empty or duplicate names
func validateLayers(layers []Layer) error {
	seen := make(map[string]bool, len(layers))
	for i, l := range layers {
		if l == nil {
			return fmt.Errorf("layer at index %d is nil", i)
		}
		name := l.Name()
		if name == "" {
			return fmt.Errorf("layer at index %d has an empty name", i)
		}
		if seen[name] {
			return fmt.Errorf("layer %q registered twice", name)
		}
		seen[name] = true
	}
	return nil
}
