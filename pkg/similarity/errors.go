package similarity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for errors.Is checks
var (
	// ErrInvalidConfig matches every *ConfigError
	ErrInvalidConfig = errors.New("invalid similarity configuration")
	// ErrInvalidInput matches every *AnalysisError
	ErrInvalidInput = errors.New("invalid analysis input")
	// ErrTimeout matches every *TimeoutError
	ErrTimeout = errors.New("similarity analysis timed out")
)

// ConfigError reports a rejected configuration.
// The engine keeps its last valid configuration when one is returned.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidConfig, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// AnalysisError reports malformed input such as an empty path
type AnalysisError struct {
	Path   string
	Reason string
}

func (e *AnalysisError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%v %q: %s", ErrInvalidInput, e.Path, e.Reason)
}

func (e *AnalysisError) Is(target error) bool { return target == ErrInvalidInput }

// TimeoutError reports that the analysis budget elapsed before every layer finished.
// No partial result accompanies it.
type TimeoutError struct {
	Timeout time.Duration
	// Pending lists the layers still running at the deadline
	Pending []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v after %v (pending layers: %s)", ErrTimeout, e.Timeout, strings.Join(e.Pending, ", "))
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// LayerError wraps a failure inside one analyzer layer.
// It never reaches callers: the layer is scored zero and analysis continues.
type LayerError struct {
	Layer string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %s: %v", e.Layer, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }
