package config

import (
	"fmt"
	"os"
	"strconv"
)

// ApplyEnv overrides similarity settings from environment variables
//
// Environment variables:
//   - FILESIM_MAX_ANALYSIS_MS: Analysis timeout in milliseconds
//   - FILESIM_ENABLE_CACHE: Enable the result cache (true/false)
//   - FILESIM_CACHE_TTL_MS: Cache TTL in milliseconds
//   - FILESIM_THRESHOLD_IDENTICAL: Duplicate threshold (0.0-1.0)
//   - FILESIM_THRESHOLD_SIMILAR: Merge/update threshold (0.0-1.0)
//   - FILESIM_THRESHOLD_DIFFERENT: Review threshold (0.0-1.0)
//   - FILESIM_BATCH_WORKERS: Concurrent comparisons in batch mode
//
// The overrides go through Merge, so an invalid combination leaves cfg untouched.
func ApplyEnv(cfg *Config) error {
	var th ThresholdsPatch
	var perf PerformancePatch

	if err := parseEnvInt("FILESIM_MAX_ANALYSIS_MS", &perf.MaxAnalysisTimeMs); err != nil {
		return err
	}
	if err := parseEnvBool("FILESIM_ENABLE_CACHE", &perf.EnableCache); err != nil {
		return err
	}
	if err := parseEnvInt("FILESIM_CACHE_TTL_MS", &perf.CacheTTLMs); err != nil {
		return err
	}
	if err := parseEnvInt("FILESIM_BATCH_WORKERS", &perf.BatchWorkers); err != nil {
		return err
	}
	if err := parseEnvFloat("FILESIM_THRESHOLD_IDENTICAL", &th.Identical); err != nil {
		return err
	}
	if err := parseEnvFloat("FILESIM_THRESHOLD_SIMILAR", &th.Similar); err != nil {
		return err
	}
	if err := parseEnvFloat("FILESIM_THRESHOLD_DIFFERENT", &th.Different); err != nil {
		return err
	}

	merged, err := Merge(cfg.Similarity, Partial{Thresholds: &th, Performance: &perf})
	if err != nil {
		return fmt.Errorf("invalid configuration from environment: %w", err)
	}
	cfg.Similarity = merged
	return nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest **float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Keep current value
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = &parsed
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest **int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = &parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest **bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = &parsed
	return nil
}
