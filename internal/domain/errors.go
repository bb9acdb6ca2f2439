package domain

import "fmt"

// ConfigError signals a missing or broken market/playlist mapping.
// Not retryable without an operator fix.
type ConfigError struct {
	Market string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Market != "" {
		return fmt.Sprintf("config error for market %q: %s", e.Market, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// SourceUnavailableError signals a failed fetch from the external chart
// source (rate limit, auth failure, timeout). Safe to retry later; no
// snapshot data has been committed.
type SourceUnavailableError struct {
	Err        error
	Op         string
	StatusCode int
}

func (e *SourceUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source unavailable during %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("source unavailable during %s: %v", e.Op, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// ValidationError signals bad caller input. Rejected immediately, no side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
