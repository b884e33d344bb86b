package config

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "bench.producers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

const (
	maxProducers   = 10000
	maxPayloadSize = 1 << 20 // 1MiB
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateChannel()...)
	errors = append(errors, c.validateBench()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateMetrics()...)

	return errors
}

func (c *Config) validateChannel() []ValidationError {
	var errors []ValidationError

	if c.Channel.FreelistLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "channel.freelist_limit",
			Value:   c.Channel.FreelistLimit,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateBench() []ValidationError {
	var errors []ValidationError

	if c.Bench.Producers < 1 || c.Bench.Producers > maxProducers {
		errors = append(errors, ValidationError{
			Field:   "bench.producers",
			Value:   c.Bench.Producers,
			Message: fmt.Sprintf("must be between 1 and %d", maxProducers),
		})
	}

	if c.Bench.Messages < 1 {
		errors = append(errors, ValidationError{
			Field:   "bench.messages",
			Value:   c.Bench.Messages,
			Message: "must be positive",
		})
	}

	// Payloads carry the producer id and sequence number
	if c.Bench.PayloadSize < MinPayloadSize || c.Bench.PayloadSize > maxPayloadSize {
		errors = append(errors, ValidationError{
			Field:   "bench.payload_size",
			Value:   c.Bench.PayloadSize,
			Message: fmt.Sprintf("must be between %d and %d bytes", MinPayloadSize, maxPayloadSize),
		})
	}

	if c.Bench.RecvTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "bench.recv_timeout_ms",
			Value:   c.Bench.RecvTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	errors = append(errors, validatePatterns(c.Watch.Include, "watch.include")...)
	errors = append(errors, validatePatterns(c.Watch.Exclude, "watch.exclude")...)

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validatePatterns checks that every glob compiles
func validatePatterns(patterns []string, fieldPrefix string) []ValidationError {
	var errors []ValidationError

	for i, p := range patterns {
		field := fmt.Sprintf("%s[%d]", fieldPrefix, i)
		if strings.TrimSpace(p) == "" {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   p,
				Message: "pattern cannot be empty",
			})
			continue
		}
		if _, err := glob.Compile(p, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   p,
				Message: fmt.Sprintf("invalid glob: %v", err),
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateMetrics() []ValidationError {
	var errors []ValidationError

	if !c.Metrics.Enabled {
		return errors
	}
	if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "metrics.addr",
			Value:   c.Metrics.Addr,
			Message: "must be a host:port listen address",
		})
	}

	return errors
}
