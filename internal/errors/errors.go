// Package errors provides centralized error definitions and error handling utilities
// for the mpsc module. It defines the channel result sentinels, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Channel results are plain sentinels so the send and receive hot paths never
// allocate:
//   - ErrDisconnected: the other side has no live handles (and, for receive,
//     nothing is buffered)
//   - ErrEmpty: a non-blocking receive found nothing on an open channel
//   - ErrTimedOut: a bounded receive elapsed with no data
//
// Structured errors carry context for the rarer failure paths:
//   - ChannelError: misuse or lifecycle failures tied to a named channel
//   - ValidationError: invalid input such as a payload of the wrong size
//   - TimeoutError: an operation outside the channel exceeded its budget
//
// # Usage
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDisconnected) { ... }
//
//	var chErr *errors.ChannelError
//	if errors.As(err, &chErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry (Empty, TimedOut)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Channel result sentinels
var (
	// ErrDisconnected indicates the opposite side of the channel has no live
	// handles. Receivers only see it once the buffer is drained.
	ErrDisconnected = New("channel disconnected")
	// ErrEmpty indicates a non-blocking receive found no buffered message.
	ErrEmpty = New("channel empty")
	// ErrTimedOut indicates a bounded receive elapsed before a message arrived.
	ErrTimedOut = New("receive timed out")
)

// Handle misuse sentinels
var (
	// ErrHandleClosed indicates a Sender or Receiver was used after Close.
	ErrHandleClosed = New("handle already closed")
	// ErrMultipleReceivers indicates a second live receiver was attached.
	ErrMultipleReceivers = New("multiple receivers attached")
	// ErrSizeMismatch indicates a payload does not match the channel's message size.
	ErrSizeMismatch = New("payload size mismatch")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ClassifiedError is the base interface for the structured errors in this package.
type ClassifiedError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// -----------------------------------------------------------------------------
// Channel Errors
// -----------------------------------------------------------------------------

// ChannelError reports a failure tied to a specific channel and operation.
//
// Example:
//
//	err := errors.NewChannelError("attach receiver", errors.ErrMultipleReceivers)
//	err = err.WithChannel("jobs").WithOp("new_receiver")
//	fmt.Println(err) // "channel error [channel=jobs, op=new_receiver]: attach receiver: multiple receivers attached"
type ChannelError struct {
	baseError
	Channel string
	Op      string
}

// NewChannelError creates a new ChannelError.
func NewChannelError(message string, cause error) *ChannelError {
	return &ChannelError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithChannel adds the channel name to the error context.
func (e *ChannelError) WithChannel(name string) *ChannelError {
	e.Channel = name
	return e
}

// WithOp adds the failing operation to the error context.
func (e *ChannelError) WithOp(op string) *ChannelError {
	e.Op = op
	return e
}

// WithSeverity sets the error severity.
func (e *ChannelError) WithSeverity(s Severity) *ChannelError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ChannelError) WithRetryable(r bool) *ChannelError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ChannelError) Error() string {
	var parts []string
	if e.Channel != "" {
		parts = append(parts, fmt.Sprintf("channel=%s", e.Channel))
	}
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	prefix := "channel error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("channel error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ChannelError) Is(target error) bool {
	if _, ok := target.(*ChannelError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("payload has wrong length")
//	err = err.WithField("payload").WithValue(12)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for producers", 5*time.Second)
//	fmt.Println(err) // "timeout error: waiting for producers (timeout: 5s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:   operation,
			severity:  SeverityWarning,
			retryable: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing ClassifiedError with IsRetryable() returning true
//   - ErrEmpty and ErrTimedOut channel results
//   - Errors wrapping ErrTimeout
//
// ErrDisconnected is never retryable on the same handle: the channel only
// reopens when a new handle is attached.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var classified ClassifiedError
	if As(err, &classified) {
		return classified.IsRetryable()
	}

	return Is(err, ErrEmpty) || Is(err, ErrTimedOut) || Is(err, ErrTimeout)
}

// GetSeverity returns the severity level of the error.
// Channel result sentinels map to their expected-outcome severities;
// unknown errors default to SeverityError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var classified ClassifiedError
	if As(err, &classified) {
		return classified.Severity()
	}

	switch {
	case Is(err, ErrEmpty), Is(err, ErrTimedOut):
		return SeverityDebug
	case Is(err, ErrDisconnected):
		return SeverityInfo
	case Is(err, ErrHandleClosed):
		return SeverityWarning
	}
	return SeverityError
}

// IsChannelResult reports whether err is one of the expected outcomes a
// caller branches on after a send or receive, as opposed to misuse.
func IsChannelResult(err error) bool {
	return Is(err, ErrDisconnected) || Is(err, ErrEmpty) || Is(err, ErrTimedOut)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to start watcher")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to watch %s", root)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
