package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ChannelError Tests
// -----------------------------------------------------------------------------

func TestNewChannelError(t *testing.T) {
	err := NewChannelError("attach receiver", ErrMultipleReceivers)

	if err.message != "attach receiver" {
		t.Errorf("message = %q, want %q", err.message, "attach receiver")
	}
	if err.cause != ErrMultipleReceivers {
		t.Errorf("cause = %v, want %v", err.cause, ErrMultipleReceivers)
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
}

func TestChannelError_WithMethods(t *testing.T) {
	err := NewChannelError("test", nil).
		WithChannel("jobs").
		WithOp("send").
		WithSeverity(SeverityCritical).
		WithRetryable(true)

	if err.Channel != "jobs" {
		t.Errorf("Channel = %q, want %q", err.Channel, "jobs")
	}
	if err.Op != "send" {
		t.Errorf("Op = %q, want %q", err.Op, "send")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

func TestChannelError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ChannelError
		want string
	}{
		{
			name: "basic error",
			err:  NewChannelError("test error", nil),
			want: "channel error: test error",
		},
		{
			name: "with cause",
			err:  NewChannelError("test error", ErrHandleClosed),
			want: "channel error: test error: handle already closed",
		},
		{
			name: "with channel",
			err:  NewChannelError("test error", nil).WithChannel("jobs"),
			want: "channel error [channel=jobs]: test error",
		},
		{
			name: "with channel, op and cause",
			err:  NewChannelError("attach", ErrMultipleReceivers).WithChannel("jobs").WithOp("new_receiver"),
			want: "channel error [channel=jobs, op=new_receiver]: attach: multiple receivers attached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChannelError_Is(t *testing.T) {
	err := NewChannelError("attach", ErrMultipleReceivers).WithChannel("jobs")

	if !Is(err, &ChannelError{}) {
		t.Error("Is(ChannelError{}) = false, want true")
	}
	if !Is(err, ErrMultipleReceivers) {
		t.Error("Is(ErrMultipleReceivers) = false, want true")
	}
	if Is(err, ErrDisconnected) {
		t.Error("Is(ErrDisconnected) = true, want false")
	}
}

func TestChannelError_Unwrap(t *testing.T) {
	err := NewChannelError("close", ErrHandleClosed)
	if got := Unwrap(err); got != ErrHandleClosed {
		t.Errorf("Unwrap() = %v, want %v", got, ErrHandleClosed)
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("bad payload")
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "basic",
			err:  NewValidationError("bad payload"),
			want: "validation error: bad payload",
		},
		{
			name: "with field and value",
			err:  NewValidationError("bad payload").WithField("payload").WithValue(3),
			want: "validation error [field=payload, value=3]: bad payload",
		},
		{
			name: "with cause",
			err:  NewValidationError("bad payload").WithCause(ErrSizeMismatch),
			want: "validation error: bad payload: payload size mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Is(t *testing.T) {
	err := NewValidationError("bad payload").WithCause(ErrSizeMismatch)

	if !Is(err, &ValidationError{}) {
		t.Error("Is(ValidationError{}) = false, want true")
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("Is(ErrInvalidInput) = false, want true")
	}
	if !Is(err, ErrSizeMismatch) {
		t.Error("Is(ErrSizeMismatch) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// TimeoutError Tests
// -----------------------------------------------------------------------------

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for producers", 5*time.Second)

	if got, want := err.Error(), "timeout error: waiting for producers (timeout: 5s)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if !Is(err, ErrTimeout) {
		t.Error("Is(ErrTimeout) = false, want true")
	}

	wrapped := NewTimeoutError("recv", time.Second).WithCause(ErrTimedOut)
	if got, want := wrapped.Error(), "timeout error: recv (timeout: 1s): receive timed out"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(wrapped, ErrTimedOut) {
		t.Error("Is(ErrTimedOut) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"empty", ErrEmpty, true},
		{"timed out", ErrTimedOut, true},
		{"wrapped timed out", fmt.Errorf("recv: %w", ErrTimedOut), true},
		{"disconnected", ErrDisconnected, false},
		{"handle closed", ErrHandleClosed, false},
		{"timeout error", NewTimeoutError("op", time.Second), true},
		{"retryable channel error", NewChannelError("x", nil).WithRetryable(true), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"empty", ErrEmpty, SeverityDebug},
		{"timed out", ErrTimedOut, SeverityDebug},
		{"disconnected", ErrDisconnected, SeverityInfo},
		{"handle closed", ErrHandleClosed, SeverityWarning},
		{"validation", NewValidationError("x"), SeverityWarning},
		{"channel error", NewChannelError("x", nil).WithSeverity(SeverityCritical), SeverityCritical},
		{"unknown", errors.New("boom"), SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsChannelResult(t *testing.T) {
	for _, err := range []error{ErrDisconnected, ErrEmpty, ErrTimedOut} {
		if !IsChannelResult(err) {
			t.Errorf("IsChannelResult(%v) = false, want true", err)
		}
	}
	for _, err := range []error{nil, ErrHandleClosed, ErrMultipleReceivers, errors.New("x")} {
		if IsChannelResult(err) {
			t.Errorf("IsChannelResult(%v) = true, want false", err)
		}
	}
}

// -----------------------------------------------------------------------------
// Wrap Tests
// -----------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	err := Wrap(ErrDisconnected, "send job")
	if got, want := err.Error(), "send job: channel disconnected"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrDisconnected) {
		t.Error("wrapped error should match ErrDisconnected")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrEmpty, "poll %s", "jobs")
	if got, want := err.Error(), "poll jobs: channel empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrDisconnected, ErrEmpty, ErrTimedOut,
		ErrHandleClosed, ErrMultipleReceivers, ErrSizeMismatch,
		ErrTimeout, ErrInvalidInput,
	}
	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := err.Error()
		if msg == "" {
			t.Error("sentinel error has empty message")
		}
		if seen[msg] {
			t.Errorf("duplicate sentinel message %q", msg)
		}
		seen[msg] = true
	}
}
