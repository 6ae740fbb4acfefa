package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result mismatch between decoders.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorInput    = 5   // Indicates text that could not be parsed or formatted.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// Sentinel causes carried by ParseError.
var (
	// ErrSyntax reports text that does not match the number grammar of the
	// requested style.
	ErrSyntax = errors.New("invalid number syntax")
	// ErrNonIntegral reports a nonzero digit after the decimal point (or
	// pushed there by a negative exponent).
	ErrNonIntegral = errors.New("value is not an integer")
	// ErrNegativeScale reports digits that all lie to the right of the
	// decimal point.
	ErrNegativeScale = errors.New("value has no integral digits")
	// ErrExponentRange reports an exponent beyond the supported magnitude.
	ErrExponentRange = errors.New("exponent out of range")
	// ErrDestinationTooSmall reports a TryFormat destination that cannot hold
	// the formatted text.
	ErrDestinationTooSmall = errors.New("destination buffer too small")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// StyleError reports a number style that is not a valid integer style:
// undefined flag bits, or the hex specifier combined with flags outside
// HexNumber. It is a caller error, so even the Try* entry points return it.
type StyleError struct {
	// Style is the rejected flag set.
	Style uint32
	// Reason explains why the style was rejected.
	Reason string
}

// Error returns a formatted message describing the invalid style.
func (e StyleError) Error() string {
	return fmt.Sprintf("invalid number style %#x: %s", e.Style, e.Reason)
}

// maxQuotedInput bounds how much of an offending input a ParseError quotes.
const maxQuotedInput = 64

// ParseError reports text that could not be converted to an integer. Err is
// one of the sentinel causes and can be matched with errors.Is.
type ParseError struct {
	// Input is the rejected text.
	Input string
	// Err is the underlying cause (ErrSyntax, ErrNonIntegral, ...).
	Err error
}

// Error returns the cause together with a (possibly truncated) quote of the input.
func (e ParseError) Error() string {
	in := e.Input
	if len(in) > maxQuotedInput {
		in = in[:maxQuotedInput] + "..."
	}
	return fmt.Sprintf("parse %q: %v", in, e.Err)
}

// Unwrap returns the cause.
func (e ParseError) Unwrap() error { return e.Err }

// FormatSpecError reports an unsupported or malformed format specifier.
type FormatSpecError struct {
	// Format is the rejected specifier.
	Format string
	// Reason explains the rejection.
	Reason string
}

// Error returns a formatted message describing the invalid specifier.
func (e FormatSpecError) Error() string {
	return fmt.Sprintf("invalid format specifier %q: %s", e.Format, e.Reason)
}

// FormatTooLargeError reports a value whose textual form would exceed the
// maximum representable length.
type FormatTooLargeError struct {
	// Limbs is the magnitude length of the value being formatted.
	Limbs int
}

// Error returns a formatted message describing the overflow.
func (e FormatTooLargeError) Error() string {
	return fmt.Sprintf("value of %d limbs is too large to format", e.Limbs)
}

// ConversionError encapsulates a conversion failure while preserving the
// original cause, tagging it with the operation that failed.
type ConversionError struct {
	// Op names the failed operation (e.g., "parse", "format").
	Op string
	// Cause is the underlying error that triggered this conversion error.
	Cause error
}

// Error returns the operation and the message from the underlying cause.
func (e ConversionError) Error() string { return e.Op + ": " + e.Cause.Error() }

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e ConversionError) Unwrap() error { return e.Cause }

// ComparisonError reports decoders that produced different values for the
// same input.
type ComparisonError struct {
	// Decoders lists the names of the decoders that disagreed with the reference.
	Decoders []string
}

// Error returns a formatted message listing the mismatching decoders.
func (e ComparisonError) Error() string {
	return fmt.Sprintf("result mismatch between decoders: %v", e.Decoders)
}

// TimeoutError represents a conversion timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error to the process exit code that reports it.
//
// Parameters:
//   - err: The error to classify, may be nil.
//
// Returns:
//   - int: One of the Exit* constants.
func ExitCode(err error) int {
	var (
		configErr     ConfigError
		styleErr      StyleError
		parseErr      ParseError
		specErr       FormatSpecError
		tooLargeErr   FormatTooLargeError
		comparisonErr ComparisonError
		timeoutErr    TimeoutError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.As(err, &comparisonErr):
		return ExitErrorMismatch
	case errors.As(err, &configErr), errors.As(err, &styleErr), errors.As(err, &specErr):
		return ExitErrorConfig
	case errors.As(err, &parseErr), errors.As(err, &tooLargeErr), errors.Is(err, ErrDestinationTooSmall):
		return ExitErrorInput
	}
	return ExitErrorGeneric
}
