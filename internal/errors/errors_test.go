package apperrors

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %d for flag %s", 42, "--threshold"),
			expected: "invalid value 42 for flag --threshold",
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestConversionError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		op          string
		cause       error
		expectedMsg string
		checkIs     error
		checkUnwrap bool
	}{
		{
			name:        "Error prefixes the operation",
			op:          "format",
			cause:       errors.New("destination too small"),
			expectedMsg: "format: destination too small",
		},
		{
			name:        "Unwrap returns cause",
			op:          "parse",
			cause:       errors.New("original error"),
			expectedMsg: "parse: original error",
			checkUnwrap: true,
		},
		{
			name:        "errors.Is works with wrapped sentinel",
			op:          "parse",
			cause:       ParseError{Input: "1.5", Err: ErrNonIntegral},
			expectedMsg: `parse: parse "1.5": value is not an integer`,
			checkIs:     ErrNonIntegral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ConversionError{Op: tt.op, Cause: tt.cause}

			if err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, err.Error())
			}

			if tt.checkUnwrap && err.Unwrap() != tt.cause {
				t.Error("Unwrap should return the original cause")
			}

			if tt.checkIs != nil && !errors.Is(err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      ParseError
		expected string
		sentinel error
	}{
		{
			name:     "syntax",
			err:      ParseError{Input: "12x", Err: ErrSyntax},
			expected: `parse "12x": invalid number syntax`,
			sentinel: ErrSyntax,
		},
		{
			name:     "negative scale",
			err:      ParseError{Input: "0.5", Err: ErrNegativeScale},
			expected: `parse "0.5": value has no integral digits`,
			sentinel: ErrNegativeScale,
		},
		{
			name:     "long input is truncated",
			err:      ParseError{Input: strings.Repeat("9", 100) + "z", Err: ErrSyntax},
			expected: `parse "` + strings.Repeat("9", 64) + `...": invalid number syntax`,
			sentinel: ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is should find %v", tt.sentinel)
			}
			if errors.Is(err, ErrExponentRange) {
				t.Error("errors.Is matched an unrelated sentinel")
			}
		})
	}
}

func TestStyleAndFormatErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"style", StyleError{Style: 0x400, Reason: "undefined flag bits"}, "invalid number style 0x400: undefined flag bits"},
		{"format spec", FormatSpecError{Format: "Q", Reason: "unsupported format letter"}, `invalid format specifier "Q": unsupported format letter`},
		{"too large", FormatTooLargeError{Limbs: 1 << 28}, "value of 268435456 limbs is too large to format"},
		{"comparison", ComparisonError{Decoders: []string{"naive"}}, "result mismatch between decoders: [naive]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         TimeoutError
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns formatted message",
			err:      TimeoutError{Operation: "convert", Limit: 30 * time.Second},
			expected: `operation "convert" timed out after 30s`,
		},
		{
			name:     "Error with subsecond limit",
			err:      TimeoutError{Operation: "divide and conquer", Limit: 500 * time.Millisecond},
			expected: `operation "divide and conquer" timed out after 500ms`,
		},
		{
			name:        "errors.As works with TimeoutError",
			err:         TimeoutError{Operation: "calibrate", Limit: 10 * time.Second},
			expected:    `operation "calibrate" timed out after 10s`,
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			if tt.checkTypeAs {
				var timeoutErr TimeoutError
				if !errors.As(err, &timeoutErr) {
					t.Error("expected error to be TimeoutError type")
				}
				if timeoutErr.Operation != tt.err.Operation {
					t.Errorf("expected Operation %q, got %q", tt.err.Operation, timeoutErr.Operation)
				}
				if timeoutErr.Limit != tt.err.Limit {
					t.Errorf("expected Limit %v, got %v", tt.err.Limit, timeoutErr.Limit)
				}
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         ValidationError
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns formatted message",
			err:      ValidationError{Field: "value", Message: "must not be empty"},
			expected: `validation error for "value": must not be empty`,
		},
		{
			name:     "Error with different field",
			err:      ValidationError{Field: "threshold", Message: "must be greater than zero"},
			expected: `validation error for "threshold": must be greater than zero`,
		},
		{
			name:        "errors.As works with ValidationError",
			err:         ValidationError{Field: "kernel", Message: "unknown kernel"},
			expected:    `validation error for "kernel": unknown kernel`,
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			if tt.checkTypeAs {
				var validationErr ValidationError
				if !errors.As(err, &validationErr) {
					t.Error("expected error to be ValidationError type")
				}
				if validationErr.Field != tt.err.Field {
					t.Errorf("expected Field %q, got %q", tt.err.Field, validationErr.Field)
				}
				if validationErr.Message != tt.err.Message {
					t.Errorf("expected Message %q, got %q", tt.err.Message, validationErr.Message)
				}
			}
		})
	}
}

func TestNewErrorTypes_ErrorsAsWithWrapping(t *testing.T) {
	t.Parallel()

	t.Run("TimeoutError wrapped in ConversionError", func(t *testing.T) {
		t.Parallel()
		inner := TimeoutError{Operation: "compare", Limit: 5 * time.Second}
		err := ConversionError{Op: "parse", Cause: inner}

		var timeoutErr TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Error("errors.As should find TimeoutError through ConversionError")
		}
	})

	t.Run("ValidationError wrapped with WrapError", func(t *testing.T) {
		t.Parallel()
		inner := ValidationError{Field: "format", Message: "too large"}
		err := WrapError(inner, "config check failed")

		var validationErr ValidationError
		if !errors.As(err, &validationErr) {
			t.Error("errors.As should find ValidationError through WrapError")
		}
	})

	t.Run("ParseError wrapped with WrapError", func(t *testing.T) {
		t.Parallel()
		inner := ParseError{Input: "1e9999999", Err: ErrExponentRange}
		err := WrapError(inner, "line %d", 3)

		var parseErr ParseError
		if !errors.As(err, &parseErr) {
			t.Error("errors.As should find ParseError through WrapError")
		}
		if !errors.Is(err, ErrExponentRange) {
			t.Error("errors.Is should reach the sentinel through two wrappers")
		}
	})
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		original    error
		format      string
		args        []any
		expectedMsg string
		expectNil   bool
		checkIs     error
	}{
		{
			name:        "wraps error with context",
			original:    errors.New("file not found"),
			format:      "failed to load config",
			expectedMsg: "failed to load config: file not found",
		},
		{
			name:        "preserves error chain",
			original:    context.DeadlineExceeded,
			format:      "operation timed out",
			expectedMsg: "operation timed out: context deadline exceeded",
			checkIs:     context.DeadlineExceeded,
		},
		{
			name:      "returns nil for nil error",
			original:  nil,
			format:    "some context",
			expectNil: true,
		},
		{
			name:        "supports format arguments",
			original:    errors.New("connection reset"),
			format:      "failed to connect to %s:%d",
			args:        []any{"localhost", 8080},
			expectedMsg: "failed to connect to localhost:8080: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := WrapError(tt.original, tt.format, tt.args...)

			if tt.expectNil {
				if wrapped != nil {
					t.Error("WrapError(nil, ...) should return nil")
				}
				return
			}

			if wrapped == nil {
				t.Fatal("wrapped error should not be nil")
			}

			if wrapped.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, wrapped.Error())
			}

			if tt.checkIs != nil && !errors.Is(wrapped, tt.checkIs) {
				t.Errorf("wrapped error should preserve %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "operation canceled"), true},
		{"regular error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsContextError(tt.err)
			if result != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	// Verify exit codes are distinct and match expected values
	codes := map[string]int{
		"ExitSuccess":       ExitSuccess,
		"ExitErrorGeneric":  ExitErrorGeneric,
		"ExitErrorTimeout":  ExitErrorTimeout,
		"ExitErrorMismatch": ExitErrorMismatch,
		"ExitErrorConfig":   ExitErrorConfig,
		"ExitErrorInput":    ExitErrorInput,
		"ExitErrorCanceled": ExitErrorCanceled,
	}

	// Check expected values
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess should be 0, got %d", ExitSuccess)
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	// Check all codes are unique
	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"canceled", WrapError(context.Canceled, "run"), ExitErrorCanceled},
		{"deadline", context.DeadlineExceeded, ExitErrorTimeout},
		{"timeout", TimeoutError{Operation: "x", Limit: time.Second}, ExitErrorTimeout},
		{"mismatch", ComparisonError{Decoders: []string{"naive"}}, ExitErrorMismatch},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"style", StyleError{Style: 1 << 12}, ExitErrorConfig},
		{"format spec", FormatSpecError{Format: "Y"}, ExitErrorConfig},
		{"parse", ConversionError{Op: "parse", Cause: ParseError{Input: "x", Err: ErrSyntax}}, ExitErrorInput},
		{"destination", ErrDestinationTooSmall, ExitErrorInput},
		{"generic", errors.New("boom"), ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
