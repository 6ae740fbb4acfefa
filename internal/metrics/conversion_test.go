package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/number"
)

func TestOutcome(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{apperrors.ParseError{Input: "x", Err: apperrors.ErrSyntax}, "syntax"},
		{apperrors.ParseError{Input: "1.5", Err: apperrors.ErrNonIntegral}, "non_integral"},
		{apperrors.ParseError{Input: ".0", Err: apperrors.ErrNegativeScale}, "negative_scale"},
		{apperrors.ParseError{Input: "1e9999999", Err: apperrors.ErrExponentRange}, "exponent_range"},
		{apperrors.ErrDestinationTooSmall, "destination_too_small"},
		{apperrors.StyleError{Style: 1 << 20, Reason: "undefined style flags"}, "invalid_style"},
		{apperrors.FormatSpecError{Format: "Q", Reason: "unsupported format letter"}, "invalid_format"},
		{fmt.Errorf("wrapped: %w", apperrors.FormatTooLargeError{}), "too_large"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestConversionMetrics_ObserveConverter(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewConversionMetrics(reg)
	c, err := number.New(number.Options{NaiveThreshold: 10, Observer: m})
	if err != nil {
		t.Fatalf("number.New: %v", err)
	}

	if _, err := c.Parse("12345", number.Integer, nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := c.Parse("123456789012345678901234567890", number.Integer, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := c.Parse("12x", number.Integer, nil); err == nil {
		t.Fatal("expected a syntax error")
	}
	if _, err := c.Parse("ff", number.HexNumber, nil); err != nil {
		t.Fatalf("Parse hex: %v", err)
	}
	if _, err := c.Format(v, "X", nil); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if _, err := c.Format(v, "Q", nil); err == nil {
		t.Fatal("expected a format error")
	}

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"naive ok", m.parsesTotal.WithLabelValues("naive", "ok"), 1},
		{"dnc ok", m.parsesTotal.WithLabelValues("divide-and-conquer", "ok"), 1},
		{"scan syntax", m.parsesTotal.WithLabelValues("scan", "syntax"), 1},
		{"hex ok", m.parsesTotal.WithLabelValues("hex", "ok"), 1},
		{"format X ok", m.formatsTotal.WithLabelValues("X", "ok"), 1},
		{"format Q invalid", m.formatsTotal.WithLabelValues("Q", "invalid_format"), 1},
	}
	for _, tt := range checks {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.parseSeconds); n != 4 {
		t.Errorf("parse duration series = %d, want 4", n)
	}
}

func TestConversionMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewConversionMetrics(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	NewConversionMetrics(reg)
}
