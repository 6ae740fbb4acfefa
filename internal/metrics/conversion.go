package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/number"
)

const namespace = "bigconv"

// ConversionMetrics records parse and format outcomes as Prometheus
// metrics. It implements number.Observer.
type ConversionMetrics struct {
	parsesTotal   *prometheus.CounterVec
	parseSeconds  *prometheus.HistogramVec
	parseDigits   prometheus.Histogram
	formatsTotal  *prometheus.CounterVec
	formatSeconds *prometheus.HistogramVec
	formatLimbs   prometheus.Histogram
}

var _ number.Observer = (*ConversionMetrics)(nil)

// NewConversionMetrics registers the conversion metrics with reg.
func NewConversionMetrics(reg prometheus.Registerer) *ConversionMetrics {
	factory := promauto.With(reg)
	return &ConversionMetrics{
		parsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "total",
			Help:      "Total number of parse operations, per decoding algorithm and outcome",
		}, []string{"algorithm", "outcome"}),
		parseSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "duration_seconds",
			Help:      "Parse latency, per decoding algorithm",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"algorithm"}),
		parseDigits: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parse",
			Name:      "digits",
			Help:      "Number of significant digits in parsed text",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
		}),
		formatsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "total",
			Help:      "Total number of format operations, per format letter and outcome",
		}, []string{"format", "outcome"}),
		formatSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "duration_seconds",
			Help:      "Format latency, per format letter",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"format"}),
		formatLimbs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "limbs",
			Help:      "Number of 32-bit limbs in formatted values",
			Buckets:   prometheus.ExponentialBuckets(1, 8, 8),
		}),
	}
}

// ObserveParse implements number.Observer.
func (m *ConversionMetrics) ObserveParse(algorithm string, digits int, elapsed time.Duration, err error) {
	m.parsesTotal.WithLabelValues(algorithm, Outcome(err)).Inc()
	m.parseSeconds.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	if err == nil {
		m.parseDigits.Observe(float64(digits))
	}
}

// ObserveFormat implements number.Observer.
func (m *ConversionMetrics) ObserveFormat(format byte, limbCount int, elapsed time.Duration, err error) {
	label := string(rune(format))
	m.formatsTotal.WithLabelValues(label, Outcome(err)).Inc()
	m.formatSeconds.WithLabelValues(label).Observe(elapsed.Seconds())
	m.formatLimbs.Observe(float64(limbCount))
}

// Outcome maps a conversion error to a low-cardinality label value.
func Outcome(err error) string {
	var (
		styleErr    apperrors.StyleError
		specErr     apperrors.FormatSpecError
		tooLargeErr apperrors.FormatTooLargeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrSyntax):
		return "syntax"
	case errors.Is(err, apperrors.ErrNonIntegral):
		return "non_integral"
	case errors.Is(err, apperrors.ErrNegativeScale):
		return "negative_scale"
	case errors.Is(err, apperrors.ErrExponentRange):
		return "exponent_range"
	case errors.Is(err, apperrors.ErrDestinationTooSmall):
		return "destination_too_small"
	case errors.As(err, &styleErr):
		return "invalid_style"
	case errors.As(err, &specErr):
		return "invalid_format"
	case errors.As(err, &tooLargeErr):
		return "too_large"
	}
	return "error"
}
