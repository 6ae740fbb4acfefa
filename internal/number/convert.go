package number

import (
	"errors"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/agbru/bigconv/internal/bigint"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/limbs"
)

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultNaiveThreshold is the largest digit count decoded with the
	// naive algorithm. Calibration replaces it with a measured crossover.
	DefaultNaiveThreshold = 20000

	// DefaultParallelMergeThreshold is the block size, in limbs, from which
	// the pairs of a divide-and-conquer round are merged concurrently.
	DefaultParallelMergeThreshold = 4096

	// DefaultPowerCacheSize is the number of 10^(9*2^k) multipliers a
	// converter keeps between calls.
	DefaultPowerCacheSize = 16
)

// Options configures a Converter.
type Options struct {
	// NaiveThreshold is the largest digit count decoded with the naive
	// algorithm. Zero means DefaultNaiveThreshold.
	NaiveThreshold int
	// ParallelMergeThreshold is the merge block size, in limbs, from which
	// pairs are merged concurrently. Zero means DefaultParallelMergeThreshold.
	ParallelMergeThreshold int
	// PowerCacheSize is the capacity of the multiplier cache. Zero disables
	// the cache; every multiplier is then rented from the pool and released
	// after its round.
	PowerCacheSize int
	// Kernel multiplies limb sequences. Nil means limbs.DefaultKernel.
	Kernel limbs.Kernel
	// Observer receives the outcome of every conversion. May be nil.
	Observer Observer
	// Logger receives debug events. Nil means no logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns the options of Default().
func DefaultOptions() Options {
	return Options{
		NaiveThreshold:         DefaultNaiveThreshold,
		ParallelMergeThreshold: DefaultParallelMergeThreshold,
		PowerCacheSize:         DefaultPowerCacheSize,
	}
}

// Observer is notified after each parse and format.
type Observer interface {
	// ObserveParse reports a parse. algorithm is "hex", "naive",
	// "divide-and-conquer" or "scan" when the text was rejected before
	// decoding.
	ObserveParse(algorithm string, digits int, elapsed time.Duration, err error)
	// ObserveFormat reports a format of a value with the given limb count.
	ObserveFormat(format byte, limbCount int, elapsed time.Duration, err error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Converter
// ─────────────────────────────────────────────────────────────────────────────

// Converter converts between text and bigint.Int. It is safe for concurrent
// use; the only state shared between calls is the multiplier cache.
type Converter struct {
	naiveThreshold    int
	parallelThreshold int
	kernel            limbs.Kernel
	powers            *lru.Cache[int, []limbs.Word]
	observer          Observer
	logger            zerolog.Logger
}

// New returns a Converter for opts. Negative thresholds or cache sizes are a
// ConfigError.
func New(opts Options) (*Converter, error) {
	if opts.NaiveThreshold < 0 {
		return nil, apperrors.NewConfigError("naive threshold must be non-negative, got %d", opts.NaiveThreshold)
	}
	if opts.ParallelMergeThreshold < 0 {
		return nil, apperrors.NewConfigError("parallel merge threshold must be non-negative, got %d", opts.ParallelMergeThreshold)
	}
	if opts.PowerCacheSize < 0 {
		return nil, apperrors.NewConfigError("power cache size must be non-negative, got %d", opts.PowerCacheSize)
	}

	c := &Converter{
		naiveThreshold:    opts.NaiveThreshold,
		parallelThreshold: opts.ParallelMergeThreshold,
		kernel:            opts.Kernel,
		observer:          opts.Observer,
		logger:            zerolog.Nop(),
	}
	if c.naiveThreshold == 0 {
		c.naiveThreshold = DefaultNaiveThreshold
	}
	if c.parallelThreshold == 0 {
		c.parallelThreshold = DefaultParallelMergeThreshold
	}
	if c.kernel == nil {
		c.kernel = limbs.DefaultKernel{}
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	}
	if opts.PowerCacheSize > 0 {
		cache, err := lru.New[int, []limbs.Word](opts.PowerCacheSize)
		if err != nil {
			return nil, apperrors.WrapError(err, "creating power cache")
		}
		c.powers = cache
	}
	return c, nil
}

var (
	defaultOnce      sync.Once
	defaultConverter *Converter
)

// Default returns the shared converter built from DefaultOptions.
func Default() *Converter {
	defaultOnce.Do(func() {
		c, err := New(DefaultOptions())
		if err != nil {
			panic(err)
		}
		defaultConverter = c
	})
	return defaultConverter
}

// SetLogger configures the logger for decoding events.
func (c *Converter) SetLogger(l zerolog.Logger) {
	c.logger = l
}

// NaiveThreshold returns the digit count up to which the naive algorithm is used.
func (c *Converter) NaiveThreshold() int { return c.naiveThreshold }

// ─────────────────────────────────────────────────────────────────────────────
// Parsing
// ─────────────────────────────────────────────────────────────────────────────

// Parse converts text to an integer. It returns a StyleError for an invalid
// style and a ParseError, wrapping one of ErrSyntax, ErrNonIntegral,
// ErrNegativeScale or ErrExponentRange, for text that is not an integer of
// that style. A nil info means the invariant symbols.
func (c *Converter) Parse(text string, style Style, info *Info) (bigint.Int, error) {
	if err := ValidateStyle(style); err != nil {
		return bigint.Zero, err
	}

	start := time.Now()
	algorithm := "scan"
	digits := 0
	v, err := func() (bigint.Int, error) {
		b, err := Scan(text, style, info)
		if err != nil {
			return bigint.Zero, err
		}
		digits = b.Len()
		if style.IsHex() {
			algorithm = "hex"
			v, ok := c.HexToInt(b)
			if !ok {
				return bigint.Zero, apperrors.ErrSyntax
			}
			return v, nil
		}
		if b.Scale >= 0 {
			algorithm = c.SelectAlgorithm(digits).String()
		}
		return c.DecimalToInt(b)
	}()
	if err != nil {
		err = apperrors.ParseError{Input: text, Err: err}
	}
	if c.observer != nil {
		c.observer.ObserveParse(algorithm, digits, time.Since(start), err)
	}
	return v, err
}

// TryParse is Parse for callers that only need to know whether text is an
// integer. The error is non-nil only for an invalid style.
func (c *Converter) TryParse(text string, style Style, info *Info) (bigint.Int, bool, error) {
	v, err := c.Parse(text, style, info)
	if err != nil {
		var styleErr apperrors.StyleError
		if errors.As(err, &styleErr) {
			return bigint.Zero, false, err
		}
		return bigint.Zero, false, nil
	}
	return v, true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Formatting
// ─────────────────────────────────────────────────────────────────────────────

// Format converts v to text. Supported formats are D, R and G (decimal), X
// (two's-complement hex), N, F and E, each optionally followed by a
// precision; "" means "R". A nil info means the invariant symbols.
func (c *Converter) Format(v bigint.Int, format string, info *Info) (string, error) {
	start := time.Now()
	buf := limbs.AcquireBytes(len(v.Magnitude())*10 + 16)
	defer func() { limbs.ReleaseBytes(buf) }()

	var err error
	buf, err = appendFormatted(buf, v, format, info)
	c.observeFormat(format, v, start, err)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// TryFormat writes v formatted with format into dst. When dst is too small
// it writes nothing and returns ok == false with a nil error; errors are
// reserved for invalid formats and values too large to format.
func (c *Converter) TryFormat(dst []byte, v bigint.Int, format string, info *Info) (n int, ok bool, err error) {
	start := time.Now()
	buf := limbs.AcquireBytes(len(dst))
	defer func() { limbs.ReleaseBytes(buf) }()

	buf, err = appendFormatted(buf, v, format, info)
	if err == nil && len(buf) > len(dst) {
		c.observeFormat(format, v, start, apperrors.ErrDestinationTooSmall)
		return 0, false, nil
	}
	c.observeFormat(format, v, start, err)
	if err != nil {
		return 0, false, err
	}
	return copy(dst, buf), true, nil
}

func (c *Converter) observeFormat(format string, v bigint.Int, start time.Time, err error) {
	if c.observer == nil {
		return
	}
	letter := byte('R')
	if format != "" {
		letter = format[0]
	}
	c.observer.ObserveFormat(letter, len(v.Bits()), time.Since(start), err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Package-level entry points
// ─────────────────────────────────────────────────────────────────────────────

// Parse converts text with the default converter.
func Parse(text string, style Style, info *Info) (bigint.Int, error) {
	return Default().Parse(text, style, info)
}

// TryParse converts text with the default converter.
func TryParse(text string, style Style, info *Info) (bigint.Int, bool, error) {
	return Default().TryParse(text, style, info)
}

// Format formats v with the default converter.
func Format(v bigint.Int, format string, info *Info) (string, error) {
	return Default().Format(v, format, info)
}

// TryFormat formats v into dst with the default converter.
func TryFormat(dst []byte, v bigint.Int, format string, info *Info) (int, bool, error) {
	return Default().TryFormat(dst, v, format, info)
}
