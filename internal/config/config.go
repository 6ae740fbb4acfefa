// Package config defines the bigconv command-line configuration: flag
// parsing, BIGCONV_ environment overrides, validation and the mapping onto
// number.Options.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/limbs"
	"github.com/agbru/bigconv/internal/number"
)

// EnvPrefix is prepended to every environment variable the configuration
// reads, e.g. BIGCONV_STYLE.
const EnvPrefix = "BIGCONV_"

const (
	// DefaultTimeout bounds a single conversion or comparison run.
	DefaultTimeout = 5 * time.Minute
	// DefaultAddr is the listen address of the HTTP server mode.
	DefaultAddr = ":8080"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Value is the text to convert. Positional arguments are joined into it
	// when the -value flag is not given.
	Value string
	// InputFile reads the text to convert from a file ("-" for stdin).
	InputFile string
	// Style is a number style name accepted by number.ParseStyle.
	Style string
	// Locale is a BCP 47 tag selecting the number symbols.
	Locale string
	// Format is the output format specifier (D, X8, N2, ...).
	Format string
	// Algo forces a decimal decoding algorithm: auto, naive or dc.
	Algo string
	// Kernel names the limb multiplication kernel.
	Kernel string

	// NaiveThreshold is the largest digit count decoded naively. Zero means
	// calibrated or estimated.
	NaiveThreshold int
	// ParallelThreshold is the divide-and-conquer block size, in limbs, from
	// which merges run concurrently. Zero means estimated.
	ParallelThreshold int
	// PowerCacheSize is the multiplier cache capacity. Zero disables it.
	PowerCacheSize int

	Timeout    time.Duration
	OutputFile string
	Quiet      bool
	Verbose    bool
	// Details prints the sign and limbs of the parsed value.
	Details  bool
	LogLevel string
	NoColor  bool

	Compare            bool
	Calibrate          bool
	AutoCalibrate      bool
	CalibrationProfile string
	// TUI shows -compare or -calibrate in the terminal dashboard.
	TUI        bool
	REPL       bool
	Serve      bool
	Addr       string
	Completion string
}

// ParseConfig parses the command-line arguments and applies environment
// overrides for every flag not set explicitly. Validation failures are
// returned as ConfigError; -h yields flag.ErrHelp.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	config := AppConfig{}
	fs := newFlagSet(programName, &config, errorWriter)

	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags] [value]\n\n", programName)
		fmt.Fprintln(errorWriter, "Converts integers between decimal and hexadecimal text.")
		fmt.Fprintln(errorWriter, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if config.Value == "" && fs.NArg() > 0 {
		config.Value = strings.Join(fs.Args(), " ")
	}

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.NaiveThreshold < 0 {
		return apperrors.NewConfigError("naive threshold must be non-negative, got %d", c.NaiveThreshold)
	}
	if c.ParallelThreshold < 0 {
		return apperrors.NewConfigError("parallel threshold must be non-negative, got %d", c.ParallelThreshold)
	}
	if c.PowerCacheSize < 0 {
		return apperrors.NewConfigError("power cache size must be non-negative, got %d", c.PowerCacheSize)
	}
	if c.Value != "" && c.InputFile != "" {
		return apperrors.NewConfigError("-value and -input are mutually exclusive")
	}

	modes := 0
	for _, on := range []bool{c.Compare, c.Calibrate, c.REPL, c.Serve} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return apperrors.NewConfigError("-compare, -calibrate, -repl and -serve are mutually exclusive")
	}
	if c.TUI && !c.Compare && !c.Calibrate {
		return apperrors.NewConfigError("-tui needs -compare or -calibrate")
	}

	style, err := number.ParseStyle(c.Style)
	if err != nil {
		return err
	}
	if err := number.ValidateStyle(style); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := number.InfoForLocale(c.Locale); err != nil {
		return err
	}
	if err := number.ValidateFormat(c.Format); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := number.ParseAlgorithm(c.Algo); err != nil {
		return err
	}
	if _, ok := limbs.KernelByName(c.Kernel); !ok {
		return apperrors.NewConfigError("unknown kernel %q (available: %s)", c.Kernel, strings.Join(limbs.KernelNames(), ", "))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	return nil
}

// ParsedStyle returns the configured style. Validate must have succeeded.
func (c AppConfig) ParsedStyle() number.Style {
	s, _ := number.ParseStyle(c.Style)
	return s
}

// ParsedAlgorithm returns the configured decoding algorithm. Validate must
// have succeeded.
func (c AppConfig) ParsedAlgorithm() number.Algorithm {
	a, _ := number.ParseAlgorithm(c.Algo)
	return a
}

// NumberInfo returns the symbols of the configured locale.
func (c AppConfig) NumberInfo() *number.Info {
	info, err := number.InfoForLocale(c.Locale)
	if err != nil {
		return number.InvariantInfo()
	}
	return info
}

// ToConverterOptions maps the configuration onto converter options. logger
// and observer may be nil.
func (c AppConfig) ToConverterOptions(logger *zerolog.Logger, observer number.Observer) number.Options {
	kernel, ok := limbs.KernelByName(c.Kernel)
	if !ok {
		kernel = limbs.DefaultKernel{}
	}
	return number.Options{
		NaiveThreshold:         c.NaiveThreshold,
		ParallelMergeThreshold: c.ParallelThreshold,
		PowerCacheSize:         c.PowerCacheSize,
		Kernel:                 kernel,
		Observer:               observer,
		Logger:                 logger,
	}
}
