package config

import (
	"flag"
	"io"
	"strings"

	"github.com/agbru/bigconv/internal/limbs"
	"github.com/agbru/bigconv/internal/number"
)

// shorthands maps each one-letter alias to the long flag whose value it
// shares.
var shorthands = []struct{ short, long string }{
	{"i", "input"},
	{"f", "format"},
	{"o", "output"},
	{"q", "quiet"},
	{"v", "verbose"},
	{"d", "details"},
}

// fileFlags take a path and complete as files.
var fileFlags = map[string]bool{"input": true, "output": true, "calibration-profile": true}

// flagValues lists the suggested values of flags with a closed or typical
// value set.
func flagValues() map[string][]string {
	return map[string][]string{
		"style":              {"Integer", "HexNumber", "Number", "Float", "Currency", "Any"},
		"locale":             {"en-US", "fr-FR", "de-DE", "de-CH", "ja-JP"},
		"format":             {"D", "X", "x", "N0", "F2", "E", "R", "G"},
		"algo":               {"auto", "naive", "dc"},
		"kernel":             limbs.KernelNames(),
		"naive-threshold":    {"5000", "10000", "20000", "40000"},
		"parallel-threshold": {"1024", "2048", "4096", "8192"},
		"power-cache":        {"0", "16", "64"},
		"timeout":            {"10s", "1m", "5m", "30m"},
		"log-level":          {"debug", "info", "warn", "error", "disabled"},
		"addr":               {DefaultAddr},
		"completion":         {"bash", "zsh", "fish", "powershell"},
	}
}

// newFlagSet registers every option on a fresh FlagSet bound to config.
func newFlagSet(programName string, config *AppConfig, errorWriter io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	fs.StringVar(&config.Value, "value", "", "Text to convert (positional arguments are used when omitted).")
	fs.StringVar(&config.InputFile, "input", "", "Read the text to convert from a file ('-' for stdin).")
	fs.StringVar(&config.Style, "style", "Integer", "Number style: Integer, HexNumber, Number, Float, Currency, Any or flags joined with '|'.")
	fs.StringVar(&config.Locale, "locale", "", "BCP 47 locale for signs and separators (e.g., 'fr-FR'). Empty means invariant.")
	fs.StringVar(&config.Format, "format", "D", "Output format specifier: D, R, G, X, N, F or E with an optional precision.")
	fs.StringVar(&config.Algo, "algo", "auto", "Decimal decoding algorithm: 'auto', 'naive' or 'dc'.")
	fs.StringVar(&config.Kernel, "kernel", "default", "Limb multiplication kernel: "+strings.Join(limbs.KernelNames(), ", ")+".")
	fs.IntVar(&config.NaiveThreshold, "naive-threshold", 0, "Largest digit count decoded with the naive algorithm (0 = calibrated/estimated).")
	fs.IntVar(&config.ParallelThreshold, "parallel-threshold", 0, "Merge block size in limbs from which divide-and-conquer runs in parallel (0 = estimated).")
	fs.IntVar(&config.PowerCacheSize, "power-cache", number.DefaultPowerCacheSize, "Number of cached 10^(9*2^k) multipliers (0 disables the cache).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time (e.g., 30s, 1m).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the formatted result to a file.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the formatted result.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print the full result even when it is long.")
	fs.BoolVar(&config.Details, "details", false, "Print the sign and limbs of the parsed value.")
	fs.StringVar(&config.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error or disabled.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also honors NO_COLOR).")
	fs.BoolVar(&config.Compare, "compare", false, "Decode with every algorithm and compare the results.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Measure the naive/divide-and-conquer crossover and save a profile.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick calibration before converting when no profile exists.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path of the calibration profile (default ~/.bigconv_calibration.json).")
	fs.BoolVar(&config.TUI, "tui", false, "Show -compare or -calibrate in a live terminal dashboard.")
	fs.BoolVar(&config.REPL, "repl", false, "Start the interactive conversion shell.")
	fs.BoolVar(&config.Serve, "serve", false, "Run the HTTP conversion server.")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "Listen address of the HTTP server.")
	fs.StringVar(&config.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish, powershell).")

	for _, s := range shorthands {
		fs.Var(fs.Lookup(s.long).Value, s.short, "Shorthand for -"+s.long+".")
	}
	return fs
}

// ValueKind classifies what a flag's argument is.
type ValueKind int

const (
	// ValueNone marks a boolean switch.
	ValueNone ValueKind = iota
	// ValueText is free text, possibly with suggested values.
	ValueText
	// ValueFile is a filesystem path.
	ValueFile
)

// FlagSpec describes one option for shell completion.
type FlagSpec struct {
	Name   string
	Short  string
	Usage  string
	Kind   ValueKind
	Values []string
}

// Flags describes every command-line option in lexical order, led by -help
// and -version which the flag set and main handle themselves.
func Flags() []FlagSpec {
	var cfg AppConfig
	fs := newFlagSet("bigconv", &cfg, io.Discard)

	shortOf := make(map[string]string, len(shorthands))
	for _, s := range shorthands {
		shortOf[s.long] = s.short
	}
	values := flagValues()

	specs := []FlagSpec{
		{Name: "help", Short: "h", Usage: "Show help message."},
		{Name: "version", Short: "V", Usage: "Show version information."},
	}
	for _, name := range longFlagNames(fs) {
		f := fs.Lookup(name)
		spec := FlagSpec{Name: name, Short: shortOf[name], Usage: f.Usage, Kind: ValueText, Values: values[name]}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			spec.Kind = ValueNone
		} else if fileFlags[name] {
			spec.Kind = ValueFile
		}
		specs = append(specs, spec)
	}
	return specs
}

// longFlagNames returns the flag names without their one-letter aliases,
// in lexical order.
func longFlagNames(fs *flag.FlagSet) []string {
	isShort := make(map[string]bool, len(shorthands))
	for _, s := range shorthands {
		isShort[s.short] = true
	}
	var names []string
	fs.VisitAll(func(f *flag.Flag) {
		if !isShort[f.Name] {
			names = append(names, f.Name)
		}
	})
	return names
}
