package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Converter parses and formats values. Nil means number.Default().
	Converter *number.Converter
	// Style is the initial number style.
	Style number.Style
	// Locale is the initial BCP 47 locale tag.
	Locale string
	// Format is the initial output format specifier.
	Format string
	// Timeout bounds each comparison.
	Timeout time.Duration
}

// REPL is an interactive conversion session.
type REPL struct {
	config  REPLConfig
	conv    *number.Converter
	factory *orchestration.DecoderFactory
	style   number.Style
	locale  string
	info    *number.Info
	format  string
	last    bigint.Int
	hasLast bool
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a new REPL instance.
func NewREPL(config REPLConfig) *REPL {
	conv := config.Converter
	if conv == nil {
		conv = number.Default()
	}
	info, err := number.InfoForLocale(config.Locale)
	if err != nil {
		info = number.InvariantInfo()
	}
	format := config.Format
	if format == "" {
		format = "D"
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &REPL{
		config:  config,
		conv:    conv,
		factory: orchestration.NewDecoderFactory(conv),
		style:   config.Style,
		locale:  config.Locale,
		info:    info,
		format:  format,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads commands until exit or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"bigconv> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "\n%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}

		input = strings.TrimSpace(input)
		if input != "" && !r.processCommand(input) {
			return
		}
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s🔢 bigconv - Interactive Mode%s                         %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sparse <text>%s     - Parse text with the current style and locale\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sformat <spec>%s    - Change the output format (D, X8, N0, E3, ...)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstyle <name>%s     - Change the number style (Integer, HexNumber, Number, Any, ...)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %slocale <tag>%s     - Change the locale (en-US, fr-FR, de-DE, ...)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shex%s              - Toggle between decimal and hexadecimal output\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %slimbs%s            - Show the limbs of the last value\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scompare <text>%s   - Decode text with every decoder\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s           - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s             - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s      - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "Any other line is parsed as a value.\n")
}

// processCommand executes one line. It returns false if the REPL should
// exit.
func (r *REPL) processCommand(input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "parse", "p":
		r.cmdParse(rest)
	case "format", "f":
		r.cmdFormat(rest)
	case "style", "s":
		r.cmdStyle(rest)
	case "locale", "l":
		r.cmdLocale(rest)
	case "hex":
		r.cmdHex()
	case "limbs":
		r.cmdLimbs()
	case "compare", "cmp":
		r.cmdCompare(rest)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		r.convert(input)
	}
	return true
}

func (r *REPL) cmdParse(text string) {
	if text == "" {
		fmt.Fprintf(r.out, "%sUsage: parse <text>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	r.convert(text)
}

// convert parses text and prints it in the current format.
func (r *REPL) convert(text string) {
	start := time.Now()
	v, err := r.conv.Parse(text, r.style, r.info)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.last, r.hasLast = v, true
	r.printValue(v, time.Since(start))
}

func (r *REPL) printValue(v bigint.Int, elapsed time.Duration) {
	s, err := r.conv.Format(v, r.format, r.info)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	if len(s) > TruncationLimit {
		edges := DisplayEdges
		if (r.format[0] | 0x20) == 'x' {
			edges = HexDisplayEdges
		}
		s, _ = truncateText(s, edges)
		s += " (truncated)"
	}
	fmt.Fprintf(r.out, "  %s%s%s  %s[%s, %d limbs, %s]%s\n",
		ui.ColorGreen(), s, ui.ColorReset(),
		ui.ColorGrey(), r.format, len(v.Magnitude()), FormatExecutionDuration(elapsed), ui.ColorReset())
}

func (r *REPL) cmdFormat(spec string) {
	if spec == "" {
		fmt.Fprintf(r.out, "%sUsage: format <spec>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	if err := number.ValidateFormat(spec); err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.format = spec
	fmt.Fprintf(r.out, "Format changed to: %s%s%s\n", ui.ColorGreen(), spec, ui.ColorReset())
	r.reprint()
}

func (r *REPL) cmdStyle(name string) {
	if name == "" {
		fmt.Fprintf(r.out, "%sUsage: style <name>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	s, err := number.ParseStyle(name)
	if err == nil {
		err = number.ValidateStyle(s)
	}
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.style = s
	fmt.Fprintf(r.out, "Style changed to: %s%s%s\n", ui.ColorGreen(), s, ui.ColorReset())
}

func (r *REPL) cmdLocale(tag string) {
	info, err := number.InfoForLocale(tag)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.locale, r.info = tag, info
	name := tag
	if name == "" {
		name = "invariant"
	}
	fmt.Fprintf(r.out, "Locale changed to: %s%s%s\n", ui.ColorGreen(), name, ui.ColorReset())
	r.reprint()
}

// cmdHex toggles the output format between decimal and hexadecimal.
func (r *REPL) cmdHex() {
	if (r.format[0] | 0x20) == 'x' {
		r.format = "D"
	} else {
		r.format = "X"
	}
	fmt.Fprintf(r.out, "Format changed to: %s%s%s\n", ui.ColorGreen(), r.format, ui.ColorReset())
	r.reprint()
}

func (r *REPL) reprint() {
	if r.hasLast {
		r.printValue(r.last, 0)
	}
}

func (r *REPL) cmdLimbs() {
	if !r.hasLast {
		fmt.Fprintf(r.out, "%sNo value parsed yet.%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "  sign %d, %d limbs %s\n",
		r.last.Sign(), len(r.last.Magnitude()), FormatLimbs(r.last.Magnitude(), maxDisplayedLimbs/2))
}

// cmdCompare decodes text with every decoder and reports whether they agree.
func (r *REPL) cmdCompare(text string) {
	if text == "" {
		fmt.Fprintf(r.out, "%sUsage: compare <text>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	if r.style.IsHex() {
		fmt.Fprintf(r.out, "%sCompare needs a decimal style (current: %s).%s\n", ui.ColorRed(), r.style, ui.ColorReset())
		return
	}
	b, err := number.Scan(text, r.style, r.info)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	decoders := make([]orchestration.Decoder, 0, 3)
	for _, name := range r.factory.List() {
		if d, err := r.factory.Get(name); err == nil {
			decoders = append(decoders, d)
		}
	}
	results, _ := orchestration.ExecuteDecodes(ctx, decoders, b, orchestration.NullProgressReporter{}, r.out)

	fmt.Fprintf(r.out, "\n%sComparison for %d digits:%s\n", ui.ColorBold(), b.Len(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ui.ColorCyan(), ui.ColorReset())
	for _, res := range results {
		status := ui.ColorGreen() + "✓" + ui.ColorReset()
		if res.Err != nil {
			status = fmt.Sprintf("%sError - %v%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		fmt.Fprintf(r.out, "  %s%-20s%s: %s%12s%s %s\n",
			ui.ColorYellow(), res.Name, ui.ColorReset(),
			ui.ColorCyan(), displayDuration(res.Duration), ui.ColorReset(),
			status)
	}
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ui.ColorCyan(), ui.ColorReset())

	if err := orchestration.CheckConsistency(results); err != nil {
		fmt.Fprintf(r.out, "%s✗ INCONSISTENT: %v%s\n\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	for _, res := range results {
		if res.Err == nil {
			fmt.Fprintf(r.out, "%s✓ All decoders agree.%s\n", ui.ColorGreen(), ui.ColorReset())
			r.last, r.hasLast = res.Value, true
			r.printValue(res.Value, res.Duration)
			break
		}
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	locale := r.locale
	if locale == "" {
		locale = "invariant"
	}
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Style:           %s%s%s\n", ui.ColorCyan(), r.style, ui.ColorReset())
	fmt.Fprintf(r.out, "  Locale:          %s%s%s\n", ui.ColorCyan(), locale, ui.ColorReset())
	fmt.Fprintf(r.out, "  Format:          %s%s%s\n", ui.ColorCyan(), r.format, ui.ColorReset())
	fmt.Fprintf(r.out, "  Naive threshold: %s%d%s digits\n", ui.ColorCyan(), r.conv.NaiveThreshold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:         %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintln(r.out)
}
