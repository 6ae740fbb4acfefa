// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatExecutionDuration], [FormatLimbs].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/ui"
)

// maxDisplayedLimbs bounds the limb dump shown with --details.
const maxDisplayedLimbs = 16

// Result is one finished conversion.
type Result struct {
	// Input is the text that was parsed, possibly empty for file input.
	Input string
	// Value is the parsed integer.
	Value bigint.Int
	// Text is Value rendered with Format.
	Text string
	// Format is the format specifier used for Text.
	Format string
	// Algorithm names the decoder that produced Value.
	Algorithm string
	// Duration covers parsing and formatting.
	Duration time.Duration
}

// isHex reports whether the result was formatted in hexadecimal.
func (r Result) isHex() bool {
	return r.Format != "" && (r.Format[0]|0x20) == 'x'
}

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet mode prints the formatted text only.
	Quiet bool
	// Verbose disables truncation of long results.
	Verbose bool
	// Details adds the limb dump.
	Details bool
}

// WriteResultToFile writes a conversion result with a descriptive header to
// config.OutputFile. It does nothing when no file is configured.
func WriteResultToFile(res Result, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	mag := res.Value.Magnitude()
	fmt.Fprintf(file, "# bigconv conversion result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", res.Algorithm)
	fmt.Fprintf(file, "# Format: %s\n", res.Format)
	fmt.Fprintf(file, "# Duration: %s\n", res.Duration)
	fmt.Fprintf(file, "# Sign: %d\n", res.Value.Sign())
	fmt.Fprintf(file, "# Limbs: %d\n", len(mag))
	fmt.Fprintf(file, "# Length: %d\n", len(res.Text))
	fmt.Fprintf(file, "\n")

	if _, err := fmt.Fprintln(file, res.Text); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

// FormatQuietResult returns the formatted text alone, for scripting.
func FormatQuietResult(res Result) string {
	return res.Text
}

// DisplayQuietResult outputs a result in quiet mode.
func DisplayQuietResult(out io.Writer, res Result) {
	fmt.Fprintln(out, FormatQuietResult(res))
}

// FormatLimbs renders the magnitude's limbs, least significant first, as
// 8-digit hex words. At most limit limbs are shown from each end.
func FormatLimbs(mag []uint32, limit int) string {
	if len(mag) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	write := func(i int) {
		if sb.Len() > 1 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%08x", mag[i])
	}
	if limit <= 0 || len(mag) <= 2*limit {
		for i := range mag {
			write(i)
		}
	} else {
		for i := 0; i < limit; i++ {
			write(i)
		}
		fmt.Fprintf(&sb, " ...%d more...", len(mag)-2*limit)
		for i := len(mag) - limit; i < len(mag); i++ {
			write(i)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// truncateText shortens text longer than TruncationLimit to its edges.
func truncateText(text string, edges int) (string, bool) {
	if len(text) <= TruncationLimit {
		return text, false
	}
	return text[:edges] + "..." + text[len(text)-edges:], true
}

// DisplayResult shows the conversion summary in a panel followed by the
// formatted value. Long values are truncated unless verbose is set.
func DisplayResult(res Result, verbose, details bool, out io.Writer) {
	mag := res.Value.Magnitude()
	label, value := ui.LabelStyle(), ui.ValueStyle()
	row := func(k, v string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, label.Render(fmt.Sprintf("%-10s", k)), value.Render(v))
	}
	rows := []string{
		ui.TitleStyle().Render("Conversion"),
		row("Format", res.Format),
		row("Sign", fmt.Sprintf("%d", res.Value.Sign())),
		row("Limbs", fmt.Sprintf("%d", len(mag))),
		row("Length", fmt.Sprintf("%d characters", len(res.Text))),
		row("Duration", FormatExecutionDuration(res.Duration)),
	}
	if res.Algorithm != "" {
		rows = append(rows, row("Algorithm", res.Algorithm))
	}
	fmt.Fprintln(out, ui.PanelStyle().Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	if details {
		fmt.Fprintf(out, "\n%sDetailed result analysis%s\n", ui.ColorBold(), ui.ColorReset())
		fmt.Fprintf(out, "  Bit length: %s%d%s\n", ui.ColorCyan(), res.Value.Big().BitLen(), ui.ColorReset())
		fmt.Fprintf(out, "  Limbs:      %s\n", FormatLimbs(mag, maxDisplayedLimbs/2))
	}

	text := res.Text
	truncated := false
	if !verbose {
		edges := DisplayEdges
		if res.isHex() {
			edges = HexDisplayEdges
		}
		text, truncated = truncateText(res.Text, edges)
	}
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorGreen(), text, ui.ColorReset())
	if truncated {
		fmt.Fprintf(out, "%s(truncated) Tip: use -v to display the full value or -o to save it.%s\n",
			ui.ColorGrey(), ui.ColorReset())
	}
}

// DisplayResultWithConfig displays a result according to config and saves it
// when an output file is configured.
func DisplayResultWithConfig(out io.Writer, res Result, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res)
	} else {
		DisplayResult(res, config.Verbose, config.Details, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(res, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
