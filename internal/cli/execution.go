package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/bigconv/internal/config"
	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/ui"
)

// PrintExecutionConfig displays the conversion settings: input size, style,
// format, timeout, environment and thresholds.
func PrintExecutionConfig(cfg config.AppConfig, inputLength int, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Converting %s%d%s characters as %s%s%s to format %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), inputLength, ui.ColorReset(),
		ui.ColorCyan(), cfg.ParsedStyle(), ui.ColorReset(),
		ui.ColorCyan(), cfg.Format, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, kernel %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		ui.ColorCyan(), cfg.Kernel, ui.ColorReset())
	fmt.Fprintf(out, "Thresholds: naive=%s%d%s digits, parallel merge=%s%d%s limbs, power cache=%s%d%s.\n",
		ui.ColorCyan(), cfg.NaiveThreshold, ui.ColorReset(),
		ui.ColorCyan(), cfg.ParallelThreshold, ui.ColorReset(),
		ui.ColorCyan(), cfg.PowerCacheSize, ui.ColorReset())
}

// PrintExecutionMode displays whether one decoder runs or all are compared.
func PrintExecutionMode(decoders []orchestration.Decoder, out io.Writer) {
	if len(decoders) == 0 {
		return
	}
	modeDesc := fmt.Sprintf("Single conversion with the %s%s%s decoder",
		ui.ColorGreen(), decoders[0].Name(), ui.ColorReset())
	if len(decoders) > 1 {
		modeDesc = fmt.Sprintf("Parallel comparison of %d decoders", len(decoders))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
