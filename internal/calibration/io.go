package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/bigconv/internal/cli"
	"github.com/agbru/bigconv/internal/config"
	"github.com/agbru/bigconv/internal/ui"
)

func formatTiming(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return cli.FormatExecutionDuration(d)
}

// printCrossoverResults prints both decoders' timings per digit count.
func printCrossoverResults(out io.Writer, results []crossoverResult, naiveThreshold int) {
	fmt.Fprintf(out, "\n--- Decoder Crossover ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sDigits%s       │ %sNaive%s        │ %sDivide-and-conquer%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 14), strings.Repeat("─", 20))
	for _, res := range results {
		naive, dnc := formatTiming(res.Naive), formatTiming(res.DivideAndConquer)
		if res.Naive <= res.DivideAndConquer {
			naive = ui.ColorGreen() + naive + ui.ColorReset()
		} else {
			dnc = ui.ColorGreen() + dnc + ui.ColorReset()
		}
		highlight := ""
		if res.Digits == naiveThreshold {
			highlight = fmt.Sprintf(" %s(Crossover)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12d%s │ %-12s │ %s%s\n", ui.ColorCyan(), res.Digits, ui.ColorReset(), naive, dnc, highlight)
	}
	tw.Flush()
	fmt.Fprintf(out, "Naive threshold: %s%d%s digits\n", ui.ColorYellow(), naiveThreshold, ui.ColorReset())
}

// printCalibrationResults formats and prints the parallel threshold table.
func printCalibrationResults(out io.Writer, results []calibrationResult, bestThreshold int) {
	fmt.Fprintf(out, "\n--- Parallel Merge Threshold ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sThreshold%s    │ %sExecution Time%s\n", ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 25))
	for _, res := range results {
		thresholdLabel := fmt.Sprintf("%d limbs", res.Threshold)
		if res.Threshold == SequentialThreshold {
			thresholdLabel = "Sequential"
		}
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = formatTiming(res.Duration)
		}
		highlight := ""
		if res.Threshold == bestThreshold && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12s%s │ %s%s%s%s\n", ui.ColorCyan(), thresholdLabel, ui.ColorReset(), ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the thresholds chosen by auto-calibration.
func printCalibrationOutput(cfg config.AppConfig, out io.Writer) {
	parallel := fmt.Sprintf("%d limbs", cfg.ParallelThreshold)
	if cfg.ParallelThreshold == SequentialThreshold {
		parallel = "sequential"
	}
	fmt.Fprintf(out, "%sAuto-calibration%s: naive=%s%d%s digits, parallel merge=%s%s%s\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), cfg.NaiveThreshold, ui.ColorReset(),
		ui.ColorYellow(), parallel, ui.ColorReset())
}

// Describe renders the measurement on one line, e.g.
// "20000 digits: naive 1.2ms, dc 900µs".
func (s Step) Describe() string {
	switch s.Phase {
	case PhaseCrossover:
		return fmt.Sprintf("%d digits: naive %s, dc %s",
			s.Digits, formatTiming(s.Naive), formatTiming(s.DivideAndConquer))
	case PhaseParallel:
		label := fmt.Sprintf("%d limbs", s.Threshold)
		if s.Threshold == SequentialThreshold {
			label = "sequential"
		}
		if s.Err != nil {
			return fmt.Sprintf("%s: %v", label, s.Err)
		}
		return fmt.Sprintf("%s: %s", label, formatTiming(s.Duration))
	}
	return string(s.Phase)
}

// stepSuffix is the spinner text while s is the latest measurement.
func stepSuffix(s Step) string {
	return fmt.Sprintf(" measuring %s %d/%d (%s)", s.Phase, s.Index, s.Total, s.Describe())
}
