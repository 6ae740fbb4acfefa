package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/bigconv/internal/cli"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/tui"
	"github.com/agbru/bigconv/internal/ui"
)

// runCompare decodes the input with every decoder and checks that they
// agree.
func (a *Application) runCompare(ctx context.Context, out io.Writer) int {
	text, err := a.readInput()
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	style := a.Config.ParsedStyle()
	if style.IsHex() {
		return cli.HandleError(apperrors.NewConfigError("-compare needs a decimal style, got %s", style), 0, a.ErrWriter)
	}

	c, err := a.newConverter(nil)
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	info := a.Config.NumberInfo()
	b, err := number.Scan(text, style, info)
	if err != nil {
		return cli.HandleError(apperrors.ParseError{Input: text, Err: err}, 0, a.ErrWriter)
	}

	ctx, stop := a.withLifecycle(ctx)
	defer stop()

	decoders := orchestration.GetDecodersToRun(a.Config, orchestration.NewDecoderFactory(c), c, b.Len())
	if a.Config.TUI {
		return tui.Run(ctx, tui.CompareJob{
			Converter: c,
			Decoders:  decoders,
			Buffer:    b,
			Options:   orchestration.PresentationOptions{Format: a.Config.Format, Info: info},
		}, Version)
	}
	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, len(text), out)
		cli.PrintExecutionMode(decoders, out)
	}

	reporter, progressOut := a.progressTarget(out)
	var (
		results []orchestration.DecodeResult
		mem     metrics.MemoryDelta
	)
	start := time.Now()
	err = a.runBounded(ctx, "comparison", func() error {
		results, mem = orchestration.ExecuteDecodes(ctx, decoders, b, reporter, progressOut)
		return nil
	})
	if err != nil {
		return cli.HandleError(err, time.Since(start), a.ErrWriter)
	}

	presenter := cli.CLIResultPresenter{Converter: c}
	opts := orchestration.PresentationOptions{
		Format:  a.Config.Format,
		Info:    info,
		Verbose: a.Config.Verbose,
		Details: a.Config.Details,
		Quiet:   a.Config.Quiet,
	}
	presentOut := out
	if a.Config.Quiet {
		presentOut = io.Discard
	}
	code := orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, presentOut)
	if code != apperrors.ExitSuccess {
		return code
	}

	best := fastestSuccess(results)
	formatted, err := c.Format(best.Value, a.Config.Format, info)
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	res := cli.Result{Input: text, Value: best.Value, Text: formatted, Format: a.Config.Format, Algorithm: best.Name, Duration: best.Duration}
	if a.Config.Quiet {
		cli.DisplayQuietResult(out, res)
	}
	if a.Config.OutputFile != "" {
		if err := cli.WriteResultToFile(res, cli.OutputConfig{OutputFile: a.Config.OutputFile}); err != nil {
			return cli.HandleError(err, 0, a.ErrWriter)
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	if a.Config.Details && !a.Config.Quiet {
		cli.DisplayMemoryStats(mem, out)
	}
	return code
}

// fastestSuccess returns the quickest successful result. results must hold
// at least one success.
func fastestSuccess(results []orchestration.DecodeResult) *orchestration.DecodeResult {
	var best *orchestration.DecodeResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}
