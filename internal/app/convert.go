package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/cli"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/orchestration"
)

// readInput returns the text to convert from -value, -input or stdin.
func (a *Application) readInput() (string, error) {
	if a.Config.Value != "" {
		return a.Config.Value, nil
	}
	switch a.Config.InputFile {
	case "":
		return "", apperrors.NewConfigError("nothing to convert: pass a value, -value or -input")
	case "-":
		data, err := io.ReadAll(a.In)
		if err != nil {
			return "", apperrors.WrapError(err, "reading stdin")
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	data, err := os.ReadFile(a.Config.InputFile)
	if err != nil {
		return "", apperrors.WrapError(err, "reading %s", a.Config.InputFile)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// withLifecycle applies the configured timeout and interrupt handling to ctx.
func (a *Application) withLifecycle(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// runBounded runs fn in its own goroutine and returns its error, or a
// TimeoutError or the cancellation cause once ctx is done. Conversions are
// not interruptible, so a timed out fn keeps running until the process
// exits.
func (a *Application) runBounded(ctx context.Context, operation string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperrors.TimeoutError{Operation: operation, Limit: a.Config.Timeout}
		}
		return ctx.Err()
	}
}

// progressTarget returns the reporter and writer used for progress output.
func (a *Application) progressTarget(out io.Writer) (orchestration.ProgressReporter, io.Writer) {
	if a.Config.Quiet {
		return orchestration.NullProgressReporter{}, io.Discard
	}
	return cli.CLIProgressReporter{}, out
}

// runConvert parses the input with the configured style and writes it in
// the configured format.
func (a *Application) runConvert(ctx context.Context, out io.Writer) int {
	start := time.Now()
	text, err := a.readInput()
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}

	c, err := a.newConverter(nil)
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}

	ctx, stop := a.withLifecycle(ctx)
	defer stop()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, len(text), out)
	}

	style := a.Config.ParsedStyle()
	info := a.Config.NumberInfo()
	var (
		res cli.Result
		mem metrics.MemoryDelta
	)
	err = a.runBounded(ctx, "conversion", func() error {
		var (
			v    bigint.Int
			name string
			err  error
		)
		if style.IsHex() {
			mem = metrics.NewMemoryCollector().Measure(func() {
				v, err = c.Parse(text, style, info)
			})
			name = "hex"
		} else {
			v, name, mem, err = a.decodeDecimal(ctx, c, text, style, info, out)
		}
		if err != nil {
			return err
		}
		formatted, err := c.Format(v, a.Config.Format, info)
		if err != nil {
			return err
		}
		res = cli.Result{Input: text, Value: v, Text: formatted, Format: a.Config.Format, Algorithm: name}
		return nil
	})
	if err != nil {
		return cli.HandleError(err, time.Since(start), a.ErrWriter)
	}
	res.Duration = time.Since(start)

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
	}
	if err := cli.DisplayResultWithConfig(out, res, outputCfg); err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	if a.Config.Details && !a.Config.Quiet {
		cli.DisplayMemoryStats(mem, out)
	}
	return apperrors.ExitSuccess
}

// decodeDecimal scans text and decodes it with the configured algorithm.
func (a *Application) decodeDecimal(ctx context.Context, c *number.Converter, text string, style number.Style, info *number.Info, out io.Writer) (bigint.Int, string, metrics.MemoryDelta, error) {
	b, err := number.Scan(text, style, info)
	if err != nil {
		return bigint.Zero, "", metrics.MemoryDelta{}, apperrors.ParseError{Input: text, Err: err}
	}

	decoders := orchestration.GetDecodersToRun(a.Config, orchestration.NewDecoderFactory(c), c, b.Len())
	if !a.Config.Quiet {
		cli.PrintExecutionMode(decoders, out)
	}
	reporter, progressOut := a.progressTarget(out)
	results, mem := orchestration.ExecuteDecodes(ctx, decoders, b, reporter, progressOut)

	res := results[0]
	if res.Err != nil {
		var parseErr apperrors.ParseError
		if !errors.As(res.Err, &parseErr) && !apperrors.IsContextError(res.Err) {
			res.Err = apperrors.ParseError{Input: text, Err: res.Err}
		}
		return bigint.Zero, res.Name, mem, res.Err
	}
	return res.Value, res.Name, mem, nil
}
