// Package app wires the configuration, the converter and the presentation
// layers into the bigconv command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/bigconv/internal/calibration"
	"github.com/agbru/bigconv/internal/cli"
	"github.com/agbru/bigconv/internal/config"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/logging"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/server"
	"github.com/agbru/bigconv/internal/tui"
	"github.com/agbru/bigconv/internal/ui"
)

// Application represents the bigconv application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// In is read when the input file is "-". Nil means os.Stdin.
	In io.Reader

	logger zerolog.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithInput sets the reader used for "-input -".
func WithInput(r io.Reader) AppOption {
	return func(a *Application) { a.In = r }
}

// New creates a new Application instance by parsing command-line arguments.
// Thresholds left at zero are filled from the cached calibration profile
// or, failing that, estimated from the CPU count.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.In == nil {
		app.In = os.Stdin
	}

	programName := "bigconv"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	if !cfg.Calibrate {
		if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
			cfg = cfgWithProfile
		} else if !cfg.AutoCalibrate {
			cfg = config.ApplyAdaptiveThresholds(cfg)
		}
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	app.logger = logging.NewZerolog(errWriter, "bigconv", level)
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)

	switch {
	case a.Config.Serve:
		return a.runServer(ctx)
	case a.Config.REPL:
		return a.runREPL(out)
	case a.Config.Compare:
		return a.runCompare(ctx, out)
	}
	return a.runConvert(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.TUI {
		return tui.Run(ctx, tui.CalibrationJob{Config: a.Config}, Version)
	}
	if _, err := calibration.RunCalibration(ctx, a.Config, out); err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	return apperrors.ExitSuccess
}

// runAutoCalibrationIfEnabled runs a quick calibration when enabled and no
// profile filled the thresholds.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if !a.Config.AutoCalibrate {
		return a.Config
	}
	if a.Config.NaiveThreshold != 0 && a.Config.ParallelThreshold != 0 {
		return a.Config
	}
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, out); ok {
		return updated
	}
	return config.ApplyAdaptiveThresholds(a.Config)
}

// newConverter builds the converter for the configured options.
func (a *Application) newConverter(observer number.Observer) (*number.Converter, error) {
	return number.New(a.Config.ToConverterOptions(&a.logger, observer))
}

// runServer serves conversions until interrupted.
func (a *Application) runServer(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	logger := logging.NewZerologAdapter(a.logger)
	srv, err := server.New(server.Config{
		Addr:           a.Config.Addr,
		RequestTimeout: a.Config.Timeout,
		Security:       server.DefaultSecurityConfig(),
	}, a.Config.ToConverterOptions(&a.logger, nil), logger)
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", err)
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive session.
func (a *Application) runREPL(out io.Writer) int {
	c, err := a.newConverter(nil)
	if err != nil {
		return cli.HandleError(err, 0, a.ErrWriter)
	}
	repl := cli.NewREPL(cli.REPLConfig{
		Converter: c,
		Style:     a.Config.ParsedStyle(),
		Locale:    a.Config.Locale,
		Format:    a.Config.Format,
		Timeout:   a.Config.Timeout,
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
