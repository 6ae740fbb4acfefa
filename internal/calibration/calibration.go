// Package calibration measures the crossover between the naive and the
// divide-and-conquer decimal decoders, and the merge block size from which
// divide-and-conquer rounds run concurrently, then persists both in a
// per-machine profile.
package calibration

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/agbru/bigconv/internal/cli"
	"github.com/agbru/bigconv/internal/config"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/limbs"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/sysmon"
)

const (
	// fullParallelDigits and quickParallelDigits size the input used to
	// time parallel merge thresholds.
	fullParallelDigits  = 200_000
	quickParallelDigits = 60_000

	fullRepetitions  = 3
	quickRepetitions = 1

	calibrationSeed = 0x5eed
)

// calibrationResult is the timing of one candidate parallel threshold.
type calibrationResult struct {
	Threshold int
	Duration  time.Duration
	Err       error
}

// crossoverResult is the timing of both decoders at one digit count.
type crossoverResult struct {
	Digits           int
	Naive            time.Duration
	DivideAndConquer time.Duration
}

// Phase names the measurement a Step belongs to.
type Phase string

const (
	// PhaseCrossover times both decoders at growing digit counts.
	PhaseCrossover Phase = "crossover"
	// PhaseParallel times divide-and-conquer at each merge threshold.
	PhaseParallel Phase = "parallel"
)

// Step is one finished measurement of a calibration run.
type Step struct {
	Phase Phase
	// Index counts from 1 within the phase; Total is the phase's size.
	Index int
	Total int

	// Digits, Naive and DivideAndConquer are set for PhaseCrossover.
	Digits           int
	Naive            time.Duration
	DivideAndConquer time.Duration

	// Threshold, Duration and Err are set for PhaseParallel.
	Threshold int
	Duration  time.Duration
	Err       error
}

// StepFunc receives each Step as it completes. It runs on the calibrating
// goroutine and must not block for long.
type StepFunc func(Step)

// runOptions selects the measurement set of a calibration run.
type runOptions struct {
	kernel             limbs.Kernel
	kernelName         string
	naiveSizes         []int
	parallelThresholds []int
	parallelDigits     int
	repetitions        int
	onStep             StepFunc
}

func (o runOptions) report(s Step) {
	if o.onStep != nil {
		o.onStep(s)
	}
}

func fullRunOptions(cfg config.AppConfig) runOptions {
	return runOptions{
		kernelName:         cfg.Kernel,
		naiveSizes:         GenerateNaiveThresholds(),
		parallelThresholds: GenerateParallelThresholds(),
		parallelDigits:     fullParallelDigits,
		repetitions:        fullRepetitions,
	}
}

func quickRunOptions(cfg config.AppConfig) runOptions {
	return runOptions{
		kernelName:         cfg.Kernel,
		naiveSizes:         GenerateQuickNaiveThresholds(),
		parallelThresholds: GenerateQuickParallelThresholds(),
		parallelDigits:     quickParallelDigits,
		repetitions:        quickRepetitions,
	}
}

// randomDigits returns n decimal digits with a nonzero leading digit.
func randomDigits(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + r.IntN(10))
	}
	if n > 0 && b[0] == '0' {
		b[0] = '1'
	}
	return string(b)
}

// timeDecode returns the fastest of reps decodes of b.
func timeDecode(c *number.Converter, b *number.Buffer, alg number.Algorithm, reps int) (time.Duration, error) {
	best := time.Duration(0)
	for i := 0; i < max(reps, 1); i++ {
		start := time.Now()
		if _, err := c.DecodeDecimal(b, alg); err != nil {
			return 0, err
		}
		if d := time.Since(start); i == 0 || d < best {
			best = d
		}
	}
	return best, nil
}

// measureCrossover times both decoders at each size and returns the largest
// size up to which the naive decoder kept winning.
func measureCrossover(ctx context.Context, opts runOptions, r *rand.Rand) ([]crossoverResult, int, error) {
	c, err := number.New(number.Options{Kernel: opts.kernel})
	if err != nil {
		return nil, 0, err
	}
	results := make([]crossoverResult, 0, len(opts.naiveSizes))
	for _, n := range opts.naiveSizes {
		if err := ctx.Err(); err != nil {
			return results, 0, err
		}
		b := number.NewBuffer(randomDigits(r, n), n, false)
		naive, err := timeDecode(c, b, number.AlgorithmNaive, opts.repetitions)
		if err != nil {
			return results, 0, err
		}
		dnc, err := timeDecode(c, b, number.AlgorithmDivideAndConquer, opts.repetitions)
		if err != nil {
			return results, 0, err
		}
		results = append(results, crossoverResult{Digits: n, Naive: naive, DivideAndConquer: dnc})
		opts.report(Step{
			Phase: PhaseCrossover, Index: len(results), Total: len(opts.naiveSizes),
			Digits: n, Naive: naive, DivideAndConquer: dnc,
		})
	}
	return results, pickCrossover(results), nil
}

// pickCrossover returns the last measured size before divide-and-conquer
// first wins. When it wins everywhere the threshold is half the smallest
// size.
func pickCrossover(results []crossoverResult) int {
	if len(results) == 0 {
		return number.DefaultNaiveThreshold
	}
	best := max(results[0].Digits/2, 1)
	for _, res := range results {
		if res.Naive > res.DivideAndConquer {
			break
		}
		best = res.Digits
	}
	return best
}

// measureParallel times a divide-and-conquer decode for every candidate
// merge threshold and returns the fastest.
func measureParallel(ctx context.Context, opts runOptions, naiveThreshold int, r *rand.Rand) ([]calibrationResult, int, error) {
	b := number.NewBuffer(randomDigits(r, opts.parallelDigits), opts.parallelDigits, false)
	results := make([]calibrationResult, 0, len(opts.parallelThresholds))
	bestThreshold, bestDuration := SequentialThreshold, time.Duration(-1)

	for _, threshold := range opts.parallelThresholds {
		if err := ctx.Err(); err != nil {
			return results, 0, err
		}
		c, err := number.New(number.Options{
			NaiveThreshold:         naiveThreshold,
			ParallelMergeThreshold: threshold,
			Kernel:                 opts.kernel,
		})
		var d time.Duration
		if err == nil {
			d, err = timeDecode(c, b, number.AlgorithmDivideAndConquer, opts.repetitions)
		}
		results = append(results, calibrationResult{Threshold: threshold, Duration: d, Err: err})
		opts.report(Step{
			Phase: PhaseParallel, Index: len(results), Total: len(opts.parallelThresholds),
			Threshold: threshold, Duration: d, Err: err,
		})
		if err == nil && (bestDuration < 0 || d < bestDuration) {
			bestThreshold, bestDuration = threshold, d
		}
	}
	return results, bestThreshold, nil
}

// calibrate runs both measurements and returns the filled profile.
func calibrate(ctx context.Context, opts runOptions) (*CalibrationProfile, []crossoverResult, []calibrationResult, error) {
	kernel, ok := limbs.KernelByName(opts.kernelName)
	if !ok {
		return nil, nil, nil, apperrors.NewConfigError("unknown kernel %q", opts.kernelName)
	}
	opts.kernel = kernel

	load := sysmon.Sample()
	start := time.Now()
	r := rand.New(rand.NewPCG(calibrationSeed, calibrationSeed))

	crossover, naiveThreshold, err := measureCrossover(ctx, opts, r)
	if err != nil {
		return nil, crossover, nil, err
	}
	parallel, parallelThreshold, err := measureParallel(ctx, opts, naiveThreshold, r)
	if err != nil {
		return nil, crossover, parallel, err
	}

	p := NewProfile()
	p.Kernel = opts.kernelName
	p.OptimalNaiveThreshold = naiveThreshold
	p.OptimalParallelThreshold = parallelThreshold
	p.CalibrationDigits = opts.parallelDigits
	p.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
	p.SystemLoad = load.String()
	return p, crossover, parallel, nil
}

// ProfilePath returns the profile location cfg selects.
func ProfilePath(cfg config.AppConfig) string {
	if cfg.CalibrationProfile != "" {
		return cfg.CalibrationProfile
	}
	return GetDefaultProfilePath()
}

// RunCalibration performs the full calibration, prints the measurements and
// saves the profile. A failure to save is reported but not fatal.
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer) (*CalibrationProfile, error) {
	fmt.Fprintln(out, "--- Calibration ---")
	if load := sysmon.Sample(); load.Busy() {
		fmt.Fprintf(out, "Warning: the system is busy (%s); measurements may be noisy.\n", load)
	}

	s := cli.NewSpinner(out)
	s.UpdateSuffix(" measuring decoder crossover...")
	s.Start()
	opts := fullRunOptions(cfg)
	opts.onStep = func(st Step) { s.UpdateSuffix(stepSuffix(st)) }
	p, crossover, parallel, err := calibrate(ctx, opts)
	s.Stop()
	if err != nil {
		return nil, apperrors.WrapError(err, "calibration")
	}

	printCrossoverResults(out, crossover, p.OptimalNaiveThreshold)
	printCalibrationResults(out, parallel, p.OptimalParallelThreshold)

	path := ProfilePath(cfg)
	if err := p.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "\nWarning: %v\n", err)
	} else {
		fmt.Fprintf(out, "\nProfile saved to %s\n", path)
	}
	return p, nil
}

// Calibrate runs the full calibration, reporting every measurement to
// onStep, and returns the profile without printing or saving it.
func Calibrate(ctx context.Context, cfg config.AppConfig, onStep StepFunc) (*CalibrationProfile, error) {
	opts := fullRunOptions(cfg)
	opts.onStep = onStep
	p, _, _, err := calibrate(ctx, opts)
	if err != nil {
		return nil, apperrors.WrapError(err, "calibration")
	}
	return p, nil
}

// AutoCalibrate runs the quick calibration and applies its thresholds to
// every threshold cfg leaves at zero. The profile is saved for later runs.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer) (config.AppConfig, bool) {
	p, _, _, err := calibrate(ctx, quickRunOptions(cfg))
	if err != nil {
		return cfg, false
	}
	_ = p.SaveProfile(ProfilePath(cfg))
	cfg = ApplyProfile(cfg, p)
	if !cfg.Quiet {
		printCalibrationOutput(cfg, out)
	}
	return cfg, true
}

// LoadCachedCalibration applies a valid, fresh profile from path (or the
// default location) to the thresholds cfg leaves at zero.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() || p.IsStale(DefaultMaxProfileAge) || p.Kernel != cfg.Kernel {
		return cfg, false
	}
	return ApplyProfile(cfg, p), true
}

// ApplyProfile copies the profile's thresholds into cfg where cfg has none.
func ApplyProfile(cfg config.AppConfig, p *CalibrationProfile) config.AppConfig {
	if cfg.NaiveThreshold == 0 && p.OptimalNaiveThreshold > 0 {
		cfg.NaiveThreshold = p.OptimalNaiveThreshold
	}
	if cfg.ParallelThreshold == 0 && p.OptimalParallelThreshold > 0 {
		cfg.ParallelThreshold = p.OptimalParallelThreshold
	}
	return cfg
}
