package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/number"
)

// ProgressBufferMultiplier sizes the progress channel per decoder. Each
// decoder sends two updates, so decoders never block on a slow reporter.
const ProgressBufferMultiplier = 5

// ExecuteDecodes runs every decoder concurrently on b and collects their
// results in decoder order. It also returns the memory the whole run
// allocated.
func ExecuteDecodes(ctx context.Context, decoders []Decoder, b *number.Buffer, progressReporter ProgressReporter, out io.Writer) ([]DecodeResult, metrics.MemoryDelta) {
	results := make([]DecodeResult, len(decoders))
	progressChan := make(chan ProgressUpdate, len(decoders)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(decoders), out)

	delta := metrics.NewMemoryCollector().Measure(func() {
		// A decoder's failure is recorded in its result and never returned,
		// so one failing decoder does not cancel the others and Wait
		// always returns nil.
		g, ctx := errgroup.WithContext(ctx)
		for i, dec := range decoders {
			idx, decoder := i, dec
			g.Go(func() error {
				progressChan <- ProgressUpdate{DecoderIndex: idx, Value: 0}
				startTime := time.Now()
				v, err := decoder.Decode(ctx, b)
				results[idx] = DecodeResult{
					Name: decoder.Name(), Value: v, Duration: time.Since(startTime), Err: err,
				}
				progressChan <- ProgressUpdate{DecoderIndex: idx, Value: 1}
				return nil
			})
		}
		_ = g.Wait()
	})

	close(progressChan)
	displayWg.Wait()
	return results, delta
}

// CheckConsistency compares every successful result with the reference
// decoder's, or with the first successful result when the reference failed
// or did not run. It returns a ComparisonError naming the decoders that
// disagree.
func CheckConsistency(results []DecodeResult) error {
	var want *DecodeResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if results[i].Name == ReferenceDecoder {
			want = &results[i]
			break
		}
		if want == nil {
			want = &results[i]
		}
	}
	if want == nil {
		return nil
	}
	var mismatched []string
	for _, res := range results {
		if res.Err == nil && !res.Value.Equal(want.Value) {
			mismatched = append(mismatched, res.Name)
		}
	}
	if len(mismatched) > 0 {
		return apperrors.ComparisonError{Decoders: mismatched}
	}
	return nil
}

// AnalyzeComparisonResults sorts the results by duration, presents the
// comparison table and, when every successful decoder agrees, the result.
// It returns the process exit code.
func AnalyzeComparisonResults(results []DecodeResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValidResult *DecodeResult
	var firstError error
	successCount := 0
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
			continue
		}
		successCount++
		if firstValidResult == nil {
			firstValidResult = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No decoder could decode the input.\n")
		return errHandler.HandleError(firstError, 0, out)
	}
	if err := CheckConsistency(results); err != nil {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %v\n", err)
		return apperrors.ExitCode(err)
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*firstValidResult, opts, out)
	return apperrors.ExitSuccess
}
