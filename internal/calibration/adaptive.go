// This file generates the candidate thresholds a calibration run measures.

package calibration

import (
	"math"
	"runtime"

	"github.com/agbru/bigconv/internal/config"
)

// SequentialThreshold disables concurrent merges: no block ever reaches it.
const SequentialThreshold = math.MaxInt32

// ─────────────────────────────────────────────────────────────────────────────
// Naive / divide-and-conquer crossover candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateNaiveThresholds returns the digit counts at which both decimal
// decoders are timed, ascending.
func GenerateNaiveThresholds() []int {
	return []int{1000, 2500, 5000, 10000, 20000, 40000, 80000}
}

// GenerateQuickNaiveThresholds is the reduced set used by auto-calibration.
func GenerateQuickNaiveThresholds() []int {
	return []int{2500, 10000, 20000, 40000}
}

// ─────────────────────────────────────────────────────────────────────────────
// Parallel merge threshold candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateParallelThresholds returns the merge block sizes, in limbs, to
// test. The first entry is always SequentialThreshold; machines with more
// cores get lower thresholds to try.
func GenerateParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	thresholds := []int{SequentialThreshold}

	switch {
	case numCPU == 1:
		return thresholds
	case numCPU <= 4:
		thresholds = append(thresholds, 512, 1024, 2048, 4096)
	case numCPU <= 8:
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192)
	case numCPU <= 16:
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192, 16384)
	default:
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768)
	}
	return thresholds
}

// GenerateQuickParallelThresholds is the reduced set used by
// auto-calibration.
func GenerateQuickParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return []int{SequentialThreshold}
	case numCPU <= 4:
		return []int{SequentialThreshold, 2048, 4096}
	case numCPU <= 8:
		return []int{SequentialThreshold, 1024, 2048, 4096}
	default:
		return []int{SequentialThreshold, 512, 1024, 2048, 4096}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold Estimation (without benchmarking)
// ─────────────────────────────────────────────────────────────────────────────

// EstimateOptimalNaiveThreshold delegates to config.EstimateOptimalNaiveThreshold.
func EstimateOptimalNaiveThreshold() int { return config.EstimateOptimalNaiveThreshold() }

// EstimateOptimalParallelThreshold delegates to config.EstimateOptimalParallelThreshold.
func EstimateOptimalParallelThreshold() int { return config.EstimateOptimalParallelThreshold() }
