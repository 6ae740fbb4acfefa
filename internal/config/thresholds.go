package config

import (
	"math"
	"runtime"
)

// Threshold resolution chain (highest priority first):
//   1. CLI flags (-naive-threshold, -parallel-threshold)
//   2. Environment variables (BIGCONV_NAIVE_THRESHOLD, etc.)
//   3. Cached calibration profile (~/.bigconv_calibration.json)
//   4. Adaptive hardware estimation (this file)
//   5. Static defaults in number/convert.go

// ApplyAdaptiveThresholds fills thresholds left at zero with estimates
// derived from the CPU count and word size. Values set by flags, the
// environment or a calibration profile are kept.
func ApplyAdaptiveThresholds(cfg AppConfig) AppConfig {
	if cfg.NaiveThreshold == 0 {
		cfg.NaiveThreshold = EstimateOptimalNaiveThreshold()
	}
	if cfg.ParallelThreshold == 0 {
		cfg.ParallelThreshold = EstimateOptimalParallelThreshold()
	}
	return cfg
}

// EstimateOptimalParallelThreshold returns the divide-and-conquer merge
// block size, in limbs, from which pairs are merged concurrently. With a
// single CPU concurrency never pays and the threshold is unreachable.
func EstimateOptimalParallelThreshold() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return math.MaxInt32
	case numCPU <= 2:
		return 8192
	case numCPU <= 4:
		return 4096
	case numCPU <= 8:
		return 2048
	case numCPU <= 16:
		return 1024
	default:
		return 512
	}
}

// EstimateOptimalNaiveThreshold returns the digit count up to which the
// quadratic decoder is used. Multi-core machines reach the crossover
// earlier because divide-and-conquer merges run in parallel.
func EstimateOptimalNaiveThreshold() int {
	wordSize := 32 << (^uint(0) >> 63)

	threshold := 20000
	if wordSize == 32 {
		threshold = 12000
	}
	if runtime.NumCPU() >= 8 {
		threshold = threshold * 3 / 4
	}
	return threshold
}
