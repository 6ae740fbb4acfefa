package orchestration

import "time"

// ProgressAggregator tracks how many decoders have finished. Decoders are
// not interruptible mid-run, so progress is reported per decoder rather
// than per digit.
type ProgressAggregator struct {
	finished    []bool
	numDecoders int
	completed   int
	start       time.Time
}

// NewProgressAggregator creates an aggregator for numDecoders decoders. It
// returns nil if numDecoders <= 0.
func NewProgressAggregator(numDecoders int) *ProgressAggregator {
	if numDecoders <= 0 {
		return nil
	}
	return &ProgressAggregator{
		finished:    make([]bool, numDecoders),
		numDecoders: numDecoders,
		start:       time.Now(),
	}
}

// AggregatedProgress is the state after one update.
type AggregatedProgress struct {
	// DecoderIndex is the index of the decoder that sent the update.
	DecoderIndex int
	// Value is the update's raw value.
	Value float64
	// Completed is the number of finished decoders.
	Completed int
	// AverageProgress is Completed over the number of decoders.
	AverageProgress float64
	// Elapsed is the time since the aggregator was created.
	Elapsed time.Duration
}

// Update records one update. Out-of-range indices are ignored.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	i := update.DecoderIndex
	if i >= 0 && i < a.numDecoders && update.Value >= 1 && !a.finished[i] {
		a.finished[i] = true
		a.completed++
	}
	return AggregatedProgress{
		DecoderIndex:    i,
		Value:           update.Value,
		Completed:       a.completed,
		AverageProgress: a.CalculateAverage(),
		Elapsed:         time.Since(a.start),
	}
}

// CalculateAverage returns the fraction of finished decoders.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return float64(a.completed) / float64(a.numDecoders)
}

// NumDecoders returns the number of decoders being tracked.
func (a *ProgressAggregator) NumDecoders() int {
	return a.numDecoders
}

// IsMultiDecoder reports whether more than one decoder is tracked.
func (a *ProgressAggregator) IsMultiDecoder() bool {
	return a.numDecoders > 1
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
