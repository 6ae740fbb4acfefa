package metrics

import "runtime"

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
	Mallocs      uint64 // cumulative heap object allocations
}

// MemoryDelta is the allocation activity between two snapshots.
type MemoryDelta struct {
	AllocBytes uint64
	Mallocs    uint64
	NumGC      uint32
	// PeakHeap is the larger of the two HeapAlloc readings.
	PeakHeap uint64
}

// MemoryCollector reads runtime memory statistics around a conversion.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		Mallocs:      m.Mallocs,
	}
}

// Since returns the activity from before to the current snapshot s.
// Cumulative counters never decrease, so the differences are non-negative.
func (s MemorySnapshot) Since(before MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		AllocBytes: s.TotalAlloc - before.TotalAlloc,
		Mallocs:    s.Mallocs - before.Mallocs,
		NumGC:      s.NumGC - before.NumGC,
		PeakHeap:   max(s.HeapAlloc, before.HeapAlloc),
	}
}

// Measure runs fn and returns the allocation activity it caused. Concurrent
// goroutines contribute to the reading.
func (mc *MemoryCollector) Measure(fn func()) MemoryDelta {
	before := mc.Snapshot()
	fn()
	return mc.Snapshot().Since(before)
}
