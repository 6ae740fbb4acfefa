package tui

// sparkBlocks are the eight heights of a sparkline cell, lowest first.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RingBuffer keeps the most recent samples up to a fixed capacity.
type RingBuffer struct {
	data  []float64
	head  int
	count int
}

// NewRingBuffer creates a ring buffer holding at least one sample.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{data: make([]float64, max(capacity, 1))}
}

// Push adds a sample, dropping the oldest when full.
func (r *RingBuffer) Push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	r.count = min(r.count+1, len(r.data))
}

// Len returns the number of samples held.
func (r *RingBuffer) Len() int { return r.count }

// Last returns the newest sample, or 0 when empty.
func (r *RingBuffer) Last() float64 {
	if r.count == 0 {
		return 0
	}
	return r.data[(r.head-1+len(r.data))%len(r.data)]
}

// Values returns the samples oldest first.
func (r *RingBuffer) Values() []float64 {
	out := make([]float64, r.count)
	start := r.head - r.count + len(r.data)
	for i := range out {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// Reset drops every sample.
func (r *RingBuffer) Reset() {
	r.head, r.count = 0, 0
}

// RenderSparkline draws the newest width percentages (clamped to 0..100)
// as block characters, left-padded with spaces to width.
func RenderSparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	runes := make([]rune, 0, width)
	for range width - len(values) {
		runes = append(runes, ' ')
	}
	for _, v := range values {
		v = min(max(v, 0), 100)
		runes = append(runes, sparkBlocks[int(v/100*7)])
	}
	return string(runes)
}
