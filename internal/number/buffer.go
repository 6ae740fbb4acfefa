package number

import "iter"

// DefaultChunkSize is the size of the segments Buffer.Chunks yields. The
// decoders consume digits one chunk at a time.
const DefaultChunkSize = 8000

// Buffer is the validated digit stream produced by the scanner and consumed
// by the decoders. digits holds ASCII decimal or hex digits followed by a
// NUL byte; the first NUL marks the logical end of the digits.
type Buffer struct {
	digits []byte

	// Precision is the number of significant digits recorded.
	Precision int
	// Scale is the position of the decimal point relative to the first
	// recorded digit. Scale > Precision implies trailing zeros.
	Scale int
	// Negative is true when a negative sign (or parentheses) was scanned.
	Negative bool

	chunkSize int
}

// NewBuffer builds a Buffer from already validated digits. A NUL terminator
// is appended.
func NewBuffer(digits string, scale int, negative bool) *Buffer {
	b := &Buffer{
		digits:   make([]byte, 0, len(digits)+1),
		Scale:    scale,
		Negative: negative,
	}
	b.digits = append(b.digits, digits...)
	b.digits = append(b.digits, 0)
	b.Precision = b.Len()
	return b
}

func newScanBuffer(capacity int) *Buffer {
	return &Buffer{digits: make([]byte, 0, capacity+1)}
}

func (b *Buffer) appendDigit(c byte) {
	b.digits = append(b.digits, c)
	b.Precision++
}

func (b *Buffer) terminate() {
	b.digits = append(b.digits, 0)
}

// Len returns the number of digits before the first NUL.
func (b *Buffer) Len() int {
	for i, c := range b.digits {
		if c == 0 {
			return i
		}
	}
	return len(b.digits)
}

// Digits returns the digits before the first NUL.
func (b *Buffer) Digits() string {
	return string(b.digits[:b.Len()])
}

// Chunks yields the raw digit storage, terminator included, in consecutive
// segments of at most the buffer's chunk size.
func (b *Buffer) Chunks() iter.Seq[[]byte] {
	size := b.chunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte) bool) {
		for rest := b.digits; len(rest) > 0; {
			n := min(size, len(rest))
			if !yield(rest[:n]) {
				return
			}
			rest = rest[n:]
		}
	}
}
