// Package limbs implements the word-level arithmetic used by the text
// conversion engine: vector primitives over little-endian 32-bit limbs,
// multiplication kernels and pooled scratch storage.
package limbs

import "math/bits"

// Word is a single 32-bit limb of a magnitude. Index 0 is the least
// significant limb.
type Word = uint32

const (
	// WordBits is the width of a limb in bits.
	WordBits = 32
	// WordBytes is the width of a limb in bytes.
	WordBytes = 4
)

// addVV computes z = x + y and returns the carry. len(x) and len(y) must be
// at least len(z).
func addVV(z, x, y []Word) (c Word) {
	for i := range z {
		s, cc := bits.Add32(x[i], y[i], c)
		z[i] = s
		c = cc
	}
	return c
}

// subVV computes z = x - y and returns the borrow.
func subVV(z, x, y []Word) (c Word) {
	for i := range z {
		d, bb := bits.Sub32(x[i], y[i], c)
		z[i] = d
		c = bb
	}
	return c
}

// addVW computes z = x + y where y is a single limb, and returns the carry.
func addVW(z, x []Word, y Word) (c Word) {
	c = y
	for i := range z {
		s, cc := bits.Add32(x[i], c, 0)
		z[i] = s
		c = cc
	}
	return c
}

// mulAddVWW computes z = x*y + r and returns the carry.
func mulAddVWW(z, x []Word, y, r Word) (c Word) {
	c = r
	for i := range z {
		p := uint64(x[i])*uint64(y) + uint64(c)
		z[i] = Word(p)
		c = Word(p >> WordBits)
	}
	return c
}

// addMulVVW computes z += x*y and returns the carry.
func addMulVVW(z, x []Word, y Word) (c Word) {
	for i := range z {
		p := uint64(x[i])*uint64(y) + uint64(z[i]) + uint64(c)
		z[i] = Word(p)
		c = Word(p >> WordBits)
	}
	return c
}

// AddVV computes z = x + y element-wise and returns the carry.
func AddVV(z, x, y []Word) Word {
	if len(z) == 0 {
		return 0
	}
	return addVV(z, x, y)
}

// SubVV computes z = x - y element-wise and returns the borrow.
func SubVV(z, x, y []Word) Word {
	if len(z) == 0 {
		return 0
	}
	return subVV(z, x, y)
}

// AddVW computes z = x + y where y is a single limb, and returns the carry.
func AddVW(z, x []Word, y Word) Word {
	if len(z) == 0 {
		return y
	}
	return addVW(z, x, y)
}

// MulAddVWW computes z = x*y + r element-wise and returns the carry.
func MulAddVWW(z, x []Word, y, r Word) Word {
	if len(z) == 0 {
		return r
	}
	return mulAddVWW(z, x, y, r)
}

// AddMulVVW computes z += x * y where y is a single limb.
func AddMulVVW(z, x []Word, y Word) Word {
	if len(z) == 0 {
		return 0
	}
	return addMulVVW(z, x, y)
}

// TwosComplement replaces d with its two's-complement negation (bitwise NOT
// plus one, with the carry rippling through every limb).
func TwosComplement(d []Word) {
	carry := Word(1)
	for i := range d {
		v, c := bits.Add32(^d[i], carry, 0)
		d[i] = v
		carry = c
	}
}

// Trim returns x without its most significant zero limbs. The result of
// trimming an all-zero slice is empty.
func Trim(x []Word) []Word {
	n := len(x)
	for n > 0 && x[n-1] == 0 {
		n--
	}
	return x[:n]
}

// Cmp compares two trimmed magnitudes.
func Cmp(x, y []Word) int {
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}
	for i := len(x) - 1; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}
