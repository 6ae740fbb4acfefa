// Package bigint defines the signed arbitrary-precision integer produced by
// the parsers and consumed by the formatters.
//
// An Int is stored in one of two canonical shapes:
//
//   - inline: bits is nil and the value is sign itself. Every value in
//     [math.MinInt32+1, math.MaxInt32] is inline, as is math.MinInt32 when it
//     is built with FromInt64.
//   - extended: sign is +1 or -1 and bits is the trimmed little-endian
//     magnitude. A one-limb magnitude is extended only when it does not fit
//     inline (above MaxInt32, or exactly 2^31 for a negative value produced by
//     a decoder).
package bigint

import (
	"math"
	"math/big"

	"github.com/agbru/bigconv/internal/limbs"
)

// Int is a signed arbitrary-precision integer. The zero value is 0.
// Int values are immutable once constructed.
type Int struct {
	sign int32
	bits []uint32
}

// Zero is the canonical zero.
var Zero = Int{}

// Canonicalize builds the canonical Int for a magnitude and a sign. The
// magnitude may carry top zero limbs; it is copied when the result is
// extended, so the caller may reuse or release it afterwards.
func Canonicalize(negative bool, magnitude []uint32) Int {
	magnitude = limbs.Trim(magnitude)
	switch {
	case len(magnitude) == 0:
		return Zero
	case len(magnitude) == 1 && magnitude[0] <= math.MaxInt32:
		if negative {
			return Int{sign: -int32(magnitude[0])}
		}
		return Int{sign: int32(magnitude[0])}
	}
	bits := make([]uint32, len(magnitude))
	copy(bits, magnitude)
	if negative {
		return Int{sign: -1, bits: bits}
	}
	return Int{sign: 1, bits: bits}
}

// FromInt64 returns the canonical Int for v.
func FromInt64(v int64) Int {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int{sign: int32(v)}
	}
	negative := v < 0
	m := uint64(v)
	if negative {
		m = -m
	}
	return Canonicalize(negative, []uint32{uint32(m), uint32(m >> 32)})
}

// FromBig returns the canonical Int for x.
func FromBig(x *big.Int) Int {
	if x.IsInt64() {
		return FromInt64(x.Int64())
	}
	return Canonicalize(x.Sign() < 0, limbs.FromBig(x))
}

// FromRaw builds an Int from its raw representation without canonicalizing.
// It exists for tests and diagnostics that need a specific non-canonical
// shape; parsers always go through Canonicalize.
func FromRaw(sign int32, bits []uint32) Int {
	return Int{sign: sign, bits: bits}
}

// Big returns x as a new math/big integer.
func (x Int) Big() *big.Int {
	if x.bits == nil {
		return big.NewInt(int64(x.sign))
	}
	b := limbs.ToBig(x.bits)
	if x.sign < 0 {
		b.Neg(b)
	}
	return b
}

// Sign returns -1, 0 or +1.
func (x Int) Sign() int {
	switch {
	case x.sign < 0:
		return -1
	case x.sign > 0:
		return 1
	}
	return 0
}

// RawSign returns the stored sign field: the value itself when x is inline,
// otherwise +1 or -1.
func (x Int) RawSign() int32 { return x.sign }

// Bits returns the stored magnitude limbs, or nil when x is inline. The
// returned slice must not be modified.
func (x Int) Bits() []uint32 { return x.bits }

// IsInline reports whether x is stored without a limb array.
func (x Int) IsInline() bool { return x.bits == nil }

// IsZero reports whether x == 0.
func (x Int) IsZero() bool { return x.bits == nil && x.sign == 0 }

// Magnitude returns |x| as trimmed little-endian limbs. For inline values it
// allocates a new one-limb slice; otherwise it returns the stored limbs.
func (x Int) Magnitude() []uint32 {
	if x.bits != nil {
		return x.bits
	}
	switch {
	case x.sign == 0:
		return nil
	case x.sign < 0:
		return []uint32{uint32(-int64(x.sign))}
	}
	return []uint32{uint32(x.sign)}
}

// Neg returns -x in canonical form.
func (x Int) Neg() Int {
	if x.bits == nil {
		if x.sign == math.MinInt32 {
			return Int{sign: 1, bits: []uint32{1 << 31}}
		}
		return Int{sign: -x.sign}
	}
	return Canonicalize(x.sign > 0, x.bits)
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x Int) Cmp(y Int) int {
	xs, ys := x.Sign(), y.Sign()
	if xs != ys {
		if xs < ys {
			return -1
		}
		return 1
	}
	c := limbs.Cmp(x.Magnitude(), y.Magnitude())
	if xs < 0 {
		return -c
	}
	return c
}

// Equal reports whether x and y have the same value.
func (x Int) Equal(y Int) bool { return x.Cmp(y) == 0 }

// String returns the decimal representation of x.
func (x Int) String() string {
	if x.bits == nil {
		return big.NewInt(int64(x.sign)).String()
	}
	return x.Big().String()
}

// IsCanonical reports whether x satisfies the representation invariant.
func (x Int) IsCanonical() bool {
	if x.bits == nil {
		return true
	}
	if x.sign != 1 && x.sign != -1 {
		return false
	}
	n := len(x.bits)
	if n == 0 || x.bits[n-1] == 0 {
		return false
	}
	if n == 1 {
		return x.bits[0] > math.MaxInt32
	}
	return true
}
