//go:build gmp

package limbs

import (
	"encoding/binary"

	"github.com/ncw/gmp"
)

// GMPKernel multiplies through libgmp. It is only available in binaries
// built with the gmp tag and pays a byte conversion on every call, so it
// only wins for operands far above KaratsubaThreshold.
type GMPKernel struct {
	// Threshold is the operand length below which the schoolbook path is
	// used. Zero means KaratsubaThreshold.
	Threshold int
}

var _ Kernel = GMPKernel{}

func init() {
	registerKernel("gmp", func() Kernel { return GMPKernel{} })
}

func (k GMPKernel) threshold() int {
	if k.Threshold > 0 {
		return k.Threshold
	}
	return KaratsubaThreshold
}

// Multiply implements Kernel.
func (k GMPKernel) Multiply(left, right, z []Word) {
	if len(z) != len(left)+len(right) {
		panic("limbs: Multiply destination has wrong length")
	}
	if min(len(left), len(right)) < k.threshold() {
		basicMul(z, left, right)
		return
	}
	x := new(gmp.Int).SetBytes(toBigEndian(left))
	y := new(gmp.Int).SetBytes(toBigEndian(right))
	fromBigEndian(z, x.Mul(x, y).Bytes())
}

// Square implements Kernel.
func (k GMPKernel) Square(value, z []Word) {
	if len(z) != 2*len(value) {
		panic("limbs: Square destination has wrong length")
	}
	if len(value) < k.threshold() {
		basicSqr(z, value)
		return
	}
	x := new(gmp.Int).SetBytes(toBigEndian(value))
	fromBigEndian(z, x.Mul(x, x).Bytes())
}

func toBigEndian(x []Word) []byte {
	buf := make([]byte, len(x)*WordBytes)
	for i, w := range x {
		binary.BigEndian.PutUint32(buf[len(buf)-(i+1)*WordBytes:], w)
	}
	return buf
}

func fromBigEndian(dst []Word, buf []byte) {
	clear(dst)
	for i := 0; len(buf) > 0; i++ {
		n := min(WordBytes, len(buf))
		var w Word
		for _, b := range buf[len(buf)-n:] {
			w = w<<8 | Word(b)
		}
		dst[i] = w
		buf = buf[:len(buf)-n]
	}
}
