//go:generate mockgen -source=kernel.go -destination=mocks/mock_kernel.go -package=mocks

package limbs

import (
	"math/big"
	"math/bits"
	"slices"
	"sync"
)

// KaratsubaThreshold is the operand length, in limbs, from which the default
// kernel hands multiplications to math/big. Below it the schoolbook loop has
// lower constant factors than the conversion to big.Word slices.
const KaratsubaThreshold = 48

// Kernel multiplies limb sequences. Implementations must be safe for
// concurrent use: the divide-and-conquer decoder merges independent block
// pairs in parallel.
type Kernel interface {
	// Multiply stores left*right into bits, which must have exactly
	// len(left)+len(right) limbs. bits is overwritten and must not alias
	// either operand.
	Multiply(left, right, bits []Word)
	// Square stores value*value into bits, which must have exactly
	// 2*len(value) limbs.
	Square(value, bits []Word)
}

// DefaultKernel is the portable kernel: schoolbook multiplication for short
// operands, math/big (Karatsuba) for long ones.
type DefaultKernel struct {
	// Threshold overrides KaratsubaThreshold when positive.
	Threshold int
}

var _ Kernel = DefaultKernel{}

var (
	kernelsMu sync.RWMutex
	kernels   = map[string]func() Kernel{
		"default": func() Kernel { return DefaultKernel{} },
	}
)

// registerKernel makes a kernel selectable by name. Build-tagged kernels
// register themselves from init.
func registerKernel(name string, factory func() Kernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	kernels[name] = factory
}

// KernelByName returns a new instance of the named kernel.
func KernelByName(name string) (Kernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	factory, ok := kernels[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// KernelNames lists the kernels compiled into the binary, sorted.
func KernelNames() []string {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (k DefaultKernel) threshold() int {
	if k.Threshold > 0 {
		return k.Threshold
	}
	return KaratsubaThreshold
}

// Multiply implements Kernel.
func (k DefaultKernel) Multiply(left, right, z []Word) {
	if len(z) != len(left)+len(right) {
		panic("limbs: Multiply destination has wrong length")
	}
	if min(len(left), len(right)) < k.threshold() {
		basicMul(z, left, right)
		return
	}
	x := new(big.Int).SetBits(toNat(left))
	y := new(big.Int).SetBits(toNat(right))
	fromNat(z, x.Mul(x, y).Bits())
}

// Square implements Kernel.
func (k DefaultKernel) Square(value, z []Word) {
	if len(z) != 2*len(value) {
		panic("limbs: Square destination has wrong length")
	}
	if len(value) < k.threshold() {
		basicSqr(z, value)
		return
	}
	x := new(big.Int).SetBits(toNat(value))
	fromNat(z, x.Mul(x, x).Bits())
}

// basicMul is the schoolbook O(n*m) multiplication.
func basicMul(z, x, y []Word) {
	clear(z)
	for i, d := range y {
		if d != 0 {
			z[len(x)+i] = addMulVVW(z[i:i+len(x)], x, d)
		}
	}
}

// basicSqr squares x by computing the off-diagonal products once, doubling
// them and adding the diagonal squares.
func basicSqr(z, x []Word) {
	n := len(x)
	clear(z)
	if n == 0 {
		return
	}
	for i := 1; i < n; i++ {
		if x[i] != 0 {
			z[2*i] = addMulVVW(z[i:2*i], x[:i], x[i])
		}
	}
	// double the cross products
	var carry Word
	for i := range z {
		hi := z[i] >> (WordBits - 1)
		z[i] = z[i]<<1 | carry
		carry = hi
	}
	// add the squares x[i]^2 at position 2i
	var c Word
	for i := 0; i < n; i++ {
		hi, lo := bits.Mul32(x[i], x[i])
		s, c1 := bits.Add32(z[2*i], lo, c)
		z[2*i] = s
		s, c2 := bits.Add32(z[2*i+1], hi, c1)
		z[2*i+1] = s
		c = c2
	}
}

// toNat packs little-endian 32-bit limbs into math/big words.
func toNat(x []Word) []big.Word {
	if bits.UintSize == 32 {
		z := make([]big.Word, len(x))
		for i, w := range x {
			z[i] = big.Word(w)
		}
		return z
	}
	shift := uint(WordBits)
	z := make([]big.Word, (len(x)+1)/2)
	for i, w := range x {
		z[i/2] |= big.Word(w) << (shift * uint(i%2))
	}
	return z
}

// fromNat unpacks math/big words into dst, zero filling the remainder.
// Words that do not fit into dst must be zero.
func fromNat(dst []Word, z []big.Word) {
	clear(dst)
	if bits.UintSize == 32 {
		for i, w := range z {
			dst[i] = Word(w)
		}
		return
	}
	shift := uint(WordBits)
	for i, w := range z {
		dst[2*i] = Word(w)
		if hi := Word(w >> shift); hi != 0 || 2*i+1 < len(dst) {
			dst[2*i+1] = hi
		}
	}
}

// FromBig returns the magnitude of x as trimmed little-endian limbs.
func FromBig(x *big.Int) []Word {
	words := x.Bits()
	if len(words) == 0 {
		return nil
	}
	n := len(words)
	if bits.UintSize == 64 {
		n *= 2
	}
	dst := make([]Word, n)
	fromNat(dst, words)
	return Trim(dst)
}

// ToBig returns the non-negative integer whose magnitude is x.
func ToBig(x []Word) *big.Int {
	return new(big.Int).SetBits(toNat(x))
}
