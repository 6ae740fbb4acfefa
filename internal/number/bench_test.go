package number

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/agbru/bigconv/internal/bigint"
)

func BenchmarkDecodeDecimal(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 1))
	c := Default()
	for _, n := range []int{100, 1000, 10000, 50000} {
		digits := randomDigits(r, n)
		buf := NewBuffer(digits, n, false)
		for _, alg := range []Algorithm{AlgorithmNaive, AlgorithmDivideAndConquer} {
			b.Run(fmt.Sprintf("%s/%d", alg, n), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					if _, err := c.DecodeDecimal(buf, alg); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkParseHex(b *testing.B) {
	r := rand.New(rand.NewPCG(2, 2))
	const hexDigits = "0123456789abcdef"
	text := make([]byte, 4096)
	for i := range text {
		text[i] = hexDigits[r.IntN(16)]
	}
	s := string(text)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Parse(s, HexNumber, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFormat(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 3))
	v, err := Parse(randomDigits(r, 5000), Integer, nil)
	if err != nil {
		b.Fatal(err)
	}
	for _, format := range []string{"D", "X", "N0", "E20"} {
		b.Run(format, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Format(v, format, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkTryFormatSmall(b *testing.B) {
	v := bigint.FromInt64(-1234567890123)
	dst := make([]byte, 64)
	b.ReportAllocs()
	for b.Loop() {
		if _, ok, err := TryFormat(dst, v, "D", nil); !ok || err != nil {
			b.Fatal("TryFormat failed")
		}
	}
}
