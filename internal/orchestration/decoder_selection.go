package orchestration

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/config"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/number"
)

// Decoder names.
const (
	NaiveDecoder     = "naive"
	DivideAndConquer = "divide-and-conquer"
	ReferenceDecoder = "reference"
)

// Decoder turns a decimal digit buffer into an integer.
type Decoder interface {
	Name() string
	Decode(ctx context.Context, b *number.Buffer) (bigint.Int, error)
}

type converterDecoder struct {
	name string
	c    *number.Converter
	alg  number.Algorithm
}

func (d converterDecoder) Name() string { return d.name }

func (d converterDecoder) Decode(ctx context.Context, b *number.Buffer) (bigint.Int, error) {
	if err := ctx.Err(); err != nil {
		return bigint.Zero, err
	}
	return d.c.DecodeDecimal(b, d.alg)
}

// referenceDecoder decodes through math/big. It shares no code with the
// converter's decoders.
type referenceDecoder struct{}

func (referenceDecoder) Name() string { return ReferenceDecoder }

func (referenceDecoder) Decode(ctx context.Context, b *number.Buffer) (bigint.Int, error) {
	if err := ctx.Err(); err != nil {
		return bigint.Zero, err
	}
	if b.Scale < 0 {
		return bigint.Zero, apperrors.ErrNegativeScale
	}
	digits := b.Digits()
	intPart := digits[:min(b.Scale, len(digits))]
	if strings.Trim(digits[len(intPart):], "0") != "" {
		return bigint.Zero, apperrors.ErrNonIntegral
	}

	v := new(big.Int)
	if intPart != "" {
		if _, ok := v.SetString(intPart, 10); !ok {
			return bigint.Zero, apperrors.ErrSyntax
		}
	}
	if zeros := b.Scale - len(intPart); zeros > 0 && v.Sign() != 0 {
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(zeros)), nil))
	}
	if b.Negative {
		v.Neg(v)
	}
	return bigint.FromBig(v), nil
}

// DecoderFactory provides the decoders by name.
type DecoderFactory struct {
	decoders map[string]Decoder
}

// NewDecoderFactory returns the decoders backed by c plus the math/big
// reference.
func NewDecoderFactory(c *number.Converter) *DecoderFactory {
	return &DecoderFactory{decoders: map[string]Decoder{
		NaiveDecoder:     converterDecoder{name: NaiveDecoder, c: c, alg: number.AlgorithmNaive},
		DivideAndConquer: converterDecoder{name: DivideAndConquer, c: c, alg: number.AlgorithmDivideAndConquer},
		ReferenceDecoder: referenceDecoder{},
	}}
}

// List returns the decoder names, sorted.
func (f *DecoderFactory) List() []string {
	names := make([]string, 0, len(f.decoders))
	for name := range f.decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the named decoder.
func (f *DecoderFactory) Get(name string) (Decoder, error) {
	d, ok := f.decoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown decoder %q", name)
	}
	return d, nil
}

// GetDecodersToRun returns every decoder, sorted by name, in comparison
// mode. Otherwise it returns the decoder the configured algorithm names,
// with "auto" resolved for digits.
func GetDecodersToRun(cfg config.AppConfig, factory *DecoderFactory, c *number.Converter, digits int) []Decoder {
	var names []string
	if cfg.Compare {
		names = factory.List()
	} else {
		alg := cfg.ParsedAlgorithm()
		if alg == number.AlgorithmAuto {
			alg = c.SelectAlgorithm(digits)
		}
		names = []string{NaiveDecoder}
		if alg == number.AlgorithmDivideAndConquer {
			names = []string{DivideAndConquer}
		}
	}
	decoders := make([]Decoder, 0, len(names))
	for _, name := range names {
		if d, err := factory.Get(name); err == nil {
			decoders = append(decoders, d)
		}
	}
	return decoders
}
