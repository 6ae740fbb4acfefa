package orchestration

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/bigconv/internal/config"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/number"
)

func compareConfig() config.AppConfig {
	return config.AppConfig{Algo: "auto", Compare: true}
}

func newTestConverter(t *testing.T, naiveThreshold int) *number.Converter {
	t.Helper()
	c, err := number.New(number.Options{NaiveThreshold: naiveThreshold})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func decoderNames(decoders []Decoder) string {
	names := make([]string, len(decoders))
	for i, d := range decoders {
		names[i] = d.Name()
	}
	return strings.Join(names, ",")
}

func TestGetDecodersToRun(t *testing.T) {
	t.Parallel()
	c := newTestConverter(t, 100)
	factory := NewDecoderFactory(c)

	tests := []struct {
		name   string
		cfg    config.AppConfig
		digits int
		want   string
	}{
		{"compare runs all sorted", compareConfig(), 10, "divide-and-conquer,naive,reference"},
		{"auto below threshold", config.AppConfig{Algo: "auto"}, 100, "naive"},
		{"auto above threshold", config.AppConfig{Algo: "auto"}, 101, "divide-and-conquer"},
		{"forced naive", config.AppConfig{Algo: "naive"}, 1 << 20, "naive"},
		{"forced dc", config.AppConfig{Algo: "dc"}, 1, "divide-and-conquer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := decoderNames(GetDecodersToRun(tt.cfg, factory, c, tt.digits)); got != tt.want {
				t.Errorf("decoders = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecoderFactoryGetUnknown(t *testing.T) {
	t.Parallel()
	if _, err := NewDecoderFactory(number.Default()).Get("fft"); err == nil {
		t.Fatal("expected error for unknown decoder")
	}
}

func TestReferenceDecoder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		buf     *number.Buffer
		want    string
		wantErr error
	}{
		{"plain", number.NewBuffer("12345", 5, false), "12345", nil},
		{"trailing zeros", number.NewBuffer("12", 5, false), "12000", nil},
		{"negative", number.NewBuffer("7", 1, true), "-7", nil},
		{"zero fraction", number.NewBuffer("1500", 2, false), "15", nil},
		{"non integral", number.NewBuffer("15", 1, false), "", apperrors.ErrNonIntegral},
		{"negative scale", number.NewBuffer("1", -1, false), "", apperrors.ErrNegativeScale},
		{"negative zero", number.NewBuffer("0", 1, true), "0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := referenceDecoder{}.Decode(context.Background(), tt.buf)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("value = %s, want %s", got, tt.want)
			}
			if !v.IsCanonical() {
				t.Error("value is not canonical")
			}
		})
	}
}

func TestDecodersHonorCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	factory := NewDecoderFactory(number.Default())
	for _, name := range factory.List() {
		d, _ := factory.Get(name)
		if _, err := d.Decode(ctx, number.NewBuffer("1", 1, false)); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", name, err)
		}
	}
}

// TestDecodersAgree_PropertyBased verifies that every decoder produces the
// same value for random digit buffers.
func TestDecodersAgree_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	c := newTestConverter(t, 30)
	factory := NewDecoderFactory(c)
	decoders := GetDecodersToRun(compareConfig(), factory, c, 0)

	properties.Property("naive == divide-and-conquer == math/big", prop.ForAll(
		func(seed uint64, n int, zeros int, negative bool) bool {
			r := rand.New(rand.NewPCG(seed, uint64(n)))
			var sb strings.Builder
			sb.WriteByte(byte('1' + r.IntN(9)))
			for range n - 1 {
				sb.WriteByte(byte('0' + r.IntN(10)))
			}
			b := number.NewBuffer(sb.String(), n+zeros, negative)

			results, _ := ExecuteDecodes(context.Background(), decoders, b, NullProgressReporter{}, nil)
			for _, res := range results {
				if res.Err != nil {
					t.Logf("%s: %v", res.Name, res.Err)
					return false
				}
			}
			return CheckConsistency(results) == nil
		},
		gen.UInt64(),
		gen.IntRange(1, 800),
		gen.IntRange(0, 700),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
