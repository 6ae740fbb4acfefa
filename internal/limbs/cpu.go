package limbs

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sys/cpu"
)

// CPUFeatures describes the instruction set extensions relevant to
// multi-word arithmetic on the running machine.
type CPUFeatures struct {
	Arch  string
	ADX   bool // add-with-carry chains (amd64)
	BMI2  bool // MULX (amd64)
	AVX2  bool
	ASIMD bool // arm64
}

var (
	cpuOnce     sync.Once
	cpuFeatures CPUFeatures
)

// GetCPUFeatures returns the detected CPU features. Detection runs once.
func GetCPUFeatures() CPUFeatures {
	cpuOnce.Do(func() {
		cpuFeatures = CPUFeatures{
			Arch:  runtime.GOARCH,
			ADX:   cpu.X86.HasADX,
			BMI2:  cpu.X86.HasBMI2,
			AVX2:  cpu.X86.HasAVX2,
			ASIMD: cpu.ARM64.HasASIMD,
		}
	})
	return cpuFeatures
}

// String returns a compact, stable representation such as "amd64+adx+bmi2".
// Calibration profiles store it to detect a change of hardware.
func (f CPUFeatures) String() string {
	parts := []string{f.Arch}
	if f.ADX {
		parts = append(parts, "adx")
	}
	if f.BMI2 {
		parts = append(parts, "bmi2")
	}
	if f.AVX2 {
		parts = append(parts, "avx2")
	}
	if f.ASIMD {
		parts = append(parts, "asimd")
	}
	return strings.Join(parts, "+")
}

// Fingerprint identifies the arithmetic capabilities of the host, including
// the logical CPU count.
func Fingerprint() string {
	return fmt.Sprintf("%s/%dcpu", GetCPUFeatures(), runtime.NumCPU())
}
