package sysmon

import (
	"strings"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestSample_MemPercentNonZero(t *testing.T) {
	s := Sample()
	if s.MemPercent == 0 {
		t.Error("expected non-zero MemPercent on a running system")
	}
	if s.AvailableBytes == 0 {
		t.Error("expected non-zero available memory")
	}
}

func TestStats_Busy(t *testing.T) {
	t.Parallel()
	if (Stats{CPUPercent: 10}).Busy() {
		t.Error("10% CPU should not be busy")
	}
	if !(Stats{CPUPercent: 90}).Busy() {
		t.Error("90% CPU should be busy")
	}
}

func TestStats_String(t *testing.T) {
	t.Parallel()
	got := Stats{CPUPercent: 12.5, MemPercent: 40, AvailableBytes: 3 << 20}.String()
	for _, want := range []string{"cpu=12.5%", "mem=40.0%", "available=3MiB"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
