package limbs

import (
	"sync"
	"testing"
)

func TestAcquire(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		size int
	}{
		{"small", 10},
		{"medium", 100},
		{"large", 1000},
		{"xlarge", 5000},
		{"too_large", 5_000_000}, // Direct allocation
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			slice := Acquire(tt.size)
			if len(slice) != tt.size {
				t.Errorf("Acquire(%d) got length %d, want %d", tt.size, len(slice), tt.size)
			}
			for i := range slice {
				if slice[i] != 0 {
					t.Errorf("Acquire(%d) not zeroed at index %d", tt.size, i)
					break
				}
			}
			Release(slice)
		})
	}
}

func TestAcquireUnsafe(t *testing.T) {
	t.Parallel()
	for _, size := range []int{10, 100, 1000, 5000} {
		slice := AcquireUnsafe(size)
		if len(slice) != size {
			t.Errorf("AcquireUnsafe(%d) got length %d", size, len(slice))
		}
		for i := range slice {
			slice[i] = Word(i)
		}
		for i := range slice {
			if slice[i] != Word(i) {
				t.Errorf("AcquireUnsafe(%d) write failed at index %d", size, i)
				break
			}
		}
		Release(slice)
	}
}

func TestAcquireAfterDirtyRelease(t *testing.T) {
	t.Parallel()
	dirty := Acquire(100)
	for i := range dirty {
		dirty[i] = 0xDEADBEEF
	}
	Release(dirty)

	clean := Acquire(100)
	defer Release(clean)
	for i, w := range clean {
		if w != 0 {
			t.Fatalf("Acquire returned stale limb %#x at %d", w, i)
		}
	}
}

func TestReleaseForeignSlice(t *testing.T) {
	t.Parallel()
	// Neither call may panic; a non-class capacity is simply dropped.
	Release(nil)
	Release(make([]Word, 100))
	ReleaseBytes(nil)
	ReleaseBytes(make([]byte, 10))
}

func TestGetWordSlicePoolIndex(t *testing.T) {
	t.Parallel()
	for _, size := range []int{1, 63, 64, 65, 255, 256, 257, 1024, 4096, 4097, 1 << 20, 4194304, 4194305} {
		got := getWordSlicePoolIndex(size)
		want := getWordSlicePoolIndexLinear(size)
		if got != want {
			t.Errorf("getWordSlicePoolIndex(%d) = %d, want %d", size, got, want)
		}
	}
}

func TestGetByteSlicePoolIndex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size int
		want int
	}{
		{1, 0}, {256, 0}, {257, 1}, {4096, 1}, {4097, 2}, {65536, 2}, {65537, 3}, {1048576, 3}, {1048577, -1},
	}
	for _, tt := range tests {
		if got := getByteSlicePoolIndex(tt.size); got != tt.want {
			t.Errorf("getByteSlicePoolIndex(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestAcquireBytes(t *testing.T) {
	t.Parallel()
	buf := AcquireBytes(300)
	if len(buf) != 0 || cap(buf) < 300 {
		t.Errorf("AcquireBytes(300) len=%d cap=%d", len(buf), cap(buf))
	}
	ReleaseBytes(buf)
}

func TestPoolConcurrency(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s := Acquire(64 + (seed*i)%2000)
				s[0] = Word(seed)
				Release(s)
			}
		}(g)
	}
	wg.Wait()
}

func TestEstimateLimbs(t *testing.T) {
	t.Parallel()
	if EstimateLimbs(0) != 0 {
		t.Error("EstimateLimbs(0) should be 0")
	}
	// 10^9000 needs ceil(9000*log2(10)/32) = 935 limbs
	if got := EstimateLimbs(9000); got < 935 {
		t.Errorf("EstimateLimbs(9000) = %d, want at least 935", got)
	}
}

func TestEnsureWarmedIdempotent(t *testing.T) {
	t.Parallel()
	EnsureWarmed(50_000)
	EnsureWarmed(50_000)
	if !poolsWarmed.Load() {
		t.Error("poolsWarmed should be set after EnsureWarmed")
	}
}

func BenchmarkAcquireRelease(b *testing.B) {
	for b.Loop() {
		s := Acquire(1024)
		Release(s)
	}
}
