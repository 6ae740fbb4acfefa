package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbru/bigconv/internal/limbs"
)

const (
	// CurrentProfileVersion is bumped whenever the profile layout or the
	// meaning of a threshold changes, invalidating older files.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is the profile's file name in the home directory.
	DefaultProfileFileName = ".bigconv_calibration.json"
	// DefaultMaxProfileAge is how long a profile is trusted.
	DefaultMaxProfileAge = 30 * 24 * time.Hour
)

// CalibrationProfile is the persisted outcome of a calibration run together
// with the hardware it was measured on.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	NumCPU      int    `json:"num_cpu"`
	GOARCH      string `json:"goarch"`
	GOOS        string `json:"goos"`
	GoVersion   string `json:"go_version"`
	WordSize    int    `json:"word_size"`
	CPUFeatures string `json:"cpu_features"`
	Kernel      string `json:"kernel"`

	// OptimalNaiveThreshold is the largest digit count for which the naive
	// decoder beat divide-and-conquer.
	OptimalNaiveThreshold int `json:"optimal_naive_threshold"`
	// OptimalParallelThreshold is the merge block size, in limbs, from
	// which concurrent merges paid off.
	OptimalParallelThreshold int `json:"optimal_parallel_threshold"`

	CalibrationDigits int    `json:"calibration_digits"`
	CalibrationTime   string `json:"calibration_time"`
	SystemLoad        string `json:"system_load,omitempty"`
}

// NewProfile returns a profile stamped with the current hardware.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CPUFeatures:    limbs.Fingerprint(),
		Kernel:         "default",
	}
}

// SaveProfile writes the profile as indented JSON. The file is replaced
// atomically so a concurrent reader never sees a partial profile.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calibration profile: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bigconv-profile-*")
	if err != nil {
		return fmt.Errorf("creating temporary profile: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving calibration profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding calibration profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path, or returns a fresh one and
// false when none can be read.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := loadProfile(path)
	if err != nil {
		return NewProfile(), false
	}
	return p, true
}

// IsValid reports whether the profile was measured on hardware identical to
// the current host with the current profile layout.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	current := NewProfile()
	return p.ProfileVersion == current.ProfileVersion &&
		p.NumCPU == current.NumCPU &&
		p.GOARCH == current.GOARCH &&
		p.WordSize == current.WordSize &&
		p.CPUFeatures == current.CPUFeatures
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String summarizes the profile for display.
func (p *CalibrationProfile) String() string {
	return fmt.Sprintf("calibration profile v%d (%s, %s/%s, %d CPUs, kernel %s): naive threshold %d digits, parallel threshold %d limbs, measured %s",
		p.ProfileVersion, p.CPUFeatures, p.GOOS, p.GOARCH, p.NumCPU, p.Kernel,
		p.OptimalNaiveThreshold, p.OptimalParallelThreshold, p.CalibratedAt.Format(time.RFC3339))
}

// GetDefaultProfilePath returns the profile path in the user's home
// directory, or in the temporary directory when there is none.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), DefaultProfileFileName)
	}
	return filepath.Join(home, DefaultProfileFileName)
}
