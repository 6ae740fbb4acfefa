package config

import (
	"bytes"
	"testing"
)

func TestShorthandsShareTheLongFlag(t *testing.T) {
	t.Parallel()
	cfg, err := ParseConfig("bigconv", []string{"-f", "X4", "-q", "-o", "out.txt", "-d", "-v", "-value", "7"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Format != "X4" || !cfg.Quiet || cfg.OutputFile != "out.txt" || !cfg.Details || !cfg.Verbose {
		t.Errorf("shorthands not applied: %+v", cfg)
	}
}

func TestParseConfigTUI(t *testing.T) {
	t.Parallel()
	for _, mode := range []string{"-compare", "-calibrate"} {
		cfg, err := ParseConfig("bigconv", []string{"-tui", mode, "12"}, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("-tui %s: %v", mode, err)
		}
		if !cfg.TUI {
			t.Errorf("-tui %s: TUI not set", mode)
		}
	}
}

func TestFlags(t *testing.T) {
	t.Parallel()
	specs := Flags()
	byName := make(map[string]FlagSpec, len(specs))
	for _, s := range specs {
		if _, dup := byName[s.Name]; dup {
			t.Errorf("duplicate flag %q", s.Name)
		}
		byName[s.Name] = s
	}
	if specs[0].Name != "help" || specs[1].Name != "version" {
		t.Errorf("specs start with %q, %q", specs[0].Name, specs[1].Name)
	}

	tests := []struct {
		name   string
		short  string
		kind   ValueKind
		values bool
	}{
		{"format", "f", ValueText, true},
		{"input", "i", ValueFile, false},
		{"output", "o", ValueFile, false},
		{"calibration-profile", "", ValueFile, false},
		{"quiet", "q", ValueNone, false},
		{"tui", "", ValueNone, false},
		{"kernel", "", ValueText, true},
		{"value", "", ValueText, false},
		{"timeout", "", ValueText, true},
	}
	for _, tt := range tests {
		s, ok := byName[tt.name]
		if !ok {
			t.Errorf("flag %q missing", tt.name)
			continue
		}
		if s.Short != tt.short || s.Kind != tt.kind || (len(s.Values) > 0) != tt.values {
			t.Errorf("%s = %+v, want short %q kind %d values %v", tt.name, s, tt.short, tt.kind, tt.values)
		}
		if s.Usage == "" {
			t.Errorf("%s has no usage text", tt.name)
		}
	}
	for _, short := range []string{"f", "i", "o", "q", "v", "d"} {
		if _, ok := byName[short]; ok {
			t.Errorf("alias %q listed as its own flag", short)
		}
	}
}
