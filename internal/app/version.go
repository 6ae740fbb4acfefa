package app

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/bigconv/internal/limbs"
)

// Build information, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args ask for the version. It is checked
// before flag parsing so that -version works alongside invalid flags.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-V", "--version", "-version":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "bigconv %s\n", Version)
	fmt.Fprintf(out, "Commit:     %s\n", Commit)
	fmt.Fprintf(out, "Built:      %s\n", BuildDate)
	fmt.Fprintf(out, "Go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "CPU:        %s\n", limbs.Fingerprint())
}
