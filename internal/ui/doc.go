// Package ui provides theme and color support for bigconv's terminal output.
// It defines ANSI color schemes for inline text and lipgloss styles for the
// result panel.
package ui
