package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for terminal output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color for important elements.
	Primary string
	// Secondary is used for less prominent elements.
	Secondary string
	// Success indicates positive outcomes or completed operations.
	Success string
	// Warning is used for caution messages or non-critical issues.
	Warning string
	// Error indicates failures or critical issues.
	Error string
	// Info is used for informational messages.
	Info string
	// Bold is the escape code for bold text.
	Bold string
	// Underline is the escape code for underlined text.
	Underline string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or -no-color is given.
	NoColorTheme = Theme{Name: "none"}

	// currentTheme is the active theme used throughout the application.
	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// PanelTheme holds the lipgloss colors of the result panel.
type PanelTheme struct {
	Border  lipgloss.TerminalColor
	Title   lipgloss.TerminalColor
	Label   lipgloss.TerminalColor
	Value   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
}

var (
	// DarkPanelTheme is the panel palette for colored output.
	DarkPanelTheme = PanelTheme{
		Border:  lipgloss.Color("#4488FF"),
		Title:   lipgloss.Color("#7AA2F7"),
		Label:   lipgloss.Color("#9AA5CE"),
		Value:   lipgloss.Color("#E0E0E0"),
		Dim:     lipgloss.Color("#666666"),
		Success: lipgloss.Color("#9ece6a"),
		Error:   lipgloss.Color("#FF4444"),
	}

	// NoColorPanelTheme renders the panel in the terminal's default colors.
	NoColorPanelTheme = PanelTheme{
		Border:  lipgloss.NoColor{},
		Title:   lipgloss.NoColor{},
		Label:   lipgloss.NoColor{},
		Value:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
	}
)

// GetCurrentPanelTheme returns the panel theme matching the active theme.
func GetCurrentPanelTheme() PanelTheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == "none" {
		return NoColorPanelTheme
	}
	return DarkPanelTheme
}

// PanelStyle returns the bordered box style of the result panel.
func PanelStyle() lipgloss.Style {
	t := GetCurrentPanelTheme()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}

// LabelStyle returns the style of panel field labels.
func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetCurrentPanelTheme().Label).Width(12)
}

// ValueStyle returns the style of panel field values.
func ValueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetCurrentPanelTheme().Value)
}

// TitleStyle returns the style of the panel title.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetCurrentPanelTheme().Title).Bold(true)
}

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name.
// Valid names are: "dark", "light", "none".
// Unknown names default to dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
