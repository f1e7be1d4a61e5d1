package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named colour palette for the TUI
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Button   lipgloss.AdaptiveColor
	ButtonFg lipgloss.AdaptiveColor
	Disabled lipgloss.AdaptiveColor
}

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Available themes
var (
	DefaultTheme = Theme{
		Name:      "default",
		Primary:   ac("#1E40AF", "#3B82F6"),
		Secondary: ac("#6B7280", "#9CA3AF"),
		Success:   ac("#059669", "#10B981"),
		Warning:   ac("#D97706", "#F59E0B"),
		Error:     ac("#DC2626", "#EF4444"),
		Border:    ac("#D1D5DB", "#374151"),
		Muted:     ac("#6B7280", "#9CA3AF"),
		Button:    ac("#1E40AF", "#2563EB"),
		ButtonFg:  ac("#FFFFFF", "#F9FAFB"),
		Disabled:  ac("#9CA3AF", "#4B5563"),
	}

	HighContrastTheme = Theme{
		Name:      "high-contrast",
		Primary:   ac("#000000", "#FFFFFF"),
		Secondary: ac("#666666", "#BBBBBB"),
		Success:   ac("#006600", "#00FF00"),
		Warning:   ac("#CC6600", "#FFAA00"),
		Error:     ac("#CC0000", "#FF4444"),
		Border:    ac("#000000", "#FFFFFF"),
		Muted:     ac("#666666", "#BBBBBB"),
		Button:    ac("#000080", "#FFFF00"),
		ButtonFg:  ac("#FFFFFF", "#000000"),
		Disabled:  ac("#999999", "#555555"),
	}

	MinimalTheme = Theme{
		Name:      "minimal",
		Primary:   ac("#2D3748", "#E2E8F0"),
		Secondary: ac("#718096", "#A0AEC0"),
		Success:   ac("#2F855A", "#68D391"),
		Warning:   ac("#C05621", "#F6AD55"),
		Error:     ac("#C53030", "#FC8181"),
		Border:    ac("#E2E8F0", "#2D3748"),
		Muted:     ac("#A0AEC0", "#718096"),
		Button:    ac("#4A5568", "#CBD5E0"),
		ButtonFg:  ac("#FFFFFF", "#1A202C"),
		Disabled:  ac("#CBD5E0", "#4A5568"),
	}
)

var (
	themeMu      sync.RWMutex
	currentTheme = DefaultTheme
)

// GetTheme returns the current active theme
func GetTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "", "default":
		SetTheme(&DefaultTheme)
	case "high-contrast":
		SetTheme(&HighContrastTheme)
	case "minimal":
		SetTheme(&MinimalTheme)
	default:
		return false
	}
	return true
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// Styles contains the styled components used by the views
type Styles struct {
	Theme Theme

	Title     lipgloss.Style
	Subheader lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style

	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style

	Panel lipgloss.Style
	Toast lipgloss.Style
}

// GetStyles builds styles from the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	button := lipgloss.NewStyle().
		Padding(0, 3).
		Bold(true)

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Subheader: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Button: button.
			Background(theme.Button).
			Foreground(theme.ButtonFg),

		ButtonDisabled: button.
			Background(theme.Disabled).
			Foreground(theme.ButtonFg),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 2),
	}
}
