// Package ui provides theme management for the application.
// The dark/light preference is the only visual state persisted between runs.
package ui

import "charm.land/lipgloss/v2"

// Theme defines a complete color palette for the application.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (focus, active tab, headers)
	Primary string
	// Secondary is used for key hints and informational accents
	Secondary string

	Bg         string // Main background
	BgSelected string // Selected item background (defaults to Primary if empty)

	Text        string // Primary text
	TextMuted   string // Secondary/muted text
	TextInverse string // Text on colored backgrounds

	Warning string
	Error   string
	Info    string
	Success string

	Border      string // Default borders
	BorderFocus string // Focused element borders (defaults to Primary if empty)
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names. They match the values stored in the config file.
const (
	ThemeDark  ThemeName = "dark"
	ThemeLight ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeDark

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeDark: {
		Name:        "Dark",
		Primary:     "#7C3AED",
		Secondary:   "#06B6D4",
		Bg:          "#1F2937",
		Text:        "#F9FAFB",
		TextMuted:   "#9CA3AF",
		TextInverse: "#1F2937",
		Warning:     "#F59E0B",
		Error:       "#EF4444",
		Info:        "#06B6D4",
		Success:     "#10B981",
		Border:      "#374151",
	},
	ThemeLight: {
		Name:        "Light",
		Primary:     "#6D28D9",
		Secondary:   "#0E7490",
		Bg:          "#F9FAFB",
		BgSelected:  "#DDD6FE",
		Text:        "#111827",
		TextMuted:   "#4B5563",
		TextInverse: "#F9FAFB",
		Warning:     "#B45309",
		Error:       "#B91C1C",
		Info:        "#0E7490",
		Success:     "#047857",
		Border:      "#D1D5DB",
	},
}

// ThemeNames returns the theme identifiers in display order.
func ThemeNames() []ThemeName {
	return []ThemeName{ThemeDark, ThemeLight}
}

// GetTheme returns a theme by name, falling back to the default
func GetTheme(name ThemeName) Theme {
	if t, ok := BuiltinThemes[name]; ok {
		return t
	}
	return BuiltinThemes[DefaultTheme]
}

var (
	currentTheme     = BuiltinThemes[DefaultTheme]
	currentThemeName = DefaultTheme
)

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	return currentTheme
}

// CurrentThemeName returns the name of the active theme
func CurrentThemeName() ThemeName {
	return currentThemeName
}

// SetTheme sets the active theme and regenerates all styles
func SetTheme(name ThemeName) {
	if _, ok := BuiltinThemes[name]; !ok {
		name = DefaultTheme
	}
	currentThemeName = name
	currentTheme = BuiltinThemes[name]
	regenerateStyles()
	RefreshModalStyles()
}

// SetThemeByName sets the active theme by string name
func SetThemeByName(name string) {
	SetTheme(ThemeName(name))
}

func init() {
	regenerateStyles()
	RefreshModalStyles()
}

// regenerateStyles updates all style variables based on the current theme
func regenerateStyles() {
	t := currentTheme

	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorMuted = lipgloss.Color(t.TextMuted)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorInfo = lipgloss.Color(t.Info)
	ColorError = lipgloss.Color(t.Error)
	ColorSuccess = lipgloss.Color(t.Success)

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText).
		Background(ColorPrimary).
		Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
		Foreground(ColorTextInverse).
		Background(ColorPrimary).
		Bold(true).
		Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus)

	PanelTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Padding(0, 1)

	ItemStyle = lipgloss.NewStyle().
		Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.GetBgSelected())).
		Foreground(ColorText).
		Bold(true).
		Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	ValueStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)

	InputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	InputFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus).
		Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	CardSelectedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(ColorBorderFocus)

	CardErrorStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Foreground(ColorError)

	CaptionStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Width(ModalWidth)

	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true).
		MarginTop(1)

	StatusLoadingStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	FlashErrorStyle = lipgloss.NewStyle().
		Foreground(ColorTextInverse).
		Background(ColorError).
		Bold(true).
		Padding(0, 1)

	FlashSuccessStyle = lipgloss.NewStyle().
		Foreground(ColorTextInverse).
		Background(ColorSuccess).
		Padding(0, 1)

	FlashWarningStyle = lipgloss.NewStyle().
		Foreground(ColorTextInverse).
		Background(ColorWarning).
		Padding(0, 1)

	FlashInfoStyle = lipgloss.NewStyle().
		Foreground(ColorTextInverse).
		Background(ColorInfo).
		Padding(0, 1)
}
