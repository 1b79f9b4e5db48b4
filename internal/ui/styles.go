package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette, set from the active theme by regenerateStyles.
var (
	ColorPrimary     color.Color
	ColorSecondary   color.Color
	ColorMuted       color.Color
	ColorBorder      color.Color
	ColorBorderFocus color.Color
	ColorBg          color.Color
	ColorText        color.Color
	ColorTextMuted   color.Color
	ColorTextInverse color.Color
	ColorWarning     color.Color
	ColorInfo        color.Color
	ColorError       color.Color
	ColorSuccess     color.Color
)

// Header styles
var (
	HeaderStyle    lipgloss.Style
	TabStyle       lipgloss.Style
	TabActiveStyle lipgloss.Style
)

// Footer styles
var (
	FooterStyle     lipgloss.Style
	FooterKeyStyle  lipgloss.Style
	FooterDescStyle lipgloss.Style
)

// Panel styles
var (
	PanelStyle        lipgloss.Style
	PanelFocusedStyle lipgloss.Style
	PanelTitleStyle   lipgloss.Style
)

// Form and list styles
var (
	ItemStyle         lipgloss.Style
	ItemSelectedStyle lipgloss.Style
	LabelStyle        lipgloss.Style
	ValueStyle        lipgloss.Style
	InputStyle        lipgloss.Style
	InputFocusedStyle lipgloss.Style
)

// Gallery styles
var (
	CardStyle         lipgloss.Style
	CardSelectedStyle lipgloss.Style
	CardErrorStyle    lipgloss.Style
	CaptionStyle      lipgloss.Style
)

// Modal styles
var (
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style
)

// Status and flash styles
var (
	StatusLoadingStyle lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	FlashErrorStyle    lipgloss.Style
	FlashSuccessStyle  lipgloss.Style
	FlashWarningStyle  lipgloss.Style
	FlashInfoStyle     lipgloss.Style
)
