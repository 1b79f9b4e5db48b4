// Package ui provides constants for layout calculations and configuration.
package ui

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// FooterHeight is the height of the footer (flash line + key hints)
	FooterHeight = 2

	// BorderSize is the total border width (1 on each side)
	BorderSize = 2

	// SidebarWidthRatio is the denominator for the controls panel width
	SidebarWidthRatio = 3

	// SidebarMinWidth keeps the controls usable on narrow terminals
	SidebarMinWidth = 34

	// PromptHeight is the number of lines for the prompt textarea
	PromptHeight = 4

	// MinTerminalWidth and MinTerminalHeight clamp layout math
	MinTerminalWidth  = 60
	MinTerminalHeight = 16

	// CardCaptionHeight is the caption line under each gallery image
	CardCaptionHeight = 1

	// DefaultWrapWidth is the default width for text wrapping when the panel width is unknown
	DefaultWrapWidth = 80
)

// Modal dimensions
const (
	// ModalWidth is the default width of modals
	ModalWidth = 60

	// ModalWidthWide is used by the image viewer and settings
	ModalWidthWide = 80

	// ModalInputCharLimit is the character limit for modal text inputs
	ModalInputCharLimit = 256

	// ModalInputWidth is the width of modal text inputs
	ModalInputWidth = 50

	// HelpModalMaxVisible is the number of help rows shown before scrolling
	HelpModalMaxVisible = 18
)
