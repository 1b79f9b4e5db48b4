package ui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/imagine/internal/ui/modals"
)

// Modal hosts the active dialog. State is nil when no modal is visible.
type Modal struct {
	State modals.ModalState
	error string
}

// NewModal creates a new modal
func NewModal() *Modal {
	return &Modal{}
}

// Show displays a modal with the given state
func (m *Modal) Show(state modals.ModalState) {
	m.State = state
	m.error = ""
}

// Hide hides the modal
func (m *Modal) Hide() {
	m.State = nil
	m.error = ""
}

// IsVisible returns whether the modal is visible
func (m *Modal) IsVisible() bool {
	return m.State != nil
}

// SetError sets an error message
func (m *Modal) SetError(err string) {
	m.error = err
}

// GetError returns the current error message
func (m *Modal) GetError() string {
	return m.error
}

// Update handles messages by delegating to the current state
func (m *Modal) Update(msg tea.Msg) (*Modal, tea.Cmd) {
	if m.State == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.State, cmd = m.State.Update(msg)
	return m, cmd
}

// View renders the modal centered on the screen. Modals that implement
// ModalWithPreferredWidth get that width, clamped to the screen.
func (m *Modal) View(screenWidth, screenHeight int) string {
	if m.State == nil {
		return ""
	}

	width := ModalWidth
	if pw, ok := m.State.(modals.ModalWithPreferredWidth); ok {
		width = pw.PreferredWidth()
	}
	width = min(width, max(screenWidth-2, 20))

	// border and padding of ModalStyle
	const frameW, frameH = 6, 4
	if sized, ok := m.State.(modals.ModalWithSize); ok {
		sized.SetSize(width-frameW, max(screenHeight-frameH-2, 1))
	}

	content := m.State.Render()
	if m.error != "" {
		content += "\n" + StatusErrorStyle.Render(m.error)
	}

	modal := ModalStyle.Width(width).Render(content)

	return lipgloss.Place(
		screenWidth, screenHeight,
		lipgloss.Center, lipgloss.Center,
		modal,
	)
}

// RefreshModalStyles pushes the current theme into the modals package.
func RefreshModalStyles() {
	modals.SetStyles(
		ModalTitleStyle, ModalHelpStyle, ItemStyle, ItemSelectedStyle, StatusErrorStyle,
		ColorPrimary, ColorSecondary, ColorText, ColorTextMuted, ColorTextInverse, ColorWarning, ColorError,
		ModalInputWidth, ModalInputCharLimit, ModalWidth, ModalWidthWide, HelpModalMaxVisible,
	)
}
