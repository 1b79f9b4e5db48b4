package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer is the two-line bottom bar: flash messages (or the info line) above
// the key hints for the focused panel.
type Footer struct {
	width    int
	bindings []KeyBinding
	info     string
	flash    *Flash
}

// NewFooter creates a new footer that renders flash.
func NewFooter(flash *Flash) *Footer {
	return &Footer{flash: flash}
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBindings sets the key hints for the current context.
func (f *Footer) SetBindings(bindings []KeyBinding) {
	f.bindings = bindings
}

// SetInfo sets the persistent info line shown when no flash is visible,
// e.g. "Images saved to output". Empty hides it.
func (f *Footer) SetInfo(info string) {
	f.info = info
}

// Info returns the info line.
func (f *Footer) Info() string {
	return f.info
}

// View renders the footer
func (f *Footer) View() string {
	inner := max(f.width-2, 0)

	var top string
	switch {
	case f.flash != nil && f.flash.Visible():
		top = f.flash.View(inner)
	case f.info != "":
		top = CaptionStyle.Render(ansi.Truncate(f.info, inner, "…"))
	}

	parts := make([]string, 0, len(f.bindings))
	for _, b := range f.bindings {
		parts = append(parts, FooterKeyStyle.Render(b.Key)+FooterDescStyle.Render(": "+b.Desc))
	}
	sep := "  " + lipgloss.NewStyle().Foreground(ColorBorder).Render("|") + "  "
	hints := strings.Join(parts, sep)
	if inner > 0 && ansi.StringWidth(hints) > inner {
		hints = ansi.Truncate(hints, inner, "…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		FooterStyle.Width(f.width).Render(top),
		FooterStyle.Width(f.width).Render(hints),
	)
}
