package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/imagine/internal/ui"
)

// View renders the app. This is the core Bubble Tea view function.
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.ReportFocus = true
	v.SetContent(m.RenderToString())
	return v
}

// RenderToString renders the current view as a string.
// This is useful for testing.
func (m *Model) RenderToString() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	m.updateFooterBindings()
	m.gallery.SetStatus(m.activity.View())

	header := m.header.View()
	footer := m.footer.View()

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.sidebar.View(),
		m.gallery.View(),
	)

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		panels,
		footer,
	)

	// Overlay modal if visible
	if m.modal.IsVisible() {
		return m.modal.View(m.width, m.height)
	}

	return view
}

// updateFooterBindings shows the hints for the focused panel.
func (m *Model) updateFooterBindings() {
	var bindings []ui.KeyBinding
	switch {
	case !m.IsIdle():
		bindings = []ui.KeyBinding{
			{Key: "ctrl-c", Desc: "quit"},
		}
	case m.focus == FocusGallery:
		bindings = []ui.KeyBinding{
			{Key: "←/→", Desc: "select"},
			{Key: "enter", Desc: "view"},
			{Key: "d", Desc: "download"},
		}
		if m.gallery.SelectedValid() {
			bindings = append(bindings, ui.KeyBinding{Key: "u", Desc: "use in"})
		}
		bindings = append(bindings, ui.KeyBinding{Key: "esc", Desc: "back"})
	default:
		bindings = []ui.KeyBinding{
			{Key: "enter", Desc: "generate"},
			{Key: "tab", Desc: "next"},
			{Key: "pgup/pgdn", Desc: "model"},
		}
		if m.refs.SectionVisible() {
			bindings = append(bindings, ui.KeyBinding{Key: "ctrl-o", Desc: "add reference"})
		}
		bindings = append(bindings,
			ui.KeyBinding{Key: "ctrl-s", Desc: "settings"},
			ui.KeyBinding{Key: "?", Desc: "help"},
		)
	}
	if m.flash.HasRetry() && m.IsIdle() {
		bindings = append([]ui.KeyBinding{{Key: "ctrl-r", Desc: "retry"}}, bindings...)
	}
	m.footer.SetBindings(bindings)
}

// updateSizes updates component sizes based on terminal dimensions
func (m *Model) updateSizes() {
	ctx := ui.GetViewContext()
	ctx.UpdateTerminalSize(m.width, m.height)

	m.header.SetWidth(ctx.TerminalWidth)
	m.footer.SetWidth(ctx.TerminalWidth)
	m.sidebar.SetSize(ctx.SidebarWidth, ctx.ContentHeight)
	m.gallery.SetSize(ctx.GalleryWidth, ctx.ContentHeight)
}
