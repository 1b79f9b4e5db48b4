package modals

import (
	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
	"github.com/zhubert/imagine/internal/keys"
)

// newForm builds a stacked, themed form from groups and runs Init so the
// first Render already shows the fields.
func newForm(width int, groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).
		WithTheme(formTheme()).
		WithShowHelp(false).
		WithWidth(width).
		WithLayout(huh.LayoutStack)
	form.Init()
	return form
}

// updateForm forwards msg to the form. Enter and Esc belong to the app's
// modal handlers, which save or discard the whole form.
func updateForm(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Enter, keys.Escape:
			return form, nil
		}
	}

	m, cmd := form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		form = f
	}
	return form, cmd
}

// formTheme styles the inline selects, on/off confirms and text inputs of
// the settings form with the current palette. Colors are read at call time
// so a theme toggle shows up the next time the form opens.
func formTheme() huh.Theme {
	return huh.ThemeFunc(func(isDark bool) *huh.Styles {
		t := huh.ThemeBase(isDark)

		t.Focused.Base = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(ColorPrimary)
		t.Focused.Card = t.Focused.Base
		t.Focused.Title = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
		t.Focused.Description = lipgloss.NewStyle().Foreground(ColorTextMuted)
		t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(ColorError).SetString(" !")
		t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(ColorError)

		// Inline selects (image count, aspect ratio, theme)
		t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(ColorPrimary).SetString("▸ ")
		t.Focused.NextIndicator = lipgloss.NewStyle().Foreground(ColorPrimary).MarginLeft(1).SetString("›")
		t.Focused.PrevIndicator = lipgloss.NewStyle().Foreground(ColorPrimary).MarginRight(1).SetString("‹")
		t.Focused.Option = lipgloss.NewStyle().Foreground(ColorText)
		t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)

		// On/Off toggles
		t.Focused.FocusedButton = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			Foreground(ColorTextInverse).
			Background(ColorPrimary)
		t.Focused.BlurredButton = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			Foreground(ColorTextMuted)

		// Server URL and download folder
		t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(ColorPrimary)
		t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(ColorTextMuted)
		t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(ColorPrimary)
		t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(ColorText)

		t.Blurred = t.Focused
		t.Blurred.Base = lipgloss.NewStyle().PaddingLeft(2)
		t.Blurred.Card = t.Blurred.Base
		t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorTextMuted)
		t.Blurred.NextIndicator = lipgloss.NewStyle()
		t.Blurred.PrevIndicator = lipgloss.NewStyle()

		// "Generation" and "Client" headings
		t.Group.Title = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true).MarginBottom(1)
		t.Group.Description = lipgloss.NewStyle().Foreground(ColorTextMuted)

		t.FieldSeparator = lipgloss.NewStyle().SetString("\n")
		return t
	})
}
