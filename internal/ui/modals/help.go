package modals

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// helpKeyWidth is the column reserved for the key in each shortcut row.
const helpKeyWidth = 14

// shortcutItem is one selectable row of the help list.
type shortcutItem struct {
	shortcut HelpShortcut
	section  string
}

func (i shortcutItem) FilterValue() string {
	return i.section + " " + i.shortcut.Key + " " + i.shortcut.Desc
}

// sectionItem is a non-selectable heading.
type sectionItem struct {
	title string
}

func (i sectionItem) FilterValue() string { return "" }

type helpDelegate struct{}

func (helpDelegate) Height() int                         { return 1 }
func (helpDelegate) Spacing() int                        { return 0 }
func (helpDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (helpDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch i := item.(type) {
	case sectionItem:
		fmt.Fprint(w, lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary).Render(i.title))

	case shortcutItem:
		keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Width(helpKeyWidth)
		descStyle := lipgloss.NewStyle().Foreground(ColorText)
		prefix := "  "
		if index == m.Index() {
			keyStyle = keyStyle.Foreground(ColorTextInverse).Background(ColorPrimary)
			descStyle = descStyle.Foreground(ColorTextInverse).Background(ColorPrimary)
			prefix = "> "
		}
		fmt.Fprint(w, prefix+keyStyle.Render(i.shortcut.Key)+descStyle.Render(i.shortcut.Desc))
	}
}

// HelpState lists the keyboard shortcuts. Enter on a row triggers it.
type HelpState struct {
	list list.Model
}

func (*HelpState) modalState() {}

func (s *HelpState) Title() string { return "Keyboard Shortcuts" }

func (s *HelpState) Help() string {
	if s.list.SettingFilter() {
		return "Type to filter  Enter: apply  Esc: cancel"
	}
	return "/: filter  up/down: navigate  Enter: run  Esc: close"
}

func (s *HelpState) Render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render(s.Title()),
		s.list.View(),
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *HelpState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	before := s.list.Index()
	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	s.skipSection(s.list.Index() - before)
	return s, cmd
}

// skipSection moves the cursor off a heading in the direction of travel.
func (s *HelpState) skipSection(dir int) {
	if _, ok := s.list.SelectedItem().(sectionItem); !ok {
		return
	}
	step := 1
	if dir < 0 {
		step = -1
	}
	items := s.list.VisibleItems()
	for i := s.list.Index() + step; i >= 0 && i < len(items); i += step {
		if _, ok := items[i].(shortcutItem); ok {
			s.list.Select(i)
			return
		}
	}
}

// SetSize lets the list use the height the modal frame allows.
func (s *HelpState) SetSize(width, height int) {
	// title, help and their margins
	const chrome = 4
	s.list.SetSize(width, max(height-chrome, 1))
}

// GetSelectedShortcut returns the selected shortcut, or nil when a heading
// is selected or the list is empty.
func (s *HelpState) GetSelectedShortcut() *HelpShortcut {
	if si, ok := s.list.SelectedItem().(shortcutItem); ok {
		return &si.shortcut
	}
	return nil
}

// IsFiltering reports whether the filter input has focus.
func (s *HelpState) IsFiltering() bool {
	return s.list.SettingFilter()
}

// Trigger returns a command that replays the selected shortcut.
func (s *HelpState) Trigger() tea.Cmd {
	sc := s.GetSelectedShortcut()
	if sc == nil {
		return nil
	}
	key := sc.Key
	return func() tea.Msg { return HelpShortcutTriggeredMsg{Key: key} }
}

// NewHelpState builds the help list from sections.
func NewHelpState(sections []HelpSection) *HelpState {
	var items []list.Item
	for _, section := range sections {
		items = append(items, sectionItem{title: section.Title})
		for _, sc := range section.Shortcuts {
			items = append(items, shortcutItem{shortcut: sc, section: section.Title})
		}
	}

	l := list.New(items, helpDelegate{}, ModalWidth, HelpModalMaxVisible)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.SetFilteringEnabled(true)

	for i, item := range items {
		if _, ok := item.(shortcutItem); ok {
			l.Select(i)
			break
		}
	}
	return &HelpState{list: l}
}
