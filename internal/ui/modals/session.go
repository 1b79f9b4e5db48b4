package modals

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/zhubert/imagine/internal/keys"
)

// =============================================================================
// UseInState - "Use in..." popover for sending a result to another model
// =============================================================================

// UseInState lists the models that accept a result as a reference image.
type UseInState struct {
	ResultIndex int
	Targets     []string
	Selected    int
}

func (*UseInState) modalState() {}

func (s *UseInState) Title() string { return "Use in..." }

func (s *UseInState) Help() string {
	return "up/down: select  Enter: use as reference  Esc: cancel"
}

func (s *UseInState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	subtitle := lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Render(fmt.Sprintf("Add image #%d as a reference for:", s.ResultIndex+1))

	var body string
	if len(s.Targets) == 0 {
		body = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			MarginTop(1).
			Render("No model accepts reference images.")
	} else {
		body = lipgloss.NewStyle().MarginTop(1).Render(RenderSelectableList(s.Targets, s.Selected))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, body, ModalHelpStyle.Render(s.Help()))
}

func (s *UseInState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Up, "k":
			if s.Selected > 0 {
				s.Selected--
			}
		case keys.Down, "j":
			if s.Selected < len(s.Targets)-1 {
				s.Selected++
			}
		}
	}
	return s, nil
}

// GetTarget returns the chosen model, or "" when there is none.
func (s *UseInState) GetTarget() string {
	if s.Selected >= 0 && s.Selected < len(s.Targets) {
		return s.Targets[s.Selected]
	}
	return ""
}

// NewUseInState creates the popover for result index with the given targets.
func NewUseInState(resultIndex int, targets []string) *UseInState {
	return &UseInState{ResultIndex: resultIndex, Targets: targets}
}

// =============================================================================
// ConfirmClearState - confirmation before clearing the session
// =============================================================================

// ConfirmClearState asks before results, references and settings are reset.
type ConfirmClearState struct {
	Results    int
	References int
	confirmed  bool
}

func (*ConfirmClearState) modalState() {}

func (s *ConfirmClearState) Title() string { return "Clear results?" }

func (s *ConfirmClearState) Help() string {
	return "left/right: choose  y: yes  Enter: confirm  Esc: cancel"
}

func (s *ConfirmClearState) Render() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWarning).
		MarginBottom(1).
		Render(s.Title())

	message := lipgloss.NewStyle().
		Foreground(ColorText).
		Width(50).
		Render(fmt.Sprintf("This removes %d result(s) and %d reference image(s) from the session and resets its settings.",
			s.Results, s.References))

	buttons := []string{"Cancel", "Clear"}
	selected := 0
	if s.confirmed {
		selected = 1
	}
	var row []string
	for i, b := range buttons {
		style := ItemStyle
		if i == selected {
			style = ItemSelectedStyle
		}
		row = append(row, style.Render(" "+b+" "))
	}
	choice := lipgloss.NewStyle().MarginTop(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, row[0], "  ", row[1]))

	return lipgloss.JoinVertical(lipgloss.Left, title, message, choice, ModalHelpStyle.Render(s.Help()))
}

func (s *ConfirmClearState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Left, "h", "n":
			s.confirmed = false
		case keys.Right, "l", "y":
			s.confirmed = true
		case keys.Tab:
			s.confirmed = !s.confirmed
		}
	}
	return s, nil
}

// Confirmed reports whether "Clear" is selected.
func (s *ConfirmClearState) Confirmed() bool {
	return s.confirmed
}

// NewConfirmClearState creates the confirmation with Cancel preselected.
func NewConfirmClearState(results, references int) *ConfirmClearState {
	return &ConfirmClearState{Results: results, References: references}
}
