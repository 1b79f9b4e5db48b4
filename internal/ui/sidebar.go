package ui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/zhubert/imagine/internal/dataurl"
)

// Field is a focusable control in the sidebar.
type Field int

const (
	FieldPrompt Field = iota
	FieldSeed
	FieldReferences
)

// Options are the generation settings displayed under the prompt.
type Options struct {
	ImageCount  int
	AspectRatio string
	Save        bool
}

// Sidebar is the controls panel: prompt, options, the advanced section and
// the reference images of reference-capable models.
type Sidebar struct {
	prompt textarea.Model
	seed   textinput.Model

	width   int
	height  int
	focused bool
	field   Field

	options      Options
	advancedOpen bool
	locked       bool

	refs            []string
	refsVisible     bool
	uploaderVisible bool
	maxRefs         int
	refSelected     int
}

// NewSidebar creates the controls panel.
func NewSidebar() *Sidebar {
	ta := textarea.New()
	ta.Placeholder = "Describe the image you want..."
	ta.CharLimit = 0
	ta.SetHeight(PromptHeight)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	applyTextareaStyles(&ta)

	seed := textinput.New()
	seed.Placeholder = "-1 (random)"
	seed.CharLimit = 12
	seed.Prompt = ""

	return &Sidebar{
		prompt:  ta,
		seed:    seed,
		options: Options{ImageCount: 4, AspectRatio: "1:1"},
	}
}

// RefreshStyles reapplies theme colors after a theme change.
func (s *Sidebar) RefreshStyles() {
	applyTextareaStyles(&s.prompt)
}

// SetSize sets the panel dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	inner := GetViewContext().InnerWidth(width)
	s.prompt.SetWidth(max(inner-BorderSize-2, 10))
	s.seed.SetWidth(max(inner-8, 6))
}

// SetFocused sets the focus state and focuses the current field.
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
	s.syncFocus()
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// Field returns the focused control.
func (s *Sidebar) Field() Field {
	return s.field
}

// FocusField moves focus to f. The seed is only reachable with the advanced
// section open and references only while they are shown.
func (s *Sidebar) FocusField(f Field) {
	switch {
	case f == FieldSeed && !s.advancedOpen:
		f = FieldPrompt
	case f == FieldReferences && !s.refsVisible:
		f = FieldPrompt
	}
	s.field = f
	s.syncFocus()
}

// NextField cycles focus forward within the sidebar. It reports false when
// focus should leave the sidebar.
func (s *Sidebar) NextField() bool {
	order := s.fields()
	for i, f := range order {
		if f == s.field {
			if i == len(order)-1 {
				return false
			}
			s.FocusField(order[i+1])
			return true
		}
	}
	s.FocusField(FieldPrompt)
	return true
}

func (s *Sidebar) fields() []Field {
	out := []Field{FieldPrompt}
	if s.advancedOpen {
		out = append(out, FieldSeed)
	}
	if s.refsVisible && len(s.refs) > 0 {
		out = append(out, FieldReferences)
	}
	return out
}

func (s *Sidebar) syncFocus() {
	s.prompt.Blur()
	s.seed.Blur()
	if !s.focused || s.locked {
		return
	}
	switch s.field {
	case FieldPrompt:
		s.prompt.Focus()
	case FieldSeed:
		s.seed.Focus()
	}
}

// SetLocked disables editing while a generation is in flight.
func (s *Sidebar) SetLocked(locked bool) {
	s.locked = locked
	s.syncFocus()
}

// Locked reports whether the controls are disabled.
func (s *Sidebar) Locked() bool {
	return s.locked
}

// Prompt returns the prompt text.
func (s *Sidebar) Prompt() string {
	return s.prompt.Value()
}

// SetPrompt replaces the prompt text.
func (s *Sidebar) SetPrompt(text string) {
	s.prompt.SetValue(text)
}

// InsertNewline adds a line break at the cursor.
func (s *Sidebar) InsertNewline() {
	s.prompt.InsertString("\n")
}

// PromptLength counts user-perceived characters, so "é" or a flag emoji
// count as one.
func (s *Sidebar) PromptLength() int {
	return uniseg.GraphemeClusterCount(s.prompt.Value())
}

// Seed parses the seed field. Empty means random (-1).
func (s *Sidebar) Seed() (int, error) {
	v := strings.TrimSpace(s.seed.Value())
	if v == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("seed must be a whole number")
	}
	return n, nil
}

// SetSeed sets the seed field; -1 clears it.
func (s *Sidebar) SetSeed(seed int) {
	if seed < 0 {
		s.seed.SetValue("")
		return
	}
	s.seed.SetValue(strconv.Itoa(seed))
}

// Options returns the displayed generation options.
func (s *Sidebar) Options() Options {
	return s.options
}

// SetOptions updates the displayed generation options.
func (s *Sidebar) SetOptions(o Options) {
	s.options = o
}

// ToggleAdvanced opens or closes the advanced section.
func (s *Sidebar) ToggleAdvanced() bool {
	s.advancedOpen = !s.advancedOpen
	if !s.advancedOpen && s.field == FieldSeed {
		s.FocusField(FieldPrompt)
	}
	return s.advancedOpen
}

// AdvancedOpen reports whether the advanced section is expanded.
func (s *Sidebar) AdvancedOpen() bool {
	return s.advancedOpen
}

// SetReferences updates the reference list and the visibility of the
// section and of the uploader.
func (s *Sidebar) SetReferences(refs []string, visible, uploader bool, maxRefs int) {
	s.refs = refs
	s.refsVisible = visible
	s.uploaderVisible = uploader
	s.maxRefs = maxRefs
	if s.refSelected >= len(refs) {
		s.refSelected = max(len(refs)-1, 0)
	}
	if s.field == FieldReferences && (!visible || len(refs) == 0) {
		s.FocusField(FieldPrompt)
	}
}

// MoveReference moves the reference selection.
func (s *Sidebar) MoveReference(delta int) {
	if len(s.refs) == 0 {
		return
	}
	s.refSelected = min(max(s.refSelected+delta, 0), len(s.refs)-1)
}

// SelectedReference returns the selected reference index, or -1.
func (s *Sidebar) SelectedReference() int {
	if len(s.refs) == 0 {
		return -1
	}
	return s.refSelected
}

// Update forwards input to the focused text control.
func (s *Sidebar) Update(msg tea.Msg) tea.Cmd {
	if s.locked {
		return nil
	}
	var cmd tea.Cmd
	switch s.field {
	case FieldPrompt:
		s.prompt, cmd = s.prompt.Update(msg)
	case FieldSeed:
		s.seed, cmd = s.seed.Update(msg)
	}
	return cmd
}

// View renders the panel.
func (s *Sidebar) View() string {
	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}
	inner := max(GetViewContext().InnerWidth(s.width), 10)

	var sections []string
	sections = append(sections, PanelTitleStyle.Render("Prompt"))

	inputStyle := InputStyle
	if s.focused && s.field == FieldPrompt && !s.locked {
		inputStyle = InputFocusedStyle
	}
	sections = append(sections, inputStyle.Width(inner).Render(s.prompt.View()))
	sections = append(sections, LabelStyle.Render(fmt.Sprintf(" %d characters", s.PromptLength())))

	save := "off"
	if s.options.Save {
		save = "on"
	}
	sections = append(sections,
		s.row("Images", strconv.Itoa(s.options.ImageCount)),
		s.row("Aspect ratio", s.options.AspectRatio),
		s.row("Save images", save),
	)

	arrow := "▸"
	if s.advancedOpen {
		arrow = "▾"
	}
	sections = append(sections, LabelStyle.Render(" "+arrow+" Advanced"))
	if s.advancedOpen {
		seedLabel := LabelStyle.Render("   Seed ")
		seedView := s.seed.View()
		if s.focused && s.field == FieldSeed && !s.locked {
			seedView = lipgloss.NewStyle().Foreground(ColorPrimary).Render("›") + seedView
		}
		sections = append(sections, seedLabel+seedView)
	}

	if s.refsVisible {
		sections = append(sections, "", s.renderReferences(inner))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return style.Width(s.width).Height(s.height).Render(content)
}

func (s *Sidebar) row(label, value string) string {
	return LabelStyle.Render(" "+label+": ") + ValueStyle.Render(value)
}

func (s *Sidebar) renderReferences(width int) string {
	title := PanelTitleStyle.Render(fmt.Sprintf("References %d/%d", len(s.refs), s.maxRefs))
	lines := []string{title}
	for i, ref := range s.refs {
		label := fmt.Sprintf("%d. %s", i+1, describeReference(ref))
		label = ansi.Truncate(label, width-2, "…")
		style := ItemStyle
		if s.focused && s.field == FieldReferences && i == s.refSelected {
			style = ItemSelectedStyle
		}
		lines = append(lines, style.Render(label))
	}
	switch {
	case s.uploaderVisible:
		lines = append(lines, CaptionStyle.Render(" ctrl+o: add file  ctrl+v: paste image"))
	case len(s.refs) >= s.maxRefs:
		lines = append(lines, CaptionStyle.Render(" Reference limit reached"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// describeReference summarizes a reference as "PNG 640×480 (120 KB)".
func describeReference(uri string) string {
	info, err := dataurl.Inspect(uri)
	if err != nil {
		return fmt.Sprintf("image (%d KB)", dataurl.DecodedSize(uri)/1024)
	}
	return fmt.Sprintf("%s %d×%d (%d KB)", strings.ToUpper(info.Format), info.Width, info.Height, info.Bytes/1024)
}

// applyTextareaStyles gives the textarea a transparent background so it
// matches the terminal.
func applyTextareaStyles(ta *textarea.Model) {
	styles := ta.Styles()

	base := lipgloss.NewStyle()
	text := lipgloss.NewStyle().Foreground(ColorText)
	placeholder := lipgloss.NewStyle().Foreground(ColorTextMuted)

	styles.Focused.Base = base
	styles.Focused.Text = text
	styles.Focused.Placeholder = placeholder
	styles.Focused.CursorLine = text
	styles.Focused.Prompt = text

	styles.Blurred.Base = base
	styles.Blurred.Text = text
	styles.Blurred.Placeholder = placeholder
	styles.Blurred.CursorLine = text
	styles.Blurred.Prompt = text

	ta.SetStyles(styles)
}
