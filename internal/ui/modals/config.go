package modals

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"
)

// =============================================================================
// WelcomeState - State for the first-time user welcome modal
// =============================================================================

type WelcomeState struct {
	ServerURL string
}

func (*WelcomeState) modalState() {}

func (s *WelcomeState) Title() string { return "Welcome to imagine" }

func (s *WelcomeState) Help() string {
	return "Press Enter or Esc to continue"
}

func (s *WelcomeState) Render() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary).
		MarginBottom(1).
		Render(s.Title())

	intro := lipgloss.NewStyle().
		Foreground(ColorText).
		Width(50).
		Render("Write a prompt, pick a model tab and press Enter. Results appear in the gallery on the right.")

	server := lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		MarginTop(1).
		Render("Backend: " + s.ServerURL)

	gettingStarted := lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		MarginTop(1).
		Render("Getting started:")

	shortcuts := lipgloss.NewStyle().
		Foreground(ColorText).
		Render("  [ ]     Switch model\n  ctrl+o  Add a reference image\n  tab     Move between prompt and gallery\n  ?       All shortcuts")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		intro,
		server,
		gettingStarted,
		shortcuts,
		ModalHelpStyle.Render(s.Help()),
	)
}

func (s *WelcomeState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewWelcomeState creates a new WelcomeState
func NewWelcomeState(serverURL string) *WelcomeState {
	return &WelcomeState{ServerURL: serverURL}
}

// =============================================================================
// SettingsState - State for the Settings modal
// =============================================================================

// SettingsValues are the editable preferences. Theme, notifications, server
// URL and download directory are local; the rest belong to the session.
type SettingsValues struct {
	Theme            string
	ImageCount       int
	AspectRatioIndex int
	Save             bool
	Notifications    bool
	ServerURL        string
	DownloadDir      string
}

type SettingsState struct {
	values   SettingsValues
	original SettingsValues

	form *huh.Form

	availableWidth int
}

func (*SettingsState) modalState() {}

func (s *SettingsState) PreferredWidth() int { return ModalWidthWide }

// SetSize updates the available width for rendering content.
func (s *SettingsState) SetSize(width, height int) {
	s.availableWidth = width
	s.form.WithWidth(s.contentWidth())
}

func (s *SettingsState) contentWidth() int {
	if s.availableWidth > 0 {
		return s.availableWidth - 10
	}
	return ModalWidthWide - 10
}

func (s *SettingsState) Title() string { return "Settings" }

func (s *SettingsState) Help() string {
	return "Tab: next field  Enter: save  Esc: cancel"
}

func (s *SettingsState) Render() string {
	title := ModalTitleStyle.Render(s.Title())
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, s.form.View(), help)
}

func (s *SettingsState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = updateForm(s.form, msg)
	return s, cmd
}

// Values returns the edited settings with text fields trimmed.
func (s *SettingsState) Values() SettingsValues {
	v := s.values
	v.ServerURL = strings.TrimRight(strings.TrimSpace(v.ServerURL), "/")
	v.DownloadDir = strings.TrimSpace(v.DownloadDir)
	return v
}

// Original returns the values the modal opened with.
func (s *SettingsState) Original() SettingsValues {
	return s.original
}

// Validate reports the first invalid field.
func (s *SettingsState) Validate() error {
	v := s.Values()
	if err := validateServerURL(v.ServerURL); err != nil {
		return err
	}
	if v.DownloadDir == "" {
		return fmt.Errorf("download folder is required")
	}
	return nil
}

// ThemeChanged returns true if the selected theme differs from the original.
func (s *SettingsState) ThemeChanged() bool {
	return s.values.Theme != s.original.Theme
}

// SessionChanged reports whether a value stored on the backend session changed.
func (s *SettingsState) SessionChanged() bool {
	return s.values.Save != s.original.Save || s.values.AspectRatioIndex != s.original.AspectRatioIndex
}

// ServerChanged reports whether the backend URL changed.
func (s *SettingsState) ServerChanged() bool {
	return s.Values().ServerURL != s.original.ServerURL
}

func validateServerURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("server URL must be an http(s) address")
	}
	return nil
}

// NewSettingsState creates the settings form. themes are the selectable
// theme names and aspectRatios the labels indexed by AspectRatioIndex.
func NewSettingsState(current SettingsValues, themes, aspectRatios []string, maxImages int) *SettingsState {
	s := &SettingsState{
		values:         current,
		original:       current,
		availableWidth: ModalWidthWide,
	}

	themeOptions := make([]huh.Option[string], len(themes))
	for i, name := range themes {
		themeOptions[i] = huh.NewOption(name, name)
	}

	countOptions := make([]huh.Option[int], maxImages)
	for i := range countOptions {
		countOptions[i] = huh.NewOption(strconv.Itoa(i+1), i+1)
	}

	ratioOptions := make([]huh.Option[int], len(aspectRatios))
	for i, r := range aspectRatios {
		ratioOptions[i] = huh.NewOption(r, i)
	}

	generation := huh.NewGroup(
		huh.NewSelect[int]().
			Title("Images per request").
			Options(countOptions...).
			Inline(true).
			Value(&s.values.ImageCount),
		huh.NewSelect[int]().
			Title("Aspect ratio").
			Options(ratioOptions...).
			Inline(true).
			Value(&s.values.AspectRatioIndex),
		huh.NewConfirm().
			Title("Save images").
			Description("Write every result to the download folder").
			Affirmative("On").
			Negative("Off").
			Value(&s.values.Save),
	).Title("Generation")

	client := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Theme").
			Options(themeOptions...).
			Inline(true).
			Value(&s.values.Theme),
		huh.NewConfirm().
			Title("Desktop notifications").
			Description("Notify when a queued generation finishes").
			Affirmative("On").
			Negative("Off").
			Value(&s.values.Notifications),
		huh.NewInput().
			Title("Server URL").
			Placeholder("http://127.0.0.1:5000").
			CharLimit(ModalInputCharLimit).
			Validate(validateServerURL).
			Value(&s.values.ServerURL),
		huh.NewInput().
			Title("Download folder").
			Placeholder("./output").
			CharLimit(ModalInputCharLimit).
			Value(&s.values.DownloadDir),
	).Title("Client")

	s.form = newForm(s.contentWidth(), generation, client)
	return s
}
