package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/generation"
	"github.com/zhubert/imagine/internal/keys"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/session"
	"github.com/zhubert/imagine/internal/ui"
	"github.com/zhubert/imagine/internal/ui/modals"
)

// Shortcut represents a keyboard shortcut with its metadata and handler.
// This is the single source of truth for all shortcuts in the application.
type Shortcut struct {
	Key             string                              // The key binding (e.g., "d", "ctrl+o")
	DisplayKey      string                              // Display name in help (e.g., "ctrl-o"); defaults to Key
	Description     string                              // Human-readable description
	Category        string                              // Section for help modal grouping
	RequiresIdle    bool                                // No generation in flight
	RequiresGallery bool                                // Gallery must be focused
	NotWhileTyping  bool                                // Printable keys belong to a focused text field
	Handler         func(m *Model) (tea.Model, tea.Cmd) // Action to perform
	Condition       func(m *Model) bool                 // Optional extra condition
}

// Categories for organizing shortcuts in the help modal
const (
	CategoryNavigation = "Navigation"
	CategoryGenerate   = "Generate"
	CategoryReferences = "Reference Images"
	CategoryResults    = "Results (when focused)"
	CategorySettings   = "Settings"
	CategoryGeneral    = "General"
)

// categoryOrder defines the display order of categories in the help modal
var categoryOrder = []string{
	CategoryNavigation,
	CategoryGenerate,
	CategoryReferences,
	CategoryResults,
	CategorySettings,
	CategoryGeneral,
}

// ShortcutRegistry is the central registry of all keyboard shortcuts.
// Add new shortcuts here and they will automatically appear in the help modal
// and be executable from both direct key presses and the help modal.
var ShortcutRegistry = []Shortcut{
	// Navigation
	{
		Key:         keys.Tab,
		DisplayKey:  "Tab",
		Description: "Next field / switch panel",
		Category:    CategoryNavigation,
		Handler:     shortcutNextField,
	},
	{
		Key:         keys.ShiftTab,
		DisplayKey:  "shift-Tab",
		Description: "Switch between controls and results",
		Category:    CategoryNavigation,
		Handler:     shortcutToggleFocus,
	},
	{
		Key:          keys.PgUp,
		DisplayKey:   "PgUp",
		Description:  "Previous model",
		Category:     CategoryNavigation,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.cycleModel(-1) },
	},
	{
		Key:          keys.PgDown,
		DisplayKey:   "PgDn",
		Description:  "Next model",
		Category:     CategoryNavigation,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.cycleModel(1) },
	},
	{
		Key:            "[",
		Description:    "Previous model",
		Category:       CategoryNavigation,
		RequiresIdle:   true,
		NotWhileTyping: true,
		Handler:        func(m *Model) (tea.Model, tea.Cmd) { return m.cycleModel(-1) },
	},
	{
		Key:            "]",
		Description:    "Next model",
		Category:       CategoryNavigation,
		RequiresIdle:   true,
		NotWhileTyping: true,
		Handler:        func(m *Model) (tea.Model, tea.Cmd) { return m.cycleModel(1) },
	},

	// Generate
	{
		Key:          keys.CtrlR,
		DisplayKey:   "ctrl-r",
		Description:  "Retry the failed generation",
		Category:     CategoryGenerate,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.retryGeneration() },
		Condition:    func(m *Model) bool { return m.flash.HasRetry() },
	},
	{
		Key:          keys.CtrlE,
		DisplayKey:   "ctrl-e",
		Description:  "Improve the prompt",
		Category:     CategoryGenerate,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.improvePrompt() },
	},
	{
		Key:          keys.CtrlG,
		DisplayKey:   "ctrl-g",
		Description:  "Magic prompt",
		Category:     CategoryGenerate,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.magicPrompt() },
	},
	{
		Key:         keys.CtrlY,
		DisplayKey:  "ctrl-y",
		Description: "Copy the prompt",
		Category:    CategoryGenerate,
		Handler:     shortcutCopyPrompt,
	},
	{
		Key:            "+",
		Description:    "More images",
		Category:       CategoryGenerate,
		RequiresIdle:   true,
		NotWhileTyping: true,
		Handler:        func(m *Model) (tea.Model, tea.Cmd) { return m.changeImageCount(1) },
	},
	{
		Key:            "-",
		Description:    "Fewer images",
		Category:       CategoryGenerate,
		RequiresIdle:   true,
		NotWhileTyping: true,
		Handler:        func(m *Model) (tea.Model, tea.Cmd) { return m.changeImageCount(-1) },
	},
	{
		Key:            "a",
		Description:    "Next aspect ratio",
		Category:       CategoryGenerate,
		RequiresIdle:   true,
		NotWhileTyping: true,
		Handler:        shortcutCycleAspect,
	},
	{
		Key:            "s",
		Description:    "Toggle saving results",
		Category:       CategoryGenerate,
		RequiresIdle:   true,
		NotWhileTyping: true,
		Handler:        shortcutToggleSave,
	},
	{
		Key:         keys.AltA,
		DisplayKey:  "alt-a",
		Description: "Show/hide advanced options",
		Category:    CategoryGenerate,
		Handler:     shortcutToggleAdvanced,
	},

	// Reference images
	{
		Key:          keys.CtrlO,
		DisplayKey:   "ctrl-o",
		Description:  "Add reference images from files",
		Category:     CategoryReferences,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.addReferences(m.picker) },
	},
	{
		Key:          keys.CtrlV,
		DisplayKey:   "ctrl-v",
		Description:  "Paste a reference image",
		Category:     CategoryReferences,
		RequiresIdle: true,
		Handler:      func(m *Model) (tea.Model, tea.Cmd) { return m.addReferences(m.clipboard) },
		// Otherwise ctrl+v pastes text into the prompt
		Condition: func(m *Model) bool { return m.refs.SectionVisible() },
	},

	// Results
	{
		Key:             "d",
		Description:     "Download the selected image",
		Category:        CategoryResults,
		RequiresGallery: true,
		Handler:         func(m *Model) (tea.Model, tea.Cmd) { return m.downloadSelected() },
	},
	{
		Key:             "u",
		Description:     "Use the selected image as a reference",
		Category:        CategoryResults,
		RequiresGallery: true,
		RequiresIdle:    true,
		Handler:         shortcutUseIn,
		Condition:       func(m *Model) bool { return m.gallery.SelectedValid() },
	},

	// Settings
	{
		Key:         keys.CtrlS,
		DisplayKey:  "ctrl-s",
		Description: "Settings",
		Category:    CategorySettings,
		Handler:     shortcutSettings,
	},
	{
		Key:         keys.CtrlT,
		DisplayKey:  "ctrl-t",
		Description: "Toggle light/dark theme",
		Category:    CategorySettings,
		Handler:     shortcutToggleTheme,
	},

	// General
	// Note: "?" (help) is handled specially in ExecuteShortcut to avoid init cycle
	{
		Key:          keys.CtrlL,
		DisplayKey:   "ctrl-l",
		Description:  "Clear results and references",
		Category:     CategoryGeneral,
		RequiresIdle: true,
		Handler:      shortcutClear,
	},
	{
		Key:            "q",
		Description:    "Quit application",
		Category:       CategoryGeneral,
		NotWhileTyping: true,
		Handler:        shortcutQuit,
	},
}

// helpShortcut is defined separately to avoid initialization cycle.
// It references ShortcutRegistry, so it can't be in the registry itself.
var helpShortcut = Shortcut{
	Key:            "?",
	Description:    "Show this help",
	Category:       CategoryGeneral,
	NotWhileTyping: true,
}

// DisplayOnlyShortcuts are shown in help but not executable from the help modal.
var DisplayOnlyShortcuts = []Shortcut{
	{DisplayKey: "Enter", Description: "Generate (controls) / open image (results)", Category: CategoryNavigation},
	{DisplayKey: "shift-Enter", Description: "New line in the prompt", Category: CategoryNavigation},
	{DisplayKey: "Esc", Description: "Back to the controls", Category: CategoryNavigation},
	{DisplayKey: "↑/↓", Description: "Select a reference image", Category: CategoryReferences},
	{DisplayKey: "Del/x", Description: "Remove the selected reference image", Category: CategoryReferences},
	{DisplayKey: "←/→/↑/↓ or h/j/k/l", Description: "Select an image", Category: CategoryResults},
}

// typing reports whether printable keys go to a text field.
func (m *Model) typing() bool {
	if m.focus != FocusSidebar || m.sidebar.Locked() {
		return false
	}
	f := m.sidebar.Field()
	return f == ui.FieldPrompt || f == ui.FieldSeed
}

// isShortcutApplicable checks if a shortcut is applicable given the current model state.
// This is used to filter which shortcuts appear in the help modal.
func (m *Model) isShortcutApplicable(s Shortcut) bool {
	if s.RequiresIdle && !m.IsIdle() {
		return false
	}
	if s.RequiresGallery && m.focus != FocusGallery {
		return false
	}
	if s.Condition != nil && !s.Condition(m) {
		return false
	}
	return true
}

// ExecuteShortcut finds and executes a shortcut by key.
// It checks all guards before executing.
// Returns (model, cmd, true) if the shortcut was found and executed.
// Returns (model, nil, false) if the shortcut was not found or guards failed.
func (m *Model) ExecuteShortcut(key string) (tea.Model, tea.Cmd, bool) {
	log := logger.WithComponent("shortcut")

	// Handle help shortcut specially (defined outside registry to avoid init cycle)
	if key == helpShortcut.Key {
		if m.typing() {
			return m, nil, false
		}
		result, cmd := shortcutHelp(m)
		return result, cmd, true
	}

	for _, s := range ShortcutRegistry {
		if s.Key != key {
			continue
		}
		if s.NotWhileTyping && m.typing() {
			// Let the key reach the text field
			return m, nil, false
		}
		if !m.isShortcutApplicable(s) {
			log.Debug("guard failed", "key", key, "focus", m.focus, "state", m.state)
			return m, nil, false
		}
		log.Debug("executing", "key", key)
		result, cmd := s.Handler(m)
		return result, cmd, true
	}
	return m, nil, false
}

// getApplicableHelpSections generates help modal sections from shortcuts that are
// applicable in the current application state.
func (m *Model) getApplicableHelpSections(registry []Shortcut, displayOnly []Shortcut) []modals.HelpSection {
	categories := make(map[string][]modals.HelpShortcut)

	add := func(s Shortcut) {
		displayKey := s.DisplayKey
		if displayKey == "" {
			displayKey = s.Key
		}
		categories[s.Category] = append(categories[s.Category], modals.HelpShortcut{
			Key:  displayKey,
			Desc: s.Description,
		})
	}

	for _, s := range registry {
		if m.isShortcutApplicable(s) {
			add(s)
		}
	}
	add(helpShortcut)

	for _, s := range displayOnly {
		if s.Category == CategoryReferences && !m.refs.SectionVisible() {
			continue
		}
		add(s)
	}

	var sections []modals.HelpSection
	for _, cat := range categoryOrder {
		if shortcuts, ok := categories[cat]; ok && len(shortcuts) > 0 {
			sections = append(sections, modals.HelpSection{
				Title:     cat,
				Shortcuts: shortcuts,
			})
		}
	}
	return sections
}

// normalizeHelpDisplayKey converts help modal display keys to actual key values.
// Returns empty string for display-only shortcuts that shouldn't be executed.
func normalizeHelpDisplayKey(displayKey string) string {
	for _, s := range DisplayOnlyShortcuts {
		if s.DisplayKey == displayKey {
			return ""
		}
	}
	if displayKey == helpShortcut.Key {
		return displayKey
	}
	for _, s := range ShortcutRegistry {
		if s.DisplayKey == displayKey || s.Key == displayKey {
			return s.Key
		}
	}
	return ""
}

// handleHelpShortcutTrigger runs the shortcut chosen in the help modal.
func (m *Model) handleHelpShortcutTrigger(key string) (tea.Model, tea.Cmd) {
	normalizedKey := normalizeHelpDisplayKey(key)
	if normalizedKey == "" {
		return m, nil
	}
	result, cmd, _ := m.ExecuteShortcut(normalizedKey)
	return result, cmd
}

// =============================================================================
// Shortcut Handlers
// =============================================================================

func shortcutNextField(m *Model) (tea.Model, tea.Cmd) {
	if m.focus == FocusSidebar && m.sidebar.NextField() {
		return m, nil
	}
	m.toggleFocus()
	return m, nil
}

func shortcutToggleFocus(m *Model) (tea.Model, tea.Cmd) {
	m.toggleFocus()
	return m, nil
}

func shortcutCopyPrompt(m *Model) (tea.Model, tea.Cmd) {
	if m.sidebar.Prompt() == "" {
		return m, m.ShowFlashWarning("The prompt is empty.")
	}
	return m, copyPromptCmd(m.sidebar.Prompt())
}

func shortcutCycleAspect(m *Model) (tea.Model, tea.Cmd) {
	next := (m.store.Snapshot().AspectRatioIndex + 1) % len(session.AspectRatios)
	return m, m.sessionSettingsCmd(nil, &next)
}

func shortcutToggleSave(m *Model) (tea.Model, tea.Cmd) {
	save := !m.store.Snapshot().SavePreference
	return m, m.sessionSettingsCmd(&save, nil)
}

func shortcutToggleAdvanced(m *Model) (tea.Model, tea.Cmd) {
	m.sidebar.ToggleAdvanced()
	return m, nil
}

func shortcutUseIn(m *Model) (tea.Model, tea.Cmd) {
	i, _, ok := m.gallery.Selected()
	if !ok {
		return m, nil
	}
	m.modal.Show(modals.NewUseInState(i, m.store.Catalog().ReferenceTargets()))
	return m, nil
}

func shortcutSettings(m *Model) (tea.Model, tea.Cmd) {
	st := m.store.Snapshot()
	values := modals.SettingsValues{
		Theme:            string(ui.CurrentThemeName()),
		ImageCount:       m.sidebar.Options().ImageCount,
		AspectRatioIndex: st.AspectRatioIndex,
		Save:             st.SavePreference,
		Notifications:    m.config.GetNotificationsEnabled(),
		ServerURL:        m.config.GetServerURL(),
		DownloadDir:      m.config.GetDownloadDir(),
	}
	var themes []string
	for _, t := range ui.ThemeNames() {
		themes = append(themes, string(t))
	}
	m.modal.Show(modals.NewSettingsState(values, themes, session.AspectRatios, generation.MaxImages))
	return m, nil
}

func shortcutToggleTheme(m *Model) (tea.Model, tea.Cmd) {
	name := m.config.ToggleTheme()
	m.applyTheme(name)
	if cmd := m.saveConfigOrFlash(); cmd != nil {
		return m, cmd
	}
	return m, m.ShowFlashInfo(fmt.Sprintf("Theme: %s", name))
}

func shortcutClear(m *Model) (tea.Model, tea.Cmd) {
	st := m.store.Snapshot()
	if len(st.LastResults) == 0 && len(st.ReferenceImages) == 0 && m.gallery.Len() == 0 {
		return m, m.ShowFlashInfo("Nothing to clear.")
	}
	m.modal.Show(modals.NewConfirmClearState(len(st.LastResults), len(st.ReferenceImages)))
	return m, nil
}

func shortcutHelp(m *Model) (tea.Model, tea.Cmd) {
	m.modal.Show(modals.NewHelpState(m.getApplicableHelpSections(ShortcutRegistry, DisplayOnlyShortcuts)))
	return m, nil
}

func shortcutQuit(m *Model) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

// =============================================================================
// Helpers
// =============================================================================

// toggleFocus switches between the controls and the results.
func (m *Model) toggleFocus() {
	if m.focus == FocusSidebar {
		m.focus = FocusGallery
	} else {
		m.focus = FocusSidebar
		m.sidebar.FocusField(ui.FieldPrompt)
	}
	m.sidebar.SetFocused(m.focus == FocusSidebar)
	m.gallery.SetFocused(m.focus == FocusGallery)
}

// cycleModel switches delta tabs away from the active model.
func (m *Model) cycleModel(delta int) (tea.Model, tea.Cmd) {
	return m.switchModel(m.store.Catalog().Cycle(m.store.ActiveModel(), delta))
}

// changeImageCount adjusts the number of images for the next request.
func (m *Model) changeImageCount(delta int) (tea.Model, tea.Cmd) {
	opts := m.sidebar.Options()
	opts.ImageCount = min(max(opts.ImageCount+delta, generation.MinImages), generation.MaxImages)
	m.sidebar.SetOptions(opts)
	return m, nil
}

// applyTheme switches the palette and restyles the stateful widgets.
func (m *Model) applyTheme(name string) {
	ui.SetThemeByName(name)
	m.sidebar.RefreshStyles()
}
