package app

import (
	"testing"

	"github.com/zhubert/imagine/internal/keys"
	"github.com/zhubert/imagine/internal/ui/modals"
)

// =============================================================================
// ShortcutRegistry Tests
// =============================================================================

func TestShortcutRegistry_AllShortcutsHaveHandlers(t *testing.T) {
	for _, s := range ShortcutRegistry {
		if s.Handler == nil {
			t.Errorf("Shortcut %q has no handler", s.Key)
		}
		if s.Key == "" {
			t.Error("Shortcut has empty key")
		}
		if s.Description == "" {
			t.Errorf("Shortcut %q has no description", s.Key)
		}
		if s.Category == "" {
			t.Errorf("Shortcut %q has no category", s.Key)
		}
	}
}

func TestShortcutRegistry_NoDuplicateKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range ShortcutRegistry {
		if seen[s.Key] {
			t.Errorf("Duplicate shortcut key: %q", s.Key)
		}
		seen[s.Key] = true
	}
	// Also check the help shortcut
	if seen["?"] {
		t.Error("Help shortcut key '?' duplicated in registry")
	}
}

func TestShortcutRegistry_ValidCategories(t *testing.T) {
	validCategories := make(map[string]bool)
	for _, c := range categoryOrder {
		validCategories[c] = true
	}

	for _, s := range append(ShortcutRegistry, DisplayOnlyShortcuts...) {
		if !validCategories[s.Category] {
			t.Errorf("Shortcut %q has invalid category: %q", s.Key, s.Category)
		}
	}
}

func TestShortcutRegistry_PrintableKeysYieldToTextFields(t *testing.T) {
	for _, s := range ShortcutRegistry {
		if len(s.Key) == 1 && !s.NotWhileTyping && !s.RequiresGallery {
			t.Errorf("Shortcut %q would swallow typed text", s.Key)
		}
	}
}

// =============================================================================
// ExecuteShortcut Tests
// =============================================================================

func TestExecuteShortcut_ReturnsNotHandledForUnknownKey(t *testing.T) {
	m, _ := testModel(t)

	_, _, handled := m.ExecuteShortcut("ctrl+z")
	if handled {
		t.Error("Expected unknown key not to be handled")
	}
}

func TestExecuteShortcut_TabMovesToResults(t *testing.T) {
	m, _ := testModel(t)

	_, _, handled := m.ExecuteShortcut(keys.Tab)
	if !handled {
		t.Fatal("Expected 'tab' shortcut to be handled")
	}
	if m.focus != FocusGallery {
		t.Errorf("Expected gallery focus, got %v", m.focus)
	}
}

func TestExecuteShortcut_GalleryKeysNeedGalleryFocus(t *testing.T) {
	m, _ := testModel(t)
	generate(t, m, "a kite")

	if _, _, handled := m.ExecuteShortcut("u"); handled {
		t.Error("Expected 'u' not to run from the controls")
	}

	m.toggleFocus()
	if _, _, handled := m.ExecuteShortcut("u"); !handled {
		t.Error("Expected 'u' to run with results focused")
	}
}

func TestExecuteShortcut_IdleOnly(t *testing.T) {
	m, _ := testModel(t)
	m.setState(StateSubmitting)
	defer m.setState(StateIdle)

	if _, _, handled := m.ExecuteShortcut(keys.CtrlL); handled {
		t.Error("Expected clear to be refused while busy")
	}
	if _, _, handled := m.ExecuteShortcut(keys.CtrlS); !handled {
		t.Error("Expected settings to stay available while busy")
	}
}

func TestExecuteShortcut_PasteReferenceOnlyWhenShown(t *testing.T) {
	m, _ := testModel(t)

	// Text models have no reference strip, so ctrl+v pastes text
	if _, _, handled := m.ExecuteShortcut(keys.CtrlV); handled {
		t.Error("Expected ctrl+v to fall through on a text model")
	}

	srv := referenceServer(t)
	m = testModelWithServer(t, srv, testConfig(t))
	if _, _, handled := m.ExecuteShortcut(keys.CtrlV); !handled {
		t.Error("Expected ctrl+v to add a reference on a reference model")
	}
}

func TestExecuteShortcut_HelpNotWhileTyping(t *testing.T) {
	m, _ := testModel(t)

	if _, _, handled := m.ExecuteShortcut("?"); handled {
		t.Error("Expected '?' to be typed into the prompt")
	}
	m.toggleFocus()
	if _, _, handled := m.ExecuteShortcut("?"); !handled {
		t.Error("Expected '?' to open help outside text fields")
	}
}

// =============================================================================
// Help Tests
// =============================================================================

func TestHelpSections_FollowState(t *testing.T) {
	m, _ := testModel(t)

	titles := func() map[string]bool {
		out := make(map[string]bool)
		for _, s := range m.getApplicableHelpSections(ShortcutRegistry, DisplayOnlyShortcuts) {
			out[s.Title] = true
		}
		return out
	}

	got := titles()
	if got[CategoryReferences] {
		t.Error("Expected no reference section on a text model")
	}
	if !got[CategoryNavigation] || !got[CategoryGeneral] {
		t.Errorf("Expected navigation and general sections, got %v", got)
	}
}

func TestHelpSections_IncludeHelpShortcut(t *testing.T) {
	m, _ := testModel(t)

	var found bool
	for _, s := range m.getApplicableHelpSections(ShortcutRegistry, DisplayOnlyShortcuts) {
		for _, sc := range s.Shortcuts {
			if sc.Key == "?" {
				found = true
			}
		}
	}
	if !found {
		t.Error("Expected '?' in help")
	}
}

func TestNormalizeHelpDisplayKey(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{"ctrl-s", keys.CtrlS},
		{"Tab", keys.Tab},
		{"PgDn", keys.PgDown},
		{"?", "?"},
		{"q", "q"},
		{"Enter", ""},
		{"Del/x", ""},
		{"nope", ""},
	}
	for _, tt := range tests {
		if got := normalizeHelpDisplayKey(tt.display); got != tt.want {
			t.Errorf("normalizeHelpDisplayKey(%q) = %q, want %q", tt.display, got, tt.want)
		}
	}
}

func TestHelpTrigger_RunsShortcut(t *testing.T) {
	m, _ := testModel(t)

	send(t, m, modals.HelpShortcutTriggeredMsg{Key: "ctrl-s"})

	if _, ok := m.modal.State.(*modals.SettingsState); !ok {
		t.Errorf("Expected settings modal, got %T", m.modal.State)
	}
}
