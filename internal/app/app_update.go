package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/keys"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/ui"
	"github.com/zhubert/imagine/internal/ui/modals"
)

// Update handles messages. This is the core Bubble Tea update function that routes
// all messages to appropriate handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.FocusMsg:
		m.windowFocused = true
		logger.WithComponent("app").Debug("window focused")
		return m, nil

	case tea.BlurMsg:
		m.windowFocused = false
		logger.WithComponent("app").Debug("window blurred")
		return m, nil

	case tea.KeyPressMsg:
		if result, cmd := m.handleKeyPress(msg); result != nil {
			return result, cmd
		}
		// Key not handled by handleKeyPress, let it fall through to focused panel

	case ui.FlashHideMsg:
		m.flash.Hide(msg)
		return m, nil

	case ui.ActivityTickMsg:
		return m, m.activity.Tick(msg)

	case StartupModalMsg:
		return m.handleStartupModals()

	case SessionLoadedMsg:
		return m.handleSessionLoaded(msg)

	case GenerateResultMsg:
		return m.handleGenerateResult(msg)

	case PollTickMsg:
		return m.handlePollTick(msg)

	case PollResultMsg:
		return m.handlePollResult(msg)

	case ReferencesAddedMsg:
		return m.handleReferencesAdded(msg)

	case ReferenceRemovedMsg:
		return m.handleReferenceRemoved(msg)

	case ModelSwitchedMsg:
		return m.handleModelSwitched(msg)

	case SessionSettingsSavedMsg:
		return m.handleSessionSettingsSaved(msg)

	case SessionClearedMsg:
		return m.handleSessionCleared(msg)

	case PromptAssistMsg:
		return m.handlePromptAssist(msg)

	case DownloadResultMsg:
		return m.handleDownloadResult(msg)

	case PromptCopiedMsg:
		return m.handlePromptCopied(msg)

	case modals.HelpShortcutTriggeredMsg:
		m.modal.Hide()
		return m.handleHelpShortcutTrigger(msg.Key)
	}

	// Update modal
	if m.modal.IsVisible() {
		modal, cmd := m.modal.Update(msg)
		m.modal = modal
		return m, cmd
	}

	// Text input (keys, pastes, cursor blinks) goes to the sidebar fields
	if m.focus == FocusSidebar {
		return m, m.sidebar.Update(msg)
	}
	return m, nil
}

// handleKeyPress handles all keyboard input.
// Returns (model, cmd) if the key was handled, or (nil, nil) if it should fall through
// to the focused panel for handling.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	logger.WithComponent("app").Debug("key press", "key", key, "focus", m.focus, "modal", m.modal.IsVisible())

	// Handle modal first if visible
	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}

	// Handle ctrl+c specially - always quits
	if key == keys.CtrlC {
		return m, tea.Quit
	}

	// Try executing from shortcut registry
	if result, cmd, handled := m.ExecuteShortcut(key); handled {
		return result, cmd
	}

	if m.focus == FocusGallery {
		return m.handleGalleryKey(key)
	}
	return m.handleSidebarKey(key)
}

// handleSidebarKey handles the keys of the controls panel that are not
// shortcuts. Unhandled keys go to the focused text field.
func (m *Model) handleSidebarKey(key string) (tea.Model, tea.Cmd) {
	field := m.sidebar.Field()

	switch key {
	case keys.Enter:
		if field == ui.FieldReferences {
			return m, nil
		}
		return m.submitPrompt()

	case keys.ShiftEnter, keys.AltEnter:
		if field == ui.FieldPrompt && !m.sidebar.Locked() {
			m.sidebar.InsertNewline()
		}
		return m, nil
	}

	if field == ui.FieldReferences {
		switch key {
		case keys.Up, "k", keys.Left, "h":
			m.sidebar.MoveReference(-1)
		case keys.Down, "j", keys.Right, "l":
			m.sidebar.MoveReference(1)
		case keys.Delete, keys.Backspace, "x":
			return m.removeSelectedReference()
		}
		return m, nil
	}

	return nil, nil
}

// handleGalleryKey handles the keys of the results panel.
func (m *Model) handleGalleryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Left, "h":
		m.gallery.Move(-1, 0)
	case keys.Right, "l":
		m.gallery.Move(1, 0)
	case keys.Up, "k":
		m.gallery.Move(0, -1)
	case keys.Down, "j":
		m.gallery.Move(0, 1)
	case keys.Enter:
		return m.openViewer()
	case keys.Escape:
		m.toggleFocus()
	}
	return m, nil
}

// openViewer shows the selected result full size.
func (m *Model) openViewer() (tea.Model, tea.Cmd) {
	i, _, ok := m.gallery.Selected()
	if !ok {
		return m, nil
	}
	if !m.gallery.SelectedValid() {
		return m, m.ShowFlashError(ui.InvalidImageText)
	}

	details := modals.ImageDetails{Index: i}
	if info := m.gallery.SelectedInfo(); info != nil {
		details.MIME = info.MIME
		details.Format = info.Format
		details.Width = info.Width
		details.Height = info.Height
		details.Bytes = info.Bytes
	}
	img := m.gallery.SelectedImage()
	render := func(cols, rows int) string {
		return ui.RenderImage(img, cols, rows)
	}
	canUseIn := m.IsIdle() && len(m.store.Catalog().ReferenceTargets()) > 0
	m.modal.Show(modals.NewImageViewerState(details, render, canUseIn))
	return m, nil
}
