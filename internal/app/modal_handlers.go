package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/keys"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/ui"
	"github.com/zhubert/imagine/internal/ui/modals"
)

// handleModalKey routes modal key events to the appropriate handler based on modal state type.
func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ctrl+c quits from any modal
	if key == keys.CtrlC {
		return m, tea.Quit
	}

	switch s := m.modal.State.(type) {
	case *modals.WelcomeState:
		return m.handleWelcomeModal(key, msg)
	case *modals.SettingsState:
		return m.handleSettingsModal(key, msg, s)
	case *modals.ImageViewerState:
		return m.handleImageViewerModal(key, msg, s)
	case *modals.UseInState:
		return m.handleUseInModal(key, msg, s)
	case *modals.ConfirmClearState:
		return m.handleConfirmClearModal(key, msg, s)
	case *modals.HelpState:
		return m.handleHelpModal(key, msg, s)
	}

	if key == keys.Escape {
		m.modal.Hide()
		return m, nil
	}
	return m.forwardToModal(msg)
}

// forwardToModal passes other keys to the modal for its own navigation and input.
func (m *Model) forwardToModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

func (m *Model) handleWelcomeModal(key string, msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Enter, keys.Escape:
		m.modal.Hide()
		m.config.MarkWelcomeShown()
		return m, m.saveConfigOrFlash()
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleSettingsModal(key string, msg tea.KeyPressMsg, state *modals.SettingsState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		return m.applySettings(state)
	}
	return m.forwardToModal(msg)
}

// applySettings stores the edited settings. Local preferences go to the
// config file; save and aspect ratio are session fields patched on the
// backend. A new server URL reconnects and reloads the session.
func (m *Model) applySettings(state *modals.SettingsState) (tea.Model, tea.Cmd) {
	if err := state.Validate(); err != nil {
		m.modal.SetError(err.Error())
		return m, nil
	}
	v := state.Values()
	orig := state.Original()

	if state.ThemeChanged() {
		m.config.SetTheme(v.Theme)
		m.applyTheme(v.Theme)
	}
	m.config.SetNotificationsEnabled(v.Notifications)
	m.config.SetDownloadDir(v.DownloadDir)
	m.config.SetServerURL(v.ServerURL)
	if err := m.config.Save(); err != nil {
		logger.WithComponent("app").Error("failed to save settings", "error", err)
		m.modal.SetError("Failed to save: " + err.Error())
		return m, nil
	}
	m.modal.Hide()

	opts := m.sidebar.Options()
	opts.ImageCount = v.ImageCount
	m.sidebar.SetOptions(opts)

	if state.ServerChanged() {
		if !m.IsIdle() {
			// The running request belongs to the old server
			m.poller = nil
			m.unlock()
		}
		m.connect(newClient(v.ServerURL))
		m.syncFromStore()
		return m, tea.Batch(m.ShowFlashInfo("Connecting to "+v.ServerURL+"..."), m.loadSessionCmd())
	}

	if state.SessionChanged() {
		var save *bool
		var aspect *int
		if v.Save != orig.Save {
			save = &v.Save
		}
		if v.AspectRatioIndex != orig.AspectRatioIndex {
			aspect = &v.AspectRatioIndex
		}
		return m, m.sessionSettingsCmd(save, aspect)
	}

	m.updateInfo()
	return m, m.ShowFlashInfo("Settings saved.")
}

func (m *Model) handleImageViewerModal(key string, msg tea.KeyPressMsg, state *modals.ImageViewerState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape, keys.Enter:
		m.modal.Hide()
		return m, nil
	case keys.Left, "h":
		m.gallery.Move(-1, 0)
		return m.reopenViewer(state)
	case keys.Right, "l":
		m.gallery.Move(1, 0)
		return m.reopenViewer(state)
	case "d":
		return m.downloadSelected()
	case "u":
		if !state.CanUseIn {
			return m, nil
		}
		m.modal.Show(modals.NewUseInState(state.Details.Index, m.store.Catalog().ReferenceTargets()))
		return m, nil
	}
	return m.forwardToModal(msg)
}

// reopenViewer shows the new selection unless it did not move.
func (m *Model) reopenViewer(state *modals.ImageViewerState) (tea.Model, tea.Cmd) {
	i, _, ok := m.gallery.Selected()
	if !ok || i == state.Details.Index {
		return m, nil
	}
	if !m.gallery.SelectedValid() {
		m.modal.Hide()
		return m, m.ShowFlashError(fmt.Sprintf("Image #%d: %s.", i+1, ui.InvalidImageText))
	}
	return m.openViewer()
}

func (m *Model) handleUseInModal(key string, msg tea.KeyPressMsg, state *modals.UseInState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		target := state.GetTarget()
		m.modal.Hide()
		if target == "" || !m.IsIdle() {
			return m, nil
		}
		m.gallery.Select(state.ResultIndex)
		i, uri, ok := m.gallery.Selected()
		if !ok || i != state.ResultIndex {
			return m, nil
		}
		return m, m.useInCmd(uri, target)
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleConfirmClearModal(key string, msg tea.KeyPressMsg, state *modals.ConfirmClearState) (tea.Model, tea.Cmd) {
	switch key {
	case keys.Escape:
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		m.modal.Hide()
		if !state.Confirmed() || !m.IsIdle() {
			return m, nil
		}
		return m, m.clearSessionCmd()
	}
	return m.forwardToModal(msg)
}

func (m *Model) handleHelpModal(key string, msg tea.KeyPressMsg, state *modals.HelpState) (tea.Model, tea.Cmd) {
	// While filtering, esc and enter belong to the filter input
	if state.IsFiltering() {
		return m.forwardToModal(msg)
	}
	switch key {
	case keys.Escape, "q", "?":
		m.modal.Hide()
		return m, nil
	case keys.Enter:
		return m, state.Trigger()
	}
	return m.forwardToModal(msg)
}
