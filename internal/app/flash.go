package app

import (
	tea "charm.land/bubbletea/v2"

	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/ui"
)

// ShowFlash displays a flash message in the footer and returns a command to start the auto-dismiss timer
func (m *Model) ShowFlash(text string, flashType ui.FlashType) tea.Cmd {
	return m.flash.Show(text, flashType)
}

// ShowFlashError displays an error flash message
func (m *Model) ShowFlashError(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashError)
}

// ShowFlashWarning displays a warning flash message
func (m *Model) ShowFlashWarning(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashWarning)
}

// ShowFlashInfo displays an info flash message
func (m *Model) ShowFlashInfo(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashInfo)
}

// ShowFlashSuccess displays a success flash message
func (m *Model) ShowFlashSuccess(text string) tea.Cmd {
	return m.ShowFlash(text, ui.FlashSuccess)
}

// flashErr shows the user-facing text of err. Raw transport errors never
// reach the screen; they become the generic connectivity message.
func (m *Model) flashErr(err error) tea.Cmd {
	return m.ShowFlashError(pErrors.UserMessage(err))
}

// flashGenerationErr shows a generation failure. Anything but a local
// validation failure offers ctrl+r to resubmit the last request.
func (m *Model) flashGenerationErr(err error) tea.Cmd {
	retry := !pErrors.Is(err, pErrors.KindInvalid) && !pErrors.Is(err, pErrors.KindCapacity)
	return m.flash.ShowError(pErrors.UserMessage(err), retry)
}

// saveConfigOrFlash persists the config and returns a flash on failure.
func (m *Model) saveConfigOrFlash() tea.Cmd {
	if err := m.config.Save(); err != nil {
		logger.WithComponent("app").Error("failed to save config", "error", err)
		return m.ShowFlashError("Failed to save settings")
	}
	return nil
}
