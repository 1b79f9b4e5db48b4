package app

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/capture"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/generation"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/notification"
	"github.com/zhubert/imagine/internal/session"
	"github.com/zhubert/imagine/internal/ui"
	"github.com/zhubert/imagine/internal/ui/modals"
)

// handleStartupModals shows the welcome modal on first run.
func (m *Model) handleStartupModals() (tea.Model, tea.Cmd) {
	if !m.config.HasSeenWelcome() {
		m.modal.Show(modals.NewWelcomeState(m.config.GetServerURL()))
	}
	return m, nil
}

func (m *Model) handleSessionLoaded(msg SessionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.WithComponent("app").Warn("session load failed", "error", msg.Err)
		m.offline = true
		m.updateStatus()
		return m, m.flashErr(msg.Err)
	}
	m.loaded = true
	m.offline = false
	m.syncFromStore()
	return m, nil
}

// =============================================================================
// Generation
// =============================================================================

// submitPrompt builds a request from the form and starts it.
func (m *Model) submitPrompt() (tea.Model, tea.Cmd) {
	if !m.IsIdle() {
		return m, nil
	}
	req := m.gen.NewRequest(m.sidebar.Prompt())
	req.ImageCount = m.sidebar.Options().ImageCount
	seed, err := m.sidebar.Seed()
	if err != nil {
		return m, m.ShowFlashError("Seed must be a whole number.")
	}
	req.Seed = seed
	return m.startGeneration(req)
}

// retryGeneration resubmits the last request as it was sent.
func (m *Model) retryGeneration() (tea.Model, tea.Cmd) {
	req, ok := m.gen.LastRequest()
	if !ok || !m.IsIdle() {
		return m, nil
	}
	return m.beginGeneration(req, m.retryCmd())
}

func (m *Model) startGeneration(req generation.Request) (tea.Model, tea.Cmd) {
	return m.beginGeneration(req, m.generateCmd(req))
}

// beginGeneration locks the controls and runs send, which submits req.
// Requests that fail local validation are reported without any network call.
func (m *Model) beginGeneration(req generation.Request, send tea.Cmd) (tea.Model, tea.Cmd) {
	if !m.IsIdle() || m.gen.Busy() {
		return m, nil
	}
	if err := req.Validate(m.store.Catalog()); err != nil {
		return m, m.flashErr(err)
	}

	m.setState(StateSubmitting)
	m.sidebar.SetLocked(true)
	m.gallery.Clear()
	m.flash.Clear(ui.ChannelError)
	m.updateStatus()

	return m, tea.Batch(send, m.activity.Start("Generating..."))
}

func (m *Model) handleGenerateResult(msg GenerateResultMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, generation.ErrBusy) || m.state != StateSubmitting {
		return m, nil
	}
	if msg.Err != nil {
		return m.failGeneration(msg.Err)
	}
	if !msg.Outcome.Queued() {
		return m.completeGeneration(msg.Outcome.Images)
	}

	m.poller = msg.Outcome.Poller
	m.setState(StatePolling)
	m.activity.SetLabel(m.poller.Snapshot().Text())
	m.updateStatus()
	return m, tea.Batch(
		m.ShowFlashSuccess("Request queued. Results will appear here when it finishes."),
		pollTick(m.poller.TaskID(), m.poller.Interval()),
	)
}

func (m *Model) handlePollTick(msg PollTickMsg) (tea.Model, tea.Cmd) {
	if m.poller == nil || m.poller.TaskID() != msg.TaskID {
		logger.WithTask(msg.TaskID).Debug("dropping stale poll tick")
		return m, nil
	}
	return m, m.pollCmd(m.poller)
}

func (m *Model) handlePollResult(msg PollResultMsg) (tea.Model, tea.Cmd) {
	if m.poller == nil || m.poller.TaskID() != msg.TaskID || msg.Err != nil {
		return m, nil
	}
	u := msg.Update
	if !u.Phase.Terminal() {
		m.activity.SetLabel(u.Text())
		m.updateStatus()
		return m, pollTick(m.poller.TaskID(), m.poller.Interval())
	}

	m.gen.Finish(u)
	m.poller = nil
	if u.Phase == generation.PhaseCompleted {
		return m.completeGeneration(u.Images)
	}
	return m.failGeneration(u.Err)
}

// completeGeneration renders images and releases the controls.
func (m *Model) completeGeneration(images []string) (tea.Model, tea.Cmd) {
	m.unlock()
	m.gallery.SetImages(images, generation.Columns(len(images)))

	cmds := []tea.Cmd{m.ShowFlashSuccess(generation.GeneratedMessage(len(images)))}
	if m.store.Snapshot().SavePreference && len(images) > 0 {
		cmds = append(cmds, saveResultsCmd(m.config.GetDownloadDir(), images))
	}
	if m.shouldNotify() {
		n := len(images)
		cmds = append(cmds, notifyCmd(func() error { return notification.GenerationFinished(n) }))
	}
	m.updateInfo()
	return m, tea.Batch(cmds...)
}

// failGeneration restores the empty gallery and releases the controls.
func (m *Model) failGeneration(err error) (tea.Model, tea.Cmd) {
	m.unlock()
	m.gallery.Clear()
	m.updateInfo()

	cmds := []tea.Cmd{m.flashGenerationErr(err)}
	if m.shouldNotify() {
		text := pErrors.UserMessage(err)
		cmds = append(cmds, notifyCmd(func() error { return notification.GenerationFailed(text) }))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) unlock() {
	m.setState(StateIdle)
	m.sidebar.SetLocked(false)
	m.activity.Stop()
	m.updateStatus()
}

// shouldNotify reports whether a finished generation deserves a desktop
// notification: only when enabled and the terminal is not focused.
func (m *Model) shouldNotify() bool {
	return m.config.GetNotificationsEnabled() && !m.windowFocused
}

// =============================================================================
// References
// =============================================================================

// addReferences starts a capture from src after the local checks.
func (m *Model) addReferences(src capture.Source) (tea.Model, tea.Cmd) {
	if !m.IsIdle() {
		return m, nil
	}
	if !m.refs.SectionVisible() {
		return m, m.ShowFlashWarning("This model does not use reference images.")
	}
	if m.refs.Full() {
		return m, m.flashErr(pErrors.CapacityReached(session.MaxReferences))
	}
	return m, m.captureCmd(src)
}

func (m *Model) handleReferencesAdded(msg ReferencesAddedMsg) (tea.Model, tea.Cmd) {
	m.syncReferences()
	if msg.Err != nil {
		return m, tea.Batch(m.flashErr(msg.Err), m.resyncCmd(msg.Err))
	}

	var cmd tea.Cmd
	switch {
	case msg.Added == 0 && len(msg.Errors) == 0:
		// Picker cancelled.
		return m, nil
	case msg.Added == 0:
		cmd = m.flashErr(msg.Errors[0])
	case len(msg.Errors) > 0:
		cmd = m.ShowFlashWarning(fmt.Sprintf("Added %d reference image(s); %d failed: %s",
			msg.Added, len(msg.Errors), pErrors.UserMessage(msg.Errors[0])))
	case msg.Added == 1:
		cmd = m.ShowFlashSuccess("Reference image added.")
	default:
		cmd = m.ShowFlashSuccess(fmt.Sprintf("%d reference images added.", msg.Added))
	}

	if msg.SwitchTo != "" {
		return m, tea.Batch(cmd, m.switchModelCmd(msg.SwitchTo))
	}
	return m, tea.Batch(cmd, m.resyncCmd(msg.Errors...))
}

func (m *Model) removeSelectedReference() (tea.Model, tea.Cmd) {
	i := m.sidebar.SelectedReference()
	if !m.IsIdle() || i < 0 {
		return m, nil
	}
	return m, m.removeReferenceCmd(i)
}

func (m *Model) handleReferenceRemoved(msg ReferenceRemovedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, tea.Batch(m.flashErr(msg.Err), m.resyncCmd(msg.Err))
	}
	m.syncReferences()
	return m, m.ShowFlashInfo("Reference image removed.")
}

// =============================================================================
// Session
// =============================================================================

// switchModel activates model. Selecting the active model does nothing.
func (m *Model) switchModel(model string) (tea.Model, tea.Cmd) {
	if !m.IsIdle() || model == "" || model == m.store.ActiveModel() {
		return m, nil
	}
	return m, m.switchModelCmd(model)
}

func (m *Model) handleModelSwitched(msg ModelSwitchedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.syncFromStore()
		return m, tea.Batch(m.flashErr(msg.Err), m.resyncCmd(msg.Err))
	}
	if !msg.Changed {
		return m, nil
	}
	m.syncFromStore()
	return m, m.ShowFlashInfo("Switched to " + msg.Model + ".")
}

func (m *Model) handleSessionSettingsSaved(msg SessionSettingsSavedMsg) (tea.Model, tea.Cmd) {
	m.syncFromStore()
	if msg.Err != nil {
		return m, tea.Batch(m.flashErr(msg.Err), m.resyncCmd(msg.Err))
	}
	return m, m.ShowFlashInfo("Settings saved.")
}

func (m *Model) handleSessionCleared(msg SessionClearedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, tea.Batch(m.flashErr(msg.Err), m.resyncCmd(msg.Err))
	}
	m.lastSaveDir = ""
	m.gallery.Clear()
	m.syncFromStore()
	return m, m.ShowFlashSuccess("Results cleared.")
}

// =============================================================================
// Prompt helpers
// =============================================================================

func (m *Model) improvePrompt() (tea.Model, tea.Cmd) {
	if !m.IsIdle() {
		return m, nil
	}
	prompt := m.sidebar.Prompt()
	if strings.TrimSpace(prompt) == "" {
		return m, m.ShowFlashError("Write a prompt to improve it.")
	}
	return m, tea.Batch(m.ShowFlashInfo("Improving prompt..."), m.improvePromptCmd(prompt))
}

func (m *Model) magicPrompt() (tea.Model, tea.Cmd) {
	if !m.IsIdle() {
		return m, nil
	}
	return m, tea.Batch(m.ShowFlashInfo("Dreaming up a prompt..."), m.magicPromptCmd())
}

func (m *Model) handlePromptAssist(msg PromptAssistMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.flashErr(msg.Err)
	}
	m.sidebar.SetPrompt(msg.Prompt)
	if msg.Magic {
		return m, m.ShowFlashSuccess("Magic prompt ready.")
	}
	return m, m.ShowFlashSuccess("Prompt improved.")
}

func (m *Model) handlePromptCopied(msg PromptCopiedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.WithComponent("app").Warn("copy failed", "error", msg.Err)
		return m, m.ShowFlashError("Could not copy the prompt.")
	}
	return m, m.ShowFlashInfo("Prompt copied.")
}

// =============================================================================
// Downloads
// =============================================================================

// downloadSelected saves the selected result into the download folder.
func (m *Model) downloadSelected() (tea.Model, tea.Cmd) {
	i, uri, ok := m.gallery.Selected()
	if !ok {
		return m, nil
	}
	if !m.gallery.SelectedValid() {
		return m, m.ShowFlashError(ui.InvalidImageText + ": nothing to download.")
	}
	return m, saveImageCmd(m.config.GetDownloadDir(), uri, i+1)
}

func (m *Model) handleDownloadResult(msg DownloadResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.WithComponent("app").Warn("download failed", "auto", msg.Auto, "error", msg.Err)
		return m, m.ShowFlashError("Could not save images: " + pErrors.UserMessage(msg.Err))
	}
	if !msg.Auto {
		return m, m.ShowFlashSuccess("Saved " + msg.Path)
	}
	m.lastSaveDir = msg.Batch.Dir
	m.updateInfo()
	if n := len(msg.Batch.Errors); n > 0 {
		return m, m.ShowFlashWarning(fmt.Sprintf("%d image(s) could not be saved.", n))
	}
	return m, nil
}

// =============================================================================
// View state
// =============================================================================

// syncFromStore redraws everything derived from the session: model tabs,
// options, references and, when idle, the last results.
func (m *Model) syncFromStore() {
	st := m.store.Snapshot()
	m.header.SetModels(m.store.Catalog().Names(), st.ActiveModel)

	opts := m.sidebar.Options()
	opts.AspectRatio = session.AspectRatioAt(st.AspectRatioIndex)
	opts.Save = st.SavePreference
	m.sidebar.SetOptions(opts)

	m.syncReferences()
	if m.IsIdle() {
		m.gallery.SetImages(st.LastResults, generation.Columns(len(st.LastResults)))
	}
	m.updateInfo()
	m.updateStatus()
}

// resyncCmd refetches the session when any of errs came back from a server
// round trip. The server may have applied the change before failing, so the
// local copy is no longer trusted. Errors caught locally leave it alone.
func (m *Model) resyncCmd(errs ...error) tea.Cmd {
	for _, err := range errs {
		switch pErrors.GetKind(err) {
		case pErrors.KindNetwork, pErrors.KindServer:
			logger.WithComponent("app").Debug("resyncing session after failed mutation", "error", err)
			return m.loadSessionCmd()
		}
	}
	return nil
}

// syncReferences redraws the reference strip and its visibility.
func (m *Model) syncReferences() {
	m.sidebar.SetReferences(m.refs.List(), m.refs.SectionVisible(), m.refs.UploaderVisible(), session.MaxReferences)
}

// updateInfo shows where results are saved while saving is on.
func (m *Model) updateInfo() {
	if !m.store.Snapshot().SavePreference || m.gallery.Len() == 0 {
		m.footer.SetInfo("")
		return
	}
	dir := m.lastSaveDir
	if dir == "" {
		dir = m.config.GetDownloadDir()
	}
	m.footer.SetInfo("Images saved to " + dir)
}

// updateStatus sets the header status from the app state.
func (m *Model) updateStatus() {
	switch {
	case m.state == StatePolling && m.poller != nil:
		m.header.SetStatus(m.poller.Snapshot().Phase.String())
	case m.state == StateSubmitting:
		m.header.SetStatus("submitting")
	case m.offline:
		m.header.SetStatus("offline")
	case !m.loaded:
		m.header.SetStatus("connecting")
	default:
		m.header.SetStatus("")
	}
}
