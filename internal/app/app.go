package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/capture"
	"github.com/zhubert/imagine/internal/config"
	"github.com/zhubert/imagine/internal/download"
	"github.com/zhubert/imagine/internal/generation"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/refs"
	"github.com/zhubert/imagine/internal/session"
	"github.com/zhubert/imagine/internal/ui"
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusGallery
)

func (f Focus) String() string {
	if f == FocusGallery {
		return "gallery"
	}
	return "sidebar"
}

// AppState represents the current state of the application.
// Using an explicit state machine prevents invalid state combinations
// and makes state transitions clear and traceable.
type AppState int

const (
	StateIdle       AppState = iota // Ready for user input
	StateSubmitting                 // Waiting for the /generate answer
	StatePolling                    // Following a queued task
)

// String returns a human-readable name for the state
func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSubmitting:
		return "Submitting"
	case StatePolling:
		return "Polling"
	default:
		return "Unknown"
	}
}

// Model is the main Bubble Tea model
type Model struct {
	config *config.Config

	client   *backend.Client
	store    *session.Store
	sessions *session.Manager
	refs     *refs.Manager
	gen      *generation.Controller
	poller   *generation.Poller // non-nil while a queued task is followed

	picker    capture.Source
	clipboard capture.Source

	header   *ui.Header
	footer   *ui.Footer
	flash    *ui.Flash
	sidebar  *ui.Sidebar
	gallery  *ui.Gallery
	modal    *ui.Modal
	activity ui.Activity

	width  int
	height int
	focus  Focus

	// State machine
	state AppState

	loaded        bool
	offline       bool
	windowFocused bool
	lastSaveDir   string

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Model.
type Option func(*Model)

// WithPicker replaces the native file dialog used by ctrl+o.
func WithPicker(src capture.Source) Option {
	return func(m *Model) { m.picker = src }
}

// WithClipboard replaces the clipboard source used by ctrl+v.
func WithClipboard(src capture.Source) Option {
	return func(m *Model) { m.clipboard = src }
}

// StartupModalMsg is sent on app start to trigger the welcome modal
type StartupModalMsg struct{}

// SessionLoadedMsg carries the result of reading the backend session.
type SessionLoadedMsg struct {
	Err error
}

// GenerateResultMsg is the answer to a /generate submission.
type GenerateResultMsg struct {
	Outcome *generation.Outcome
	Err     error
}

// PollTickMsg asks for the next status check of TaskID.
type PollTickMsg struct {
	TaskID string
}

// PollResultMsg is one status check of TaskID.
type PollResultMsg struct {
	TaskID string
	Update generation.Update
	Err    error
}

// ReferencesAddedMsg reports images uploaded as references.
type ReferencesAddedMsg struct {
	Added    int
	Errors   []error
	SwitchTo string
	Err      error
}

// ReferenceRemovedMsg reports a reference removal.
type ReferenceRemovedMsg struct {
	Index int
	Err   error
}

// ModelSwitchedMsg reports a model tab change.
type ModelSwitchedMsg struct {
	Model   string
	Changed bool
	Err     error
}

// SessionSettingsSavedMsg reports a save preference or aspect ratio patch.
type SessionSettingsSavedMsg struct {
	Err error
}

// SessionClearedMsg reports the result of clearing the session.
type SessionClearedMsg struct {
	Err error
}

// PromptAssistMsg carries an improved or generated prompt.
type PromptAssistMsg struct {
	Magic  bool
	Prompt string
	Err    error
}

// DownloadResultMsg reports images written to disk.
type DownloadResultMsg struct {
	Batch *download.Batch
	Path  string
	Auto  bool
	Err   error
}

// PromptCopiedMsg reports copying the prompt to the clipboard.
type PromptCopiedMsg struct {
	Err error
}

// New creates a new app model talking to client.
func New(cfg *config.Config, client *backend.Client, opts ...Option) *Model {
	// Load saved theme from config, or use default
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	flash := ui.NewFlash(cfg.FlashDuration())
	m := &Model{
		config:        cfg,
		header:        ui.NewHeader(),
		flash:         flash,
		footer:        ui.NewFooter(flash),
		sidebar:       ui.NewSidebar(),
		gallery:       ui.NewGallery(),
		modal:         ui.NewModal(),
		focus:         FocusSidebar,
		state:         StateIdle,
		windowFocused: true,
		picker:        capture.Picker{Multiple: true},
		clipboard:     capture.Clipboard{},
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(m)
	}
	m.connect(client)

	m.sidebar.SetFocused(true)
	m.syncFromStore()
	return m
}

// connect binds the model to a backend. The session starts from the
// default catalog until the first load answers.
func (m *Model) connect(client *backend.Client) {
	m.client = client
	m.store = session.NewStore(session.DefaultCatalog())
	m.sessions = session.NewManager(client, m.store)
	m.refs = refs.NewManager(client, m.store)
	m.gen = generation.NewController(client, m.store, m.config.PollInterval(), m.config.PollTimeout())
	m.poller = nil
	m.loaded = false
	m.offline = false
}

// Close stops background work. A queued task is abandoned; no status
// check is issued after Close.
func (m *Model) Close() {
	m.poller = nil
	m.cancel()
}

// State helper methods

// IsIdle returns true if the app is ready for user input
func (m *Model) IsIdle() bool {
	return m.state == StateIdle
}

// setState transitions to a new state with logging
func (m *Model) setState(newState AppState) {
	if m.state != newState {
		logger.WithComponent("app").Debug("state transition", "from", m.state, "to", newState)
		m.state = newState
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadSessionCmd(),
		func() tea.Msg { return StartupModalMsg{} },
	)
}
