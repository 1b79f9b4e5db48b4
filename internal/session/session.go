package session

import (
	"context"
	"slices"
	"sync"

	"github.com/zhubert/imagine/internal/backend"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
)

// MaxReferences is the most reference images a session may hold.
const MaxReferences = 3

// State is a point-in-time copy of the session.
type State struct {
	ActiveModel      string
	ReferenceImages  []string
	LastResults      []string
	SavePreference   bool
	AspectRatioIndex int
}

// HasResults reports whether there is a gallery to show.
func (s State) HasResults() bool {
	return len(s.LastResults) > 0
}

// Store holds the client copy of the backend session. All access goes
// through its methods; callers get copies, never the backing slices.
type Store struct {
	mu      sync.RWMutex
	state   State
	catalog *Catalog
}

// NewStore creates a Store on catalog with the first model active.
func NewStore(catalog *Catalog) *Store {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Store{
		catalog: catalog,
		state: State{
			ActiveModel:     catalog.At(0),
			ReferenceImages: []string{},
			LastResults:     []string{},
		},
	}
}

// Load replaces the whole state (and the catalog, if the page carried one)
// with a bootstrap snapshot.
func (s *Store) Load(b *backend.Bootstrap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(b.ModelNames) > 0 {
		s.catalog = NewCatalog(b.ModelNames, b.DisplayNames)
	}
	active := b.Session.ActiveTab
	if !s.catalog.Contains(active) {
		active = s.catalog.At(0)
	}
	refs := slices.Clone(b.Session.ReferenceImages)
	if len(refs) > MaxReferences {
		refs = refs[:MaxReferences]
	}
	s.state = State{
		ActiveModel:      active,
		ReferenceImages:  nonNil(refs),
		LastResults:      nonNil(slices.Clone(b.Session.Results)),
		SavePreference:   b.Session.SaveImages,
		AspectRatioIndex: b.Session.AspectRatioIndex,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.ReferenceImages = slices.Clone(s.state.ReferenceImages)
	st.LastResults = slices.Clone(s.state.LastResults)
	return st
}

// Catalog returns the model catalog.
func (s *Store) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// ActiveModel returns the selected model's display name.
func (s *Store) ActiveModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveModel
}

// ActiveAcceptsReferences reports whether the reference section applies.
func (s *Store) ActiveAcceptsReferences() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.AcceptsReferences(s.state.ActiveModel)
}

// References returns a copy of the reference list.
func (s *Store) References() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.ReferenceImages)
}

// SetReferences adopts an authoritative list from the server.
func (s *Store) SetReferences(refs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(refs) > MaxReferences {
		logger.WithComponent("session").Warn("server returned too many references", "count", len(refs))
		refs = refs[:MaxReferences]
	}
	s.state.ReferenceImages = nonNil(slices.Clone(refs))
}

// SetResults records a successful generation.
func (s *Store) SetResults(images []string, save bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastResults = nonNil(slices.Clone(images))
	s.state.SavePreference = save
}

// ClearResults empties the gallery only.
func (s *Store) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastResults = []string{}
}

// SetSavePreference records the save toggle.
func (s *Store) SetSavePreference(save bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SavePreference = save
}

// SetAspectRatioIndex records the selected ratio.
func (s *Store) SetAspectRatioIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AspectRatioIndex = i
}

// applySwitch mirrors what the server does on an active_tab change.
func (s *Store) applySwitch(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveModel = model
	s.state.LastResults = []string{}
	s.state.SavePreference = false
	if !s.catalog.AcceptsReferences(model) {
		s.state.ReferenceImages = []string{}
	}
}

// reset mirrors /clear_session_results.
func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastResults = []string{}
	s.state.ReferenceImages = []string{}
	s.state.SavePreference = false
	s.state.AspectRatioIndex = 0
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// Backend is the subset of the backend client the Manager uses.
type Backend interface {
	Bootstrap(ctx context.Context) (*backend.Bootstrap, error)
	UpdateSettings(ctx context.Context, patch backend.SettingsPatch) error
	ClearResults(ctx context.Context) error
}

// Manager performs session-level round trips and keeps the Store in step.
type Manager struct {
	client Backend
	store  *Store
}

// NewManager creates a Manager.
func NewManager(client Backend, store *Store) *Manager {
	return &Manager{client: client, store: store}
}

// Store returns the managed store.
func (m *Manager) Store() *Store {
	return m.store
}

// Reload refetches the index page and adopts its snapshot.
func (m *Manager) Reload(ctx context.Context) error {
	b, err := m.client.Bootstrap(ctx)
	if err != nil {
		return err
	}
	m.store.Load(b)
	return nil
}

// Switch makes model the active tab. It returns false without a network
// call when model is already active. On failure the previous model stays
// active.
func (m *Manager) Switch(ctx context.Context, model string) (bool, error) {
	log := logger.WithComponent("session")
	current := m.store.ActiveModel()
	if model == current {
		return false, nil
	}
	if !m.store.Catalog().Contains(model) {
		return false, pErrors.E(pErrors.Op("session.Switch"), pErrors.KindNotFound,
			"Unknown model '"+model+"'.")
	}

	if err := m.client.UpdateSettings(ctx, backend.SettingsPatch{ActiveTab: &model}); err != nil {
		log.Warn("model switch rejected", "from", current, "to", model, "error", err)
		return false, err
	}

	if err := m.Reload(ctx); err != nil {
		// The server accepted the switch; apply its rules locally until the
		// next successful reload.
		log.Warn("reload after switch failed", "model", model, "error", err)
		m.store.applySwitch(model)
	}
	log.Info("model switched", "from", current, "to", model)
	return true, nil
}

// SetSavePreference patches save_images.
func (m *Manager) SetSavePreference(ctx context.Context, save bool) error {
	if err := m.client.UpdateSettings(ctx, backend.SettingsPatch{SaveImages: &save}); err != nil {
		return err
	}
	m.store.SetSavePreference(save)
	return nil
}

// SetAspectRatio patches aspect_ratio_index.
func (m *Manager) SetAspectRatio(ctx context.Context, index int) error {
	if index < 0 || index >= len(AspectRatios) {
		return pErrors.E(pErrors.Op("session.SetAspectRatio"), pErrors.KindInvalid, "Unknown aspect ratio.")
	}
	if err := m.client.UpdateSettings(ctx, backend.SettingsPatch{AspectRatioIndex: &index}); err != nil {
		return err
	}
	m.store.SetAspectRatioIndex(index)
	return nil
}

// Clear resets results, references and settings on the server and locally.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.client.ClearResults(ctx); err != nil {
		return err
	}
	m.store.reset()
	return nil
}
