// Package refs manages the session's reference images: the up to three
// pictures the reference-driven models condition on.
//
// The server's list is authoritative. The client never appends locally; a
// successful add or remove adopts the list the server returns, and a failed
// one leaves the local list untouched. Mutations go through a single lock so
// that a burst of uploads is applied one at a time and no server answer is
// overwritten by an older one.
package refs

import (
	"context"
	"sync"

	"github.com/zhubert/imagine/internal/dataurl"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/session"
)

// Backend is the subset of the backend client used for references.
type Backend interface {
	AddReference(ctx context.Context, dataURI string) ([]string, error)
	RemoveReference(ctx context.Context, index int) ([]string, error)
}

// AddResult describes a successful Add.
type AddResult struct {
	References []string
	// SwitchTo is set when the caller asked for a target model other than
	// the active one; the caller should switch to it rather than just
	// redrawing the reference strip.
	SwitchTo string
}

// Manager owns reference mutations for one session.
type Manager struct {
	mu     sync.Mutex
	client Backend
	store  *session.Store
}

// NewManager creates a Manager writing into store.
func NewManager(client Backend, store *session.Store) *Manager {
	return &Manager{client: client, store: store}
}

// List returns the current references.
func (m *Manager) List() []string {
	return m.store.References()
}

// Len returns the number of references.
func (m *Manager) Len() int {
	return len(m.store.References())
}

// Remaining returns how many more references fit.
func (m *Manager) Remaining() int {
	return session.MaxReferences - m.Len()
}

// Full reports whether the list is at capacity.
func (m *Manager) Full() bool {
	return m.Remaining() <= 0
}

// SectionVisible reports whether the active model shows the reference section.
func (m *Manager) SectionVisible() bool {
	return m.store.ActiveAcceptsReferences()
}

// UploaderVisible reports whether more references can be added.
func (m *Manager) UploaderVisible() bool {
	return m.SectionVisible() && !m.Full()
}

// Add uploads image. Capacity and format are checked locally before any
// network call. targetModel may be empty.
func (m *Manager) Add(ctx context.Context, image, targetModel string) (*AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := logger.WithComponent("refs")

	if err := validate(image); err != nil {
		return nil, err
	}
	if len(m.store.References()) >= session.MaxReferences {
		return nil, pErrors.CapacityReached(session.MaxReferences)
	}

	list, err := m.client.AddReference(ctx, image)
	if err != nil {
		log.Warn("add reference failed", "error", err)
		return nil, err
	}
	m.store.SetReferences(list)
	log.Info("reference added", "count", len(list))

	res := &AddResult{References: m.store.References()}
	if targetModel != "" && targetModel != m.store.ActiveModel() {
		res.SwitchTo = targetModel
	}
	return res, nil
}

// Remove deletes the reference at index.
func (m *Manager) Remove(ctx context.Context, index int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.store.References())
	if index < 0 || index >= n {
		return nil, pErrors.IndexOutOfRange(index, n)
	}

	list, err := m.client.RemoveReference(ctx, index)
	if err != nil {
		logger.WithComponent("refs").Warn("remove reference failed", "index", index, "error", err)
		return nil, err
	}
	m.store.SetReferences(list)
	return m.store.References(), nil
}

// BatchResult reports a multi-image upload.
type BatchResult struct {
	Added  int
	Errors []error
}

// AddMany uploads images in order. A failing image does not stop the rest.
func (m *Manager) AddMany(ctx context.Context, images []string) BatchResult {
	var out BatchResult
	for _, img := range images {
		if ctx.Err() != nil {
			out.Errors = append(out.Errors, ctx.Err())
			break
		}
		if _, err := m.Add(ctx, img, ""); err != nil {
			out.Errors = append(out.Errors, err)
			continue
		}
		out.Added++
	}
	return out
}

func validate(image string) error {
	const op = pErrors.Op("refs.Add")
	if !dataurl.IsImage(image) {
		return pErrors.E(op, pErrors.KindInvalid, "Only image files can be used as references.")
	}
	if dataurl.DecodedSize(image) > dataurl.MaxImageBytes {
		return pErrors.E(op, pErrors.KindInvalid, "Reference images must be 10 MB or smaller.")
	}
	return nil
}
