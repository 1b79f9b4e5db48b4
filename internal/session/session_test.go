package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/backend/backendtest"
	pErrors "github.com/zhubert/imagine/internal/errors"
)

var ctx = context.Background()

func newTestManager(t *testing.T) (*Manager, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New(t)
	m := NewManager(srv.Client(), NewStore(nil))
	if err := m.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return m, srv
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()

	if c.Len() != 4 {
		t.Fatalf("Len = %d, want 4", c.Len())
	}
	if !c.AcceptsReferences("Imagen desde Referencia (V3.5)") || !c.AcceptsReferences("Edición Mágica (Nano)") {
		t.Error("R2I and GEM_PIX models should accept references")
	}
	if c.AcceptsReferences("Texto a Imagen (v3.1)") {
		t.Error("text-to-image model should not accept references")
	}
	if !c.RequiresReference("Imagen desde Referencia (V3.5)") || c.RequiresReference("Edición Mágica (Nano)") {
		t.Error("only R2I requires a reference")
	}

	targets := c.ReferenceTargets()
	if len(targets) != 2 || targets[0] != c.At(2) || targets[1] != c.At(3) {
		t.Errorf("ReferenceTargets = %v", targets)
	}

	if got := c.Cycle(c.At(3), 1); got != c.At(0) {
		t.Errorf("Cycle forward wrap = %q", got)
	}
	if got := c.Cycle(c.At(0), -1); got != c.At(3) {
		t.Errorf("Cycle backward wrap = %q", got)
	}
	if got := c.Cycle("missing", 1); got != c.At(0) {
		t.Errorf("Cycle unknown = %q", got)
	}
	if c.At(9) != "" || c.Index("missing") != -1 {
		t.Error("out of range lookups should be empty")
	}
}

func TestAspectRatioAt(t *testing.T) {
	if AspectRatioAt(1) != "16:9" {
		t.Errorf("AspectRatioAt(1) = %q", AspectRatioAt(1))
	}
	if AspectRatioAt(-1) != "1:1" || AspectRatioAt(99) != "1:1" {
		t.Error("out of range should fall back to 1:1")
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore(nil)
	s.SetReferences([]string{"a", "b"})

	snap := s.Snapshot()
	snap.ReferenceImages[0] = "mutated"

	if s.References()[0] != "a" {
		t.Error("Snapshot must not alias the store")
	}
}

func TestStore_SetReferencesCapsAtMax(t *testing.T) {
	s := NewStore(nil)
	s.SetReferences([]string{"a", "b", "c", "d"})
	if got := len(s.References()); got != MaxReferences {
		t.Errorf("len = %d, want %d", got, MaxReferences)
	}
}

func TestStore_LoadUnknownActiveFallsBack(t *testing.T) {
	s := NewStore(nil)
	s.Load(&backend.Bootstrap{Session: backend.SessionState{ActiveTab: "gone"}})
	if s.ActiveModel() != DefaultCatalog().At(0) {
		t.Errorf("ActiveModel = %q", s.ActiveModel())
	}
	if s.Snapshot().LastResults == nil {
		t.Error("nil results should be normalized")
	}
}

func TestManager_SwitchSameModelIsNoop(t *testing.T) {
	m, srv := newTestManager(t)
	before := srv.TotalCalls()

	changed, err := m.Switch(ctx, m.Store().ActiveModel())
	if err != nil || changed {
		t.Fatalf("Switch = (%v, %v), want (false, nil)", changed, err)
	}
	if srv.TotalCalls() != before {
		t.Error("switching to the active model must not hit the network")
	}
}

func TestManager_SwitchReloadsState(t *testing.T) {
	m, srv := newTestManager(t)
	cat := m.Store().Catalog()

	// Put refs and results on the server under a reference model.
	srv.SetState(backend.SessionState{
		ActiveTab:       cat.At(2),
		Results:         backendtest.Images(2),
		ReferenceImages: backendtest.Images(1),
	})
	if err := m.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	changed, err := m.Switch(ctx, cat.At(3))
	if err != nil || !changed {
		t.Fatalf("Switch = (%v, %v)", changed, err)
	}
	st := m.Store().Snapshot()
	if st.ActiveModel != cat.At(3) {
		t.Errorf("ActiveModel = %q", st.ActiveModel)
	}
	if st.HasResults() {
		t.Error("results should be cleared after a switch")
	}
	if len(st.ReferenceImages) != 1 {
		t.Errorf("refs should survive a switch between reference models, got %d", len(st.ReferenceImages))
	}

	if _, err := m.Switch(ctx, cat.At(0)); err != nil {
		t.Fatal(err)
	}
	if got := len(m.Store().References()); got != 0 {
		t.Errorf("refs should be dropped for a text model, got %d", got)
	}
	if srv.Calls("index") < 3 {
		t.Error("each switch should reload the session")
	}
}

func TestManager_SwitchFailureKeepsModel(t *testing.T) {
	m, srv := newTestManager(t)
	srv.OnSettings = func(map[string]any) *backendtest.Response {
		return &backendtest.Response{Code: http.StatusInternalServerError, Body: backendtest.Failure("busy")}
	}
	before := m.Store().ActiveModel()

	_, err := m.Switch(ctx, m.Store().Catalog().At(1))
	if err == nil {
		t.Fatal("expected error")
	}
	if pErrors.UserMessage(err) != "busy" {
		t.Errorf("UserMessage = %q", pErrors.UserMessage(err))
	}
	if m.Store().ActiveModel() != before {
		t.Error("active model must not change on failure")
	}
}

func TestManager_SwitchUnknownModel(t *testing.T) {
	m, srv := newTestManager(t)
	before := srv.TotalCalls()
	_, err := m.Switch(ctx, "Nope")
	if !pErrors.Is(err, pErrors.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if srv.TotalCalls() != before {
		t.Error("unknown model must not hit the network")
	}
}

func TestManager_SettingsAndClear(t *testing.T) {
	m, srv := newTestManager(t)

	if err := m.SetSavePreference(ctx, true); err != nil {
		t.Fatal(err)
	}
	if !m.Store().Snapshot().SavePreference || !srv.State().SaveImages {
		t.Error("save preference should be set on both sides")
	}

	if err := m.SetAspectRatio(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if m.Store().Snapshot().AspectRatioIndex != 2 || srv.State().AspectRatioIndex != 2 {
		t.Error("aspect ratio should be set on both sides")
	}
	if err := m.SetAspectRatio(ctx, 42); !pErrors.Is(err, pErrors.KindInvalid) {
		t.Errorf("out of range ratio err = %v", err)
	}

	m.Store().SetResults(backendtest.Images(2), true)
	m.Store().SetReferences(backendtest.Images(1))
	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	st := m.Store().Snapshot()
	if st.HasResults() || len(st.ReferenceImages) != 0 || st.SavePreference || st.AspectRatioIndex != 0 {
		t.Errorf("Clear left state behind: %+v", st)
	}
}
