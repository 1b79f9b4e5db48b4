package modals

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestUseInState_Navigation(t *testing.T) {
	targets := []string{"Imagen desde Referencia (V3.5)", "Edición Mágica (Nano)"}
	state := NewUseInState(2, targets)

	if state.GetTarget() != targets[0] {
		t.Errorf("initial target = %q", state.GetTarget())
	}

	state.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	state.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if state.GetTarget() != targets[1] {
		t.Errorf("down should stop at the last target, got %q", state.GetTarget())
	}

	state.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if state.GetTarget() != targets[0] {
		t.Errorf("up should return to the first target, got %q", state.GetTarget())
	}
}

func TestUseInState_Render(t *testing.T) {
	state := NewUseInState(0, []string{"R2I"})
	out := state.Render()
	if !strings.Contains(out, "image #1") || !strings.Contains(out, "R2I") {
		t.Errorf("unexpected render:\n%s", out)
	}
}

func TestUseInState_NoTargets(t *testing.T) {
	state := NewUseInState(0, nil)
	if state.GetTarget() != "" {
		t.Error("no targets should yield an empty target")
	}
	if !strings.Contains(state.Render(), "No model accepts") {
		t.Error("expected empty message")
	}
}

func TestConfirmClearState(t *testing.T) {
	state := NewConfirmClearState(4, 1)
	if state.Confirmed() {
		t.Fatal("Cancel should be preselected")
	}

	tests := []struct {
		key  tea.KeyPressMsg
		want bool
	}{
		{tea.KeyPressMsg{Code: tea.KeyRight}, true},
		{tea.KeyPressMsg{Code: tea.KeyLeft}, false},
		{tea.KeyPressMsg{Code: 'y', Text: "y"}, true},
		{tea.KeyPressMsg{Code: tea.KeyTab}, false},
	}
	for _, tt := range tests {
		state.Update(tt.key)
		if state.Confirmed() != tt.want {
			t.Errorf("after %q Confirmed() = %v, want %v", tt.key.String(), state.Confirmed(), tt.want)
		}
	}

	if out := state.Render(); !strings.Contains(out, "4 result(s)") || !strings.Contains(out, "1 reference") {
		t.Errorf("unexpected render:\n%s", out)
	}
}
