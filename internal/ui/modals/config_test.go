package modals

import (
	"strings"
	"testing"
)

func testSettings() SettingsValues {
	return SettingsValues{
		Theme:            "dark",
		ImageCount:       4,
		AspectRatioIndex: 0,
		Save:             false,
		Notifications:    true,
		ServerURL:        "http://127.0.0.1:5000",
		DownloadDir:      "./output",
	}
}

func newTestSettings() *SettingsState {
	return NewSettingsState(testSettings(), []string{"dark", "light"}, []string{"1:1", "16:9", "9:16", "4:3", "3:4"}, 4)
}

func TestWelcomeState_Render(t *testing.T) {
	state := NewWelcomeState("http://example.test")
	out := state.Render()
	if !strings.Contains(out, "Welcome to imagine") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "http://example.test") {
		t.Error("missing server URL")
	}
}

func TestSettingsState_Unchanged(t *testing.T) {
	s := newTestSettings()

	if s.ThemeChanged() || s.SessionChanged() || s.ServerChanged() {
		t.Error("fresh settings should report no changes")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if s.Values() != testSettings() {
		t.Errorf("Values() = %+v", s.Values())
	}
}

func TestSettingsState_Changes(t *testing.T) {
	s := newTestSettings()
	s.values.Theme = "light"
	s.values.Save = true
	s.values.ServerURL = " http://10.0.0.2:5000/ "

	if !s.ThemeChanged() {
		t.Error("theme change not detected")
	}
	if !s.SessionChanged() {
		t.Error("save change not detected")
	}
	if !s.ServerChanged() {
		t.Error("server change not detected")
	}
	if got := s.Values().ServerURL; got != "http://10.0.0.2:5000" {
		t.Errorf("ServerURL = %q", got)
	}
	if s.Original().Theme != "dark" {
		t.Error("original should be preserved")
	}
}

func TestSettingsState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SettingsValues)
		wantErr bool
	}{
		{"valid", func(*SettingsValues) {}, false},
		{"https", func(v *SettingsValues) { v.ServerURL = "https://imagine.example" }, false},
		{"no scheme", func(v *SettingsValues) { v.ServerURL = "127.0.0.1:5000" }, true},
		{"ftp", func(v *SettingsValues) { v.ServerURL = "ftp://host" }, true},
		{"empty dir", func(v *SettingsValues) { v.DownloadDir = "  " }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSettings()
			tt.mutate(&s.values)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsState_Render(t *testing.T) {
	s := newTestSettings()
	s.SetSize(80, 30)
	out := s.Render()
	for _, want := range []string{"Settings", "Aspect ratio", "Server URL"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	if s.PreferredWidth() != ModalWidthWide {
		t.Errorf("PreferredWidth = %d", s.PreferredWidth())
	}
}
