package ui

import (
	"regexp"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

// stripANSI removes ANSI escape codes from a string for testing
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

var testModels = []string{
	"Texto a Imagen (v3.1)",
	"Texto a Imagen Ultra (v3.5)",
	"Imagen desde Referencia (V3.5)",
	"Edición Mágica (Nano)",
}

func TestHeader_ViewShowsTitleAndTabs(t *testing.T) {
	h := NewHeader()
	h.SetWidth(200)
	h.SetModels(testModels, testModels[1])

	view := stripANSI(h.View())
	if !strings.Contains(view, "imagine") {
		t.Error("header should contain the app title")
	}
	for i, name := range testModels {
		if !strings.Contains(view, name) {
			t.Errorf("tab %d (%s) missing from %q", i+1, name, view)
		}
	}
	if got := runewidth.StringWidth(view); got != 200 {
		t.Errorf("header width = %d, want 200", got)
	}
}

func TestHeader_TruncatesTabsWhenNarrow(t *testing.T) {
	h := NewHeader()
	h.SetWidth(70)
	h.SetModels(testModels, testModels[0])

	view := stripANSI(h.View())
	if strings.Contains(view, "Texto a Imagen Ultra (v3.5)") {
		t.Error("long tab names should be shortened on a narrow terminal")
	}
	if !strings.Contains(view, "…") {
		t.Error("shortened tabs should end with an ellipsis")
	}
	if got := runewidth.StringWidth(view); got > 70 {
		t.Errorf("header overflowed: width %d", got)
	}
}

func TestHeader_Status(t *testing.T) {
	h := NewHeader()
	h.SetWidth(200)
	h.SetModels(testModels, testModels[0])
	h.SetStatus("2 turns ahead of you")

	view := stripANSI(h.View())
	if !strings.HasSuffix(strings.TrimRight(view, " "), "2 turns ahead of you") {
		t.Errorf("status should be right-aligned, got %q", view)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		r, g, b int
	}{
		{"#7C3AED", 0x7C, 0x3A, 0xED},
		{"#000000", 0, 0, 0},
		{"invalid", 0, 0, 0},
		{"", 0, 0, 0},
	}
	for _, tt := range tests {
		r, g, b := parseHexColor(tt.hex)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseHexColor(%q) = (%d,%d,%d), want (%d,%d,%d)", tt.hex, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}
