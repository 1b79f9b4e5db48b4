package modals

import (
	"strings"
	"testing"
)

func TestImageViewerState_Render(t *testing.T) {
	var gotCols, gotRows int
	render := func(cols, rows int) string {
		gotCols, gotRows = cols, rows
		return "[pixels]"
	}
	details := ImageDetails{Index: 1, MIME: "image/png", Format: "png", Width: 640, Height: 480, Bytes: 2048}
	state := NewImageViewerState(details, render, true)
	state.SetSize(70, 30)

	out := state.Render()
	for _, want := range []string{"Image #2", "[pixels]", "PNG", "640×480", "2.0 KB", "image/png", "u: use in"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if gotCols != 70 || gotRows != 23 {
		t.Errorf("render called with %d×%d", gotCols, gotRows)
	}
}

func TestImageViewerState_SetSizeCaches(t *testing.T) {
	calls := 0
	state := NewImageViewerState(ImageDetails{}, func(int, int) string {
		calls++
		return "x"
	}, false)

	state.SetSize(50, 20)
	state.SetSize(50, 20)
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
	state.SetSize(40, 20)
	if calls != 2 {
		t.Errorf("resize should re-render, calls = %d", calls)
	}
}

func TestImageViewerState_HelpWithoutUseIn(t *testing.T) {
	state := NewImageViewerState(ImageDetails{}, nil, false)
	if strings.Contains(state.Help(), "use in") {
		t.Errorf("help should not offer use in: %q", state.Help())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("/short", 20); got != "/short" {
		t.Errorf("got %q", got)
	}
	got := TruncatePath("/a/very/long/path/to/output", 12)
	if len(got) != 12 || !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "output") {
		t.Errorf("got %q", got)
	}
}
