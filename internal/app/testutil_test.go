package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/backend/backendtest"
	"github.com/zhubert/imagine/internal/capture"
	"github.com/zhubert/imagine/internal/config"
	"github.com/zhubert/imagine/internal/dataurl"
	"github.com/zhubert/imagine/internal/keys"
	"github.com/zhubert/imagine/internal/ui"
)

// roundTimeout bounds how long pump waits for the commands of one round.
// Every real command in these tests finishes well within it.
const roundTimeout = 2 * time.Second

// testConfig creates an in-memory config for testing. Flashes expire and
// polls repeat after a millisecond so no command blocks the pump.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.MarkWelcomeShown() // Skip welcome modal in tests
	cfg.SetDownloadDir(t.TempDir())
	cfg.FlashDurationMS = 1
	cfg.PollIntervalMS = 1
	return cfg
}

// testModel creates a sized Model talking to a fresh fake server. The
// session is loaded before it is returned.
func testModel(t *testing.T, opts ...Option) (*Model, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New(t)
	m := testModelWithServer(t, srv, testConfig(t), opts...)
	return m, srv
}

// testModelWithServer creates a loaded, sized Model for srv.
func testModelWithServer(t *testing.T, srv *backendtest.Server, cfg *config.Config, opts ...Option) *Model {
	t.Helper()
	m := New(cfg, srv.Client(), opts...)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	pump(t, m, m.Init())
	if !m.loaded {
		t.Fatal("session did not load")
	}
	return m
}

// keyPress creates a tea.KeyPressMsg for the given key string.
// Examples: "a", "enter", "tab", "esc", "ctrl+c", "up", "down"
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.ShiftEnter:
		return tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.ShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.Backspace:
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case keys.Delete:
		return tea.KeyPressMsg{Code: tea.KeyDelete}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.Left:
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case keys.Right:
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case keys.PgUp:
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	case keys.PgDown:
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case keys.CtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case keys.CtrlE:
		return tea.KeyPressMsg{Code: 'e', Mod: tea.ModCtrl}
	case keys.CtrlG:
		return tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl}
	case keys.CtrlL:
		return tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl}
	case keys.CtrlO:
		return tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl}
	case keys.CtrlR:
		return tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
	case keys.CtrlS:
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	case keys.CtrlT:
		return tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}
	case keys.CtrlV:
		return tea.KeyPressMsg{Code: 'v', Mod: tea.ModCtrl}
	case keys.CtrlY:
		return tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl}
	case keys.AltA:
		return tea.KeyPressMsg{Code: 'a', Mod: tea.ModAlt}
	default:
		// Regular character - for single characters, set both Code and Text
		if len(key) == 1 {
			return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
		}
		// Fallback for unknown keys
		return tea.KeyPressMsg{Text: key}
	}
}

// sendKey presses key and runs the resulting commands.
func sendKey(t *testing.T, m *Model, key string) {
	t.Helper()
	_, cmd := m.Update(keyPress(key))
	pump(t, m, cmd)
}

// typeText types s into the focused field one rune at a time.
func typeText(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		_, cmd := m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
		pump(t, m, cmd)
	}
}

// send delivers msg and runs the resulting commands.
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	pump(t, m, cmd)
}

// pump runs cmd and everything it leads to, feeding each message back into
// the model the way the Bubble Tea runtime would. Commands of one round run
// concurrently. Spinner ticks and flash expiries are dropped so animation
// loops end and flashes stay visible for assertions.
func pump(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	round := []tea.Cmd{cmd}
	for len(round) > 0 {
		msgs := runRound(round)
		round = nil
		for _, msg := range msgs {
			switch msg := msg.(type) {
			case nil, tea.QuitMsg, ui.ActivityTickMsg, ui.FlashHideMsg:
			case tea.BatchMsg:
				round = append(round, msg...)
			default:
				_, next := m.Update(msg)
				round = append(round, next)
			}
		}
	}
}

func runRound(cmds []tea.Cmd) []tea.Msg {
	results := make(chan tea.Msg, len(cmds))
	n := 0
	for _, c := range cmds {
		if c == nil {
			continue
		}
		n++
		go func(c tea.Cmd) { results <- c() }(c)
	}

	var msgs []tea.Msg
	deadline := time.After(roundTimeout)
	for i := 0; i < n; i++ {
		select {
		case msg := <-results:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
	return msgs
}

// flashText returns the visible text of channel, or "".
func flashText(m *Model, channel ui.FlashChannel) string {
	text, _ := m.flash.Text(channel)
	return text
}

// writeImage writes a PNG reference image to dir and returns its path.
func writeImage(t *testing.T, dir, name string, width int) string {
	t.Helper()
	_, data, err := dataurl.Decode(backendtest.PNG(width))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// filesOption makes ctrl+o read paths instead of opening a dialog.
func filesOption(paths ...string) Option {
	return WithPicker(capture.Files{Paths: paths})
}
