package ui

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ActivityTickMsg advances the busy spinner started as run ID.
type ActivityTickMsg struct {
	ID int
}

// spinnerFrames are the characters used for the shimmering spinner animation
var spinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// ActivityTick returns a command that sends the next spinner tick for run id.
func ActivityTick(id int) tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return ActivityTickMsg{ID: id}
	})
}

// Activity is the busy indicator shown while a generation is in flight.
type Activity struct {
	label   string
	id      int
	frame   int
	started time.Time
	active  bool
}

// Start shows the indicator with label and returns the first tick. It
// returns nil when the indicator is already running. Ticks of an earlier run
// are dropped, so only one tick loop exists at a time.
func (a *Activity) Start(label string) tea.Cmd {
	a.label = label
	if a.active {
		return nil
	}
	a.active = true
	a.id++
	a.frame = 0
	a.started = time.Now()
	return ActivityTick(a.id)
}

// SetLabel changes the text without restarting the clock.
func (a *Activity) SetLabel(label string) {
	a.label = label
}

// Stop hides the indicator. The pending tick is dropped by Tick.
func (a *Activity) Stop() {
	a.active = false
}

// Active reports whether the indicator is showing.
func (a *Activity) Active() bool {
	return a.active
}

// Tick advances one frame and schedules the next while the run is current.
func (a *Activity) Tick(msg ActivityTickMsg) tea.Cmd {
	if !a.active || msg.ID != a.id {
		return nil
	}
	a.frame++
	return ActivityTick(a.id)
}

// View renders "✺ label (12s)".
func (a *Activity) View() string {
	if !a.active {
		return ""
	}
	return renderSpinner(a.label, a.frame, time.Since(a.started))
}

func renderSpinner(label string, frameIdx int, elapsed time.Duration) string {
	frame := spinnerFrames[frameIdx%len(spinnerFrames)]

	spinnerStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Italic(true)

	out := spinnerStyle.Render(frame) + " " + labelStyle.Render(label)
	if elapsed >= time.Second {
		out += LabelStyle.Render(fmt.Sprintf(" (%ds)", int(elapsed.Seconds())))
	}
	return out
}
