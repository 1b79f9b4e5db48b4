package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// DefaultFlashDuration is how long a flash stays visible.
const DefaultFlashDuration = 8 * time.Second

// FlashType selects the style of a flash message.
type FlashType int

const (
	FlashError FlashType = iota
	FlashWarning
	FlashInfo
	FlashSuccess
)

// FlashChannel is one independent notification slot. Errors and everything
// else are shown side by side and expire independently.
type FlashChannel int

const (
	ChannelError FlashChannel = iota
	ChannelStatus
)

func (t FlashType) channel() FlashChannel {
	if t == FlashError {
		return ChannelError
	}
	return ChannelStatus
}

// FlashHideMsg asks the flash to hide the message with sequence Seq. A newer
// message in the same channel has a different Seq, so stale hides are no-ops.
type FlashHideMsg struct {
	Channel FlashChannel
	Seq     uint64
}

type flashSlot struct {
	text  string
	kind  FlashType
	seq   uint64
	retry bool
}

// Flash holds at most one message per channel.
type Flash struct {
	duration time.Duration
	seq      uint64
	slots    [2]*flashSlot
}

// NewFlash creates a flash that hides messages after d (DefaultFlashDuration
// when d <= 0).
func NewFlash(d time.Duration) *Flash {
	if d <= 0 {
		d = DefaultFlashDuration
	}
	return &Flash{duration: d}
}

// Duration returns the auto-hide delay.
func (f *Flash) Duration() time.Duration {
	return f.duration
}

// Show replaces the message in kind's channel and returns the hide timer.
func (f *Flash) Show(text string, kind FlashType) tea.Cmd {
	return f.show(text, kind, false)
}

// ShowError shows an error. When retry is set the message offers ctrl+r.
func (f *Flash) ShowError(text string, retry bool) tea.Cmd {
	return f.show(text, FlashError, retry)
}

func (f *Flash) show(text string, kind FlashType, retry bool) tea.Cmd {
	f.seq++
	ch := kind.channel()
	f.slots[ch] = &flashSlot{text: text, kind: kind, seq: f.seq, retry: retry}
	hide := FlashHideMsg{Channel: ch, Seq: f.seq}
	return tea.Tick(f.duration, func(time.Time) tea.Msg {
		return hide
	})
}

// Hide handles a FlashHideMsg. It reports whether a message was removed.
func (f *Flash) Hide(msg FlashHideMsg) bool {
	slot := f.slots[msg.Channel]
	if slot == nil || slot.seq != msg.Seq {
		return false
	}
	f.slots[msg.Channel] = nil
	return true
}

// Clear removes the message in channel immediately.
func (f *Flash) Clear(channel FlashChannel) {
	f.slots[channel] = nil
}

// Text returns the visible message of a channel.
func (f *Flash) Text(channel FlashChannel) (string, bool) {
	if s := f.slots[channel]; s != nil {
		return s.text, true
	}
	return "", false
}

// HasRetry reports whether the visible error offers a retry.
func (f *Flash) HasRetry() bool {
	s := f.slots[ChannelError]
	return s != nil && s.retry
}

// Visible reports whether any message is showing.
func (f *Flash) Visible() bool {
	return f.slots[ChannelError] != nil || f.slots[ChannelStatus] != nil
}

// View renders the visible messages on one line of at most width cells.
func (f *Flash) View(width int) string {
	var parts []string
	for _, s := range f.slots {
		if s == nil {
			continue
		}
		text := s.text
		if s.retry {
			text += "  (ctrl+r: retry)"
		}
		parts = append(parts, flashStyle(s.kind).Render(text))
	}
	line := strings.Join(parts, " ")
	if width > 0 && ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func flashStyle(kind FlashType) lipgloss.Style {
	switch kind {
	case FlashError:
		return FlashErrorStyle
	case FlashWarning:
		return FlashWarningStyle
	case FlashInfo:
		return FlashInfoStyle
	default:
		return FlashSuccessStyle
	}
}
