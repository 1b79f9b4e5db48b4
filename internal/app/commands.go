package app

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/capture"
	"github.com/zhubert/imagine/internal/clipboard"
	"github.com/zhubert/imagine/internal/download"
	"github.com/zhubert/imagine/internal/generation"
	"github.com/zhubert/imagine/internal/logger"
)

// Commands capture the collaborators they need when created, so a command
// still running after a reconnect talks to the backend it was started for.

func (m *Model) loadSessionCmd() tea.Cmd {
	sessions, ctx := m.sessions, m.ctx
	return func() tea.Msg {
		return SessionLoadedMsg{Err: sessions.Reload(ctx)}
	}
}

func (m *Model) generateCmd(req generation.Request) tea.Cmd {
	gen, ctx := m.gen, m.ctx
	return func() tea.Msg {
		out, err := gen.Submit(ctx, req)
		return GenerateResultMsg{Outcome: out, Err: err}
	}
}

func (m *Model) retryCmd() tea.Cmd {
	gen, ctx := m.gen, m.ctx
	return func() tea.Msg {
		out, err := gen.Retry(ctx)
		return GenerateResultMsg{Outcome: out, Err: err}
	}
}

// pollTick schedules the next status check for taskID.
func pollTick(taskID string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return PollTickMsg{TaskID: taskID}
	})
}

func (m *Model) pollCmd(p *generation.Poller) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		u, err := p.Check(ctx)
		return PollResultMsg{TaskID: p.TaskID(), Update: u, Err: err}
	}
}

// captureCmd acquires src and uploads every accepted image. The source is
// released before the message is returned, whatever happened.
func (m *Model) captureCmd(src capture.Source) tea.Cmd {
	mgr, ctx := m.refs, m.ctx
	return func() tea.Msg {
		var msg ReferencesAddedMsg
		msg.Err = capture.WithCapture(ctx, src, func(c *capture.Capture) error {
			msg.Errors = append(msg.Errors, c.Errors()...)
			images := c.Images()
			if len(images) == 0 {
				return nil
			}
			res := mgr.AddMany(ctx, images)
			msg.Added = res.Added
			msg.Errors = append(msg.Errors, res.Errors...)
			return nil
		})
		return msg
	}
}

func (m *Model) useInCmd(image, target string) tea.Cmd {
	mgr, ctx := m.refs, m.ctx
	return func() tea.Msg {
		res, err := mgr.Add(ctx, image, target)
		if err != nil {
			return ReferencesAddedMsg{Err: err}
		}
		return ReferencesAddedMsg{Added: 1, SwitchTo: res.SwitchTo}
	}
}

func (m *Model) removeReferenceCmd(index int) tea.Cmd {
	mgr, ctx := m.refs, m.ctx
	return func() tea.Msg {
		_, err := mgr.Remove(ctx, index)
		return ReferenceRemovedMsg{Index: index, Err: err}
	}
}

func (m *Model) switchModelCmd(model string) tea.Cmd {
	sessions, ctx := m.sessions, m.ctx
	return func() tea.Msg {
		changed, err := sessions.Switch(ctx, model)
		return ModelSwitchedMsg{Model: model, Changed: changed, Err: err}
	}
}

// sessionSettingsCmd patches the fields that are set.
func (m *Model) sessionSettingsCmd(save *bool, aspect *int) tea.Cmd {
	sessions, ctx := m.sessions, m.ctx
	return func() tea.Msg {
		if save != nil {
			if err := sessions.SetSavePreference(ctx, *save); err != nil {
				return SessionSettingsSavedMsg{Err: err}
			}
		}
		if aspect != nil {
			if err := sessions.SetAspectRatio(ctx, *aspect); err != nil {
				return SessionSettingsSavedMsg{Err: err}
			}
		}
		return SessionSettingsSavedMsg{}
	}
}

func (m *Model) clearSessionCmd() tea.Cmd {
	sessions, ctx := m.sessions, m.ctx
	return func() tea.Msg {
		return SessionClearedMsg{Err: sessions.Clear(ctx)}
	}
}

func (m *Model) improvePromptCmd(prompt string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		improved, err := client.ImprovePrompt(ctx, prompt)
		return PromptAssistMsg{Prompt: improved, Err: err}
	}
}

func (m *Model) magicPromptCmd() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		prompt, err := client.MagicPrompt(ctx)
		return PromptAssistMsg{Magic: true, Prompt: prompt, Err: err}
	}
}

// saveResultsCmd writes a full result set into a new run directory.
func saveResultsCmd(dir string, images []string) tea.Cmd {
	return func() tea.Msg {
		b, err := download.New(dir).SaveAll(images)
		return DownloadResultMsg{Batch: b, Auto: true, Err: err}
	}
}

// saveImageCmd writes one result, numbered index (1-based).
func saveImageCmd(dir, image string, index int) tea.Cmd {
	return func() tea.Msg {
		path, err := download.New(dir).SaveOne(image, index)
		return DownloadResultMsg{Path: path, Err: err}
	}
}

func copyPromptCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return PromptCopiedMsg{Err: clipboard.WriteText(text)}
	}
}

// notifyCmd sends a desktop notification off the update loop.
func notifyCmd(send func() error) tea.Cmd {
	return func() tea.Msg {
		if err := send(); err != nil {
			logger.WithComponent("app").Debug("notification not sent", "error", err)
		}
		return nil
	}
}

// newClient is replaced in tests that change the server URL.
var newClient = backend.New
