package generation

import (
	"context"
	"sync"
	"time"

	"github.com/zhubert/imagine/internal/backend"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
)

// Phase is a queued task's place in its lifecycle.
//
//	Queued(pos>0) -> NextUp(pos=0) -> Running(pos=-1) -> Completed | Failed | TimedOut
//
// Non-terminal phases may move in any order as the server reports them;
// terminal phases are final.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseNextUp
	PhaseRunning
	PhaseCompleted
	PhaseFailed
	PhaseTimedOut
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseNextUp:
		return "next-up"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	case PhaseTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further polling may happen.
func (p Phase) Terminal() bool {
	return p >= PhaseCompleted
}

func phaseForPosition(pos int) Phase {
	switch {
	case pos > 0:
		return PhaseQueued
	case pos == 0:
		return PhaseNextUp
	default:
		return PhaseRunning
	}
}

// Update is a snapshot of a Poller after one step.
type Update struct {
	TaskID   string
	Phase    Phase
	Position int
	Images   []string
	Err      error
}

// Text is the status line for this update.
func (u Update) Text() string {
	switch u.Phase {
	case PhaseCompleted:
		return GeneratedMessage(len(u.Images))
	case PhaseFailed, PhaseTimedOut:
		return pErrors.UserMessage(u.Err)
	default:
		return QueueText(u.Position)
	}
}

// TaskChecker fetches a task's status.
type TaskChecker interface {
	CheckTask(ctx context.Context, taskID string) (*backend.TaskStatus, error)
}

// Poller drives one queued task to a terminal phase.
type Poller struct {
	mu       sync.Mutex
	client   TaskChecker
	taskID   string
	phase    Phase
	position int
	images   []string
	err      error
	started  time.Time
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithTimeout bounds how long a task may be polled. Zero disables the bound.
func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) { p.timeout = d }
}

// WithInterval sets the delay between checks.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithClock replaces time.Now (for tests).
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// NewPoller starts tracking task as returned by the 202 response.
func NewPoller(client TaskChecker, task backend.Task, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   client,
		taskID:   task.ID,
		position: task.Position,
		phase:    phaseForPosition(task.Position),
		interval: 3 * time.Second,
		timeout:  10 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.started = p.now()
	return p
}

// TaskID returns the polled task's id.
func (p *Poller) TaskID() string {
	return p.taskID
}

// Interval returns the delay between checks.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Snapshot returns the current state without polling.
func (p *Poller) Snapshot() Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Update {
	return Update{
		TaskID:   p.taskID,
		Phase:    p.phase,
		Position: p.position,
		Images:   p.images,
		Err:      p.err,
	}
}

// Check performs one status request and applies it. Once the poller is
// terminal, Check returns a KindTerminal error without a network call.
func (p *Poller) Check(ctx context.Context) (Update, error) {
	p.mu.Lock()
	if p.phase.Terminal() {
		p.mu.Unlock()
		return p.Snapshot(), pErrors.TaskTerminal(p.taskID)
	}
	if p.timeout > 0 && p.now().Sub(p.started) >= p.timeout {
		p.phase = PhaseTimedOut
		p.err = pErrors.PollTimeout(p.taskID, p.timeout)
		logger.WithTask(p.taskID).Warn("task timed out", "after", p.timeout)
		u := p.snapshotLocked()
		p.mu.Unlock()
		return u, nil
	}
	p.mu.Unlock()

	st, err := p.client.CheckTask(ctx, p.taskID)
	if err != nil {
		// A failed status check ends polling; the check itself is not retried.
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.phase.Terminal() {
			p.phase = PhaseFailed
			p.err = err
		}
		logger.WithTask(p.taskID).Warn("status check failed", "error", err)
		return p.snapshotLocked(), nil
	}
	return p.Apply(st), nil
}

// Apply folds one status response into the poller. Responses arriving after
// a terminal phase are ignored.
func (p *Poller) Apply(st *backend.TaskStatus) Update {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase.Terminal() {
		return p.snapshotLocked()
	}
	log := logger.WithTask(p.taskID)

	switch st.Status {
	case backend.StatusProcessing:
		p.position = st.Position
		p.phase = phaseForPosition(st.Position)
		log.Debug("task progress", "phase", p.phase, "position", p.position)
	case backend.StatusSuccess:
		p.phase = PhaseCompleted
		p.images = st.Images
		log.Info("task completed", "images", len(st.Images))
	default:
		p.phase = PhaseFailed
		p.err = pErrors.ServerRejected("generation.Poll", st.Message)
		log.Info("task failed", "message", st.Message)
	}
	return p.snapshotLocked()
}

// Wait polls every interval until the task is terminal or ctx ends,
// calling onUpdate after each check. It is the blocking form used outside
// the TUI.
func (p *Poller) Wait(ctx context.Context, onUpdate func(Update)) (Update, error) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return p.Snapshot(), ctx.Err()
		case <-timer.C:
		}

		u, err := p.Check(ctx)
		if err != nil {
			return u, err
		}
		if onUpdate != nil {
			onUpdate(u)
		}
		if u.Phase.Terminal() {
			return u, nil
		}
		timer.Reset(p.interval)
	}
}
