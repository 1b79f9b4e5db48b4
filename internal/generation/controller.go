// Package generation runs the image generation request lifecycle.
//
// A submission either completes synchronously (the server answers with the
// images) or is queued (HTTP 202 with a task id), in which case a Poller
// follows the task until it completes, fails or times out. The Controller
// allows one submission in flight at a time; the flag is held from Submit
// until the synchronous answer arrives or, for queued work, until Finish is
// called with the poller's terminal update.
package generation

import (
	"context"
	"sync"
	"time"

	"github.com/zhubert/imagine/internal/backend"
	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
	"github.com/zhubert/imagine/internal/session"
)

// ErrBusy is returned by Submit while another submission is in flight.
var ErrBusy = pErrors.E(pErrors.Op("generation.Submit"), pErrors.KindInvalid, "A generation is already in progress.")

// Backend is the subset of the backend client used for generation.
type Backend interface {
	Generate(ctx context.Context, req backend.GenerateRequest) (*backend.GenerateResult, error)
	TaskChecker
}

// Outcome is an accepted submission.
type Outcome struct {
	// Images is set on the synchronous path.
	Images []string
	// Poller is set on the queued path; it has not been checked yet.
	Poller *Poller
}

// Queued reports whether the outcome needs polling.
func (o *Outcome) Queued() bool {
	return o != nil && o.Poller != nil
}

// Controller submits generation requests for one session.
type Controller struct {
	mu       sync.Mutex
	client   Backend
	store    *session.Store
	inFlight bool
	last     *Request

	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewController creates a Controller that records results into store.
// A zero pollTimeout polls without a deadline.
func NewController(client Backend, store *session.Store, pollInterval, pollTimeout time.Duration) *Controller {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Controller{
		client:       client,
		store:        store,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// NewRequest builds a request from prompt and the session's current model,
// references and save preference.
func (c *Controller) NewRequest(prompt string) Request {
	st := c.store.Snapshot()
	req := NewRequest(prompt)
	req.ModelName = st.ActiveModel
	req.SavePreference = st.SavePreference
	req.AspectRatio = session.AspectRatioAt(st.AspectRatioIndex)
	if c.store.Catalog().AcceptsReferences(st.ActiveModel) {
		req.ReferenceImages = st.ReferenceImages
	}
	return req
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastRequest returns the most recent submitted request, if any.
func (c *Controller) LastRequest() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Request{}, false
	}
	return *c.last, true
}

// Submit validates req and sends it. Validation failures and ErrBusy make
// no network call. On the synchronous path the results are stored before
// Submit returns; on the queued path the caller drives Outcome.Poller and
// must call Finish with its terminal update.
func (c *Controller) Submit(ctx context.Context, req Request) (*Outcome, error) {
	log := logger.WithComponent("generation")

	if err := req.Validate(c.store.Catalog()); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.inFlight = true
	saved := req
	c.last = &saved
	c.mu.Unlock()

	log.Info("submitting", "model", req.ModelName, "images", req.ImageCount,
		"aspect", req.AspectRatio, "references", len(req.ReferenceImages))

	res, err := c.client.Generate(ctx, req.toBackend())
	if err != nil {
		c.release()
		log.Warn("generation failed", "error", err)
		return nil, err
	}

	if res.Queued() {
		log.Info("generation queued", "task", res.Task.ID, "position", res.Task.Position)
		return &Outcome{Poller: NewPoller(c.client, *res.Task,
			WithInterval(c.pollInterval), WithTimeout(c.pollTimeout))}, nil
	}

	c.store.SetResults(res.Images, req.SavePreference)
	c.release()
	log.Info("generation completed", "images", len(res.Images))
	return &Outcome{Images: res.Images}, nil
}

// Finish ends a queued submission. u must be terminal; results of a
// completed task are stored.
func (c *Controller) Finish(u Update) {
	if !u.Phase.Terminal() {
		return
	}
	if u.Phase == PhaseCompleted {
		save := false
		if last, ok := c.LastRequest(); ok {
			save = last.SavePreference
		}
		c.store.SetResults(u.Images, save)
	}
	c.release()
}

// Retry resubmits the last request.
func (c *Controller) Retry(ctx context.Context) (*Outcome, error) {
	last, ok := c.LastRequest()
	if !ok {
		return nil, pErrors.E(pErrors.Op("generation.Retry"), pErrors.KindNotFound, "Nothing to retry yet.")
	}
	return c.Submit(ctx, last)
}

// Run submits req and, if it is queued, blocks until the task is terminal.
// onUpdate sees every poll step. It is the headless form of the lifecycle.
func (c *Controller) Run(ctx context.Context, req Request, onUpdate func(Update)) ([]string, error) {
	out, err := c.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if !out.Queued() {
		return out.Images, nil
	}
	if onUpdate != nil {
		onUpdate(out.Poller.Snapshot())
	}

	u, err := out.Poller.Wait(ctx, onUpdate)
	if err != nil {
		c.release()
		return nil, err
	}
	c.Finish(u)
	if u.Phase != PhaseCompleted {
		return nil, u.Err
	}
	return u.Images, nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}
