// Package controller orchestrates the gated enrollment actions and the
// roster reconciliation that follows them.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/aparkhill/activity-enrollment-client/internal/client"
	"github.com/aparkhill/activity-enrollment-client/internal/model"
	"github.com/aparkhill/activity-enrollment-client/internal/notify"
	"github.com/aparkhill/activity-enrollment-client/internal/session"
	"github.com/aparkhill/activity-enrollment-client/internal/view"
)

// State is the phase of one mutating action.
type State int

// Action states, in the order an action can visit them.
const (
	StateIdle State = iota
	StateSessionChecking
	StateDenied
	StateSubmitting
	StateSucceeded
	StateFailed
)

// String implements fmt.Stringer for test output.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSessionChecking:
		return "session-checking"
	case StateDenied:
		return "denied"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// API is the slice of the server client the controller needs.
type API interface {
	Activities(ctx context.Context) (model.Snapshot, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// action holds the per-operation wording and the request to issue.
type action struct {
	denied    string
	transport string
	submit    func(ctx context.Context, api API, activity, email string) (string, error)
}

var signupAction = action{
	denied:    "Please log in to sign up.",
	transport: "Failed to sign up. Please try again.",
	submit: func(ctx context.Context, api API, activity, email string) (string, error) {
		return api.Signup(ctx, activity, email)
	},
}

var unregisterAction = action{
	denied:    "Please log in to unregister.",
	transport: "Failed to unregister. Please try again.",
	submit: func(ctx context.Context, api API, activity, email string) (string, error) {
		return api.Unregister(ctx, activity, email)
	},
}

// Controller gates signup/unregister on a live session check, issues the
// mutation, reports the outcome on the banner, and re-synchronizes the
// roster after a success. Actions may run concurrently; roster refreshes
// are sequenced so a stale response never overwrites a newer render.
type Controller struct {
	api      API
	sessions *session.Manager
	banner   *notify.Banner

	mu         sync.Mutex
	issuedSeq  uint64
	appliedSeq uint64
	page       view.Page
	onRender   func(view.Page)
	onState    func(State)
}

// New constructs a Controller.
func New(api API, sessions *session.Manager, banner *notify.Banner) *Controller {
	return &Controller{api: api, sessions: sessions, banner: banner}
}

// OnRender registers the callback invoked with every newly applied page.
// The callback must not call back into the Controller.
func (c *Controller) OnRender(fn func(view.Page)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRender = fn
}

// OnState registers an observer for action state transitions.
func (c *Controller) OnState(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// Start performs the initial population: roster first, then the
// identity probe, matching the page-load order of the reference client.
func (c *Controller) Start(ctx context.Context) {
	c.RefreshRoster(ctx)
	c.sessions.Refresh(ctx)
}

// Page returns the last applied render.
func (c *Controller) Page() view.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Signup enrolls email in the named activity, gated on a live session.
func (c *Controller) Signup(ctx context.Context, activity, email string) {
	c.run(ctx, signupAction, activity, email)
}

// Unregister withdraws email from the named activity, gated on a live
// session.
func (c *Controller) Unregister(ctx context.Context, activity, email string) {
	c.run(ctx, unregisterAction, activity, email)
}

// run walks one action through the state machine:
// SessionChecking → (Denied | Submitting) → (Succeeded | Failed) → Idle.
func (c *Controller) run(ctx context.Context, a action, activity, email string) {
	c.transition(StateSessionChecking)

	// The session gate re-queries the server every time; the cached
	// identity is never trusted for a mutation. The check completes,
	// and updates the identity indicator, before any request is sent.
	if sess := c.sessions.Refresh(ctx); !sess.LoggedIn() {
		c.transition(StateDenied)
		c.banner.Show(a.denied, model.KindError)
		c.transition(StateIdle)
		return
	}

	c.transition(StateSubmitting)
	msg, err := a.submit(ctx, c.api, activity, email)
	if err != nil {
		c.transition(StateFailed)
		c.banner.Show(failureText(err, a.transport), model.KindError)
		c.transition(StateIdle)
		return
	}

	c.transition(StateSucceeded)
	c.banner.Show(msg, model.KindSuccess)
	// Exactly one authoritative re-fetch per successful mutation.
	c.RefreshRoster(ctx)
	c.transition(StateIdle)
}

// RefreshRoster fetches the activity collection and applies a full
// re-render. Refreshes carry sequence numbers: a response belonging to
// an earlier-issued refresh is discarded once a later one has rendered,
// so out-of-order completions cannot roll the display back.
func (c *Controller) RefreshRoster(ctx context.Context) {
	c.mu.Lock()
	c.issuedSeq++
	seq := c.issuedSeq
	c.mu.Unlock()

	snap, err := c.api.Activities(ctx)

	var page view.Page
	if err != nil {
		page = view.RenderError()
	} else {
		page = view.Render(snap)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.appliedSeq {
		// A newer refresh already rendered; this response is stale.
		return
	}
	c.appliedSeq = seq
	c.page = page
	if c.onRender != nil {
		c.onRender(page)
	}
}

// transition notifies the state observer when one is registered.
func (c *Controller) transition(s State) {
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// failureText picks the error banner text: the server's detail when
// present, "An error occurred" for a detail-less rejection, and the
// action's try-again text when no response arrived at all.
func failureText(err error, transport string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return "An error occurred"
	}
	return transport
}
