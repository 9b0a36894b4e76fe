package wizard

import (
	"context"
	"sync"

	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/google/uuid"
)

// Store persists drafts. A uuid.Nil id creates a new record and returns its
// generated id; any other id updates that record in place. The caller's
// session travels on ctx.
type Store interface {
	SaveDraft(ctx context.Context, id uuid.UUID, d Draft) (uuid.UUID, error)
	Submit(ctx context.Context, id uuid.UUID, d Draft) (uuid.UUID, error)
}

// Controller tracks the active step and the accumulated draft. It is safe for
// concurrent use; store calls run without holding the lock, so overlapping
// saves are allowed and the last response wins.
type Controller struct {
	store   Store
	session session.Session

	mu      sync.Mutex
	current int
	id      uuid.UUID
	draft   Draft
}

// Option configures a Controller.
type Option func(*Controller)

// WithDraft starts the controller from an existing record.
func WithDraft(id uuid.UUID, d Draft) Option {
	return func(c *Controller) {
		c.id = id
		c.draft = d.Clone()
	}
}

// NewController creates a controller at step zero for the given session.
func NewController(store Store, s session.Session, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		session: s,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the active step index.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ID returns the persisted record id, or uuid.Nil before the first save.
func (c *Controller) ID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Draft returns a copy of the accumulated payload.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Steps returns the step list with completion flags for the current draft.
func (c *Controller) Steps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Steps(c.draft)
}

func (c *Controller) SetBasicInfo(b BasicInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.BasicInfo = b
}

func (c *Controller) SetRuntime(r Runtime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Runtime = r
}

func (c *Controller) SetIntegration(i Integration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Integration = i
}

func (c *Controller) SetTestCases(tcs []TestCase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.TestCases = cloneSlice(tcs)
}

func (c *Controller) AddTestCase(tc TestCase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.TestCases = append(c.draft.TestCases, tc)
}

// CanProceed evaluates the gate of the active step. The deployment step's
// gate always passes, though Advance has no step to move to from there.
func (c *Controller) CanProceed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StepComplete(c.current, c.draft)
}

func (c *Controller) canAdvance() bool {
	return c.current < StepCount-1 && StepComplete(c.current, c.draft)
}

// Advance moves to the next step when the active gate passes and a next step
// exists. A blocked advance returns false with no error and performs no store call. Entering
// the last step without a record id saves a draft first; if that save fails
// the step does not change and the error is returned.
func (c *Controller) Advance(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.canAdvance() {
		c.mu.Unlock()
		return false, nil
	}

	from := c.current
	next := from + 1

	if next == StepCount-1 && c.id == uuid.Nil {
		snapshot := c.draft.Clone()
		c.mu.Unlock()

		id, err := c.store.SaveDraft(c.context(ctx), uuid.Nil, snapshot)
		if err != nil {
			return false, err
		}

		c.mu.Lock()
		c.id = id
	}

	if c.current == from {
		c.current = next
	}
	c.mu.Unlock()
	return true, nil
}

// Retreat moves to the previous step unless already at step zero.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == 0 {
		return false
	}
	c.current--
	return true
}

// SaveDraft persists the draft with status draft, creating the record on the
// first call and updating it afterwards.
func (c *Controller) SaveDraft(ctx context.Context) (uuid.UUID, error) {
	return c.persist(ctx, c.store.SaveDraft)
}

// Submit persists the draft with status pending review. Repeated submits
// update the same record.
func (c *Controller) Submit(ctx context.Context) (uuid.UUID, error) {
	return c.persist(ctx, c.store.Submit)
}

func (c *Controller) persist(ctx context.Context, write func(context.Context, uuid.UUID, Draft) (uuid.UUID, error)) (uuid.UUID, error) {
	c.mu.Lock()
	id := c.id
	snapshot := c.draft.Clone()
	c.mu.Unlock()

	saved, err := write(c.context(ctx), id, snapshot)
	if err != nil {
		return uuid.Nil, err
	}

	c.mu.Lock()
	c.id = saved
	c.mu.Unlock()
	return saved, nil
}

func (c *Controller) context(ctx context.Context) context.Context {
	return session.WithSession(ctx, c.session)
}
