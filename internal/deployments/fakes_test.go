package deployments_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"github.com/google/uuid"
)

// memStore mirrors the forward-only writes of the SQL store.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*deployments.Deployment
	closed  bool
}

var errStoreClosed = errors.New("sql: database is closed")

// close makes every later write fail, like a closed connection pool.
func (m *memStore) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*deployments.Deployment)}
}

func (m *memStore) log(d *deployments.Deployment, msg string) {
	d.Logs = append(d.Logs, deployments.LogLine{Time: time.Now(), Message: msg})
	d.UpdatedAt = time.Now()
}

func (m *memStore) copyOf(d *deployments.Deployment) *deployments.Deployment {
	c := *d
	c.Logs = append([]deployments.LogLine(nil), d.Logs...)
	return &c
}

func (m *memStore) Create(ctx context.Context, rec deployments.NewRecord) (*deployments.Deployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errStoreClosed
	}

	now := time.Now()
	d := &deployments.Deployment{
		ID:          uuid.New(),
		AgentID:     rec.AgentID,
		OwnerID:     rec.OwnerID,
		VersionID:   rec.VersionID,
		Environment: rec.Environment,
		Resources:   rec.Limits.Resources(),
		Scaling:     rec.Scaling,
		Status:      deployments.StatusPending,
		CreatedAt:   now,
	}
	m.log(d, "deployment requested")
	m.records[d.ID] = d
	return m.copyOf(d), nil
}

func (m *memStore) Find(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.records[id]
	if !ok {
		return nil, deployments.ErrNotFound
	}
	return m.copyOf(d), nil
}

func (m *memStore) List(ctx context.Context, page pagination.PageRequest, filters deployments.Filters) (*pagination.PageResult[deployments.Deployment], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]deployments.Deployment, 0, len(m.records))
	for _, d := range m.records {
		items = append(items, *m.copyOf(d))
	}
	result := pagination.NewPageResult(items, len(items), 1, max(len(items), 1))
	return &result, nil
}

func (m *memStore) transition(id uuid.UUID, to deployments.Status) (*deployments.Deployment, error) {
	d, ok := m.records[id]
	if !ok {
		return nil, deployments.ErrNotFound
	}
	if !deployments.CanTransition(d.Status, to) {
		return nil, fmt.Errorf("%w: deployment is %s", deployments.ErrInvalidStatus, d.Status)
	}
	d.Status = to
	return d, nil
}

func (m *memStore) MarkDeploying(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errStoreClosed
	}

	d, err := m.transition(id, deployments.StatusDeploying)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	d.StartedAt = &now
	m.log(d, "deployment started")
	return m.copyOf(d), nil
}

func (m *memStore) Progress(ctx context.Context, id uuid.UUID, progress int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errStoreClosed
	}

	d, ok := m.records[id]
	if !ok {
		return deployments.ErrNotFound
	}
	if d.Status != deployments.StatusDeploying {
		return deployments.ErrInvalidStatus
	}
	d.Progress = max(d.Progress, progress)
	m.log(d, message)
	return nil
}

func (m *memStore) Complete(ctx context.Context, id uuid.UUID, status deployments.Status, message string) (*deployments.Deployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errStoreClosed
	}

	if !status.Terminal() {
		return nil, deployments.ErrInvalidStatus
	}
	d, err := m.transition(id, status)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	d.CompletedAt = &now
	if status == deployments.StatusActive {
		d.Progress = 100
		m.log(d, "deployment active")
	} else {
		d.ErrorMessage = &message
		m.log(d, "deployment failed: "+message)
	}
	return m.copyOf(d), nil
}

func (m *memStore) FailInterrupted(ctx context.Context, cutoff time.Time, message string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errStoreClosed
	}

	var n int64
	for _, d := range m.records {
		if !d.Status.Terminal() && d.CreatedAt.Before(cutoff) {
			d.Status = deployments.StatusFailed
			d.ErrorMessage = &message
			n++
		}
	}
	return n, nil
}

type agentSource map[uuid.UUID]*agents.Agent

func (s agentSource) Find(ctx context.Context, id uuid.UUID) (*agents.Agent, error) {
	a, ok := s[id]
	if !ok {
		return nil, agents.ErrNotFound
	}
	return a, nil
}

type memCheckpoints struct {
	mu     sync.Mutex
	states map[string]state.State
}

func newMemCheckpoints() *memCheckpoints {
	return &memCheckpoints{states: make(map[string]state.State)}
}

func (c *memCheckpoints) Save(st state.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[st.RunID] = st
	return nil
}

func (c *memCheckpoints) Load(runID string) (state.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[runID]
	if !ok {
		return state.State{}, fmt.Errorf("checkpoint not found: %s", runID)
	}
	return st, nil
}

func (c *memCheckpoints) Delete(runID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, runID)
	return nil
}

func (c *memCheckpoints) List() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.states))
	for id := range c.states {
		ids = append(ids, id)
	}
	return ids, nil
}

// stubProvisioner fails the named stage, or blocks in it until ctx ends when
// block is set.
type stubProvisioner struct {
	deployments.Simulator
	failStage  string
	blockStage string
}

func (p stubProvisioner) step(ctx context.Context, name string) error {
	if name == p.blockStage {
		<-ctx.Done()
		return ctx.Err()
	}
	if name == p.failStage {
		return fmt.Errorf("%s check failed", name)
	}
	return nil
}

func (p stubProvisioner) Validate(ctx context.Context, plan deployments.Plan) error {
	if err := p.step(ctx, "validate"); err != nil {
		return err
	}
	return p.Simulator.Validate(ctx, plan)
}

func (p stubProvisioner) Provision(ctx context.Context, plan deployments.Plan) (string, error) {
	if err := p.step(ctx, "provision"); err != nil {
		return "", err
	}
	return p.Simulator.Provision(ctx, plan)
}

func (p stubProvisioner) Verify(ctx context.Context, plan deployments.Plan, endpoint string) error {
	if err := p.step(ctx, "verify"); err != nil {
		return err
	}
	return p.Simulator.Verify(ctx, plan, endpoint)
}

func (p stubProvisioner) Activate(ctx context.Context, plan deployments.Plan, endpoint string) error {
	if err := p.step(ctx, "activate"); err != nil {
		return err
	}
	return p.Simulator.Activate(ctx, plan, endpoint)
}
