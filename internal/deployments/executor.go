package deployments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/metrics"
	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/lifecycle"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"github.com/google/uuid"
)

// AgentSource loads the agent a deployment is made from.
type AgentSource interface {
	Find(ctx context.Context, id uuid.UUID) (*agents.Agent, error)
}

// Options configures the executor.
type Options struct {
	Store       Store
	Agents      AgentSource
	Provisioner Provisioner
	Checkpoints state.CheckpointStore
	Metrics     *metrics.Metrics

	Environments  []string
	Timeout       time.Duration
	MaxConcurrent int
}

type executor struct {
	store       Store
	agents      AgentSource
	provisioner Provisioner
	checkpoints state.CheckpointStore
	metrics     *metrics.Metrics
	logger      *slog.Logger

	environments []string
	timeout      time.Duration
	slots        chan struct{}

	base       context.Context
	startedAt  time.Time
	activeRuns map[uuid.UUID]context.CancelCauseFunc
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

// New creates the deployment System. Pipelines run on contexts derived from
// the coordinator's context, so shutdown interrupts them.
func New(opts Options, lc *lifecycle.Coordinator, logger *slog.Logger) System {
	e := &executor{
		store:        opts.Store,
		agents:       opts.Agents,
		provisioner:  opts.Provisioner,
		checkpoints:  opts.Checkpoints,
		metrics:      opts.Metrics,
		logger:       logger.With("system", "deployments"),
		environments: opts.Environments,
		timeout:      opts.Timeout,
		slots:        make(chan struct{}, max(opts.MaxConcurrent, 1)),
		base:         lc.Context(),
		startedAt:    time.Now(),
		activeRuns:   make(map[uuid.UUID]context.CancelCauseFunc),
	}

	lc.OnStartup(e.recoverInterrupted)
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		e.wg.Wait()
		e.logger.Info("deployment pipelines stopped")
	})

	return e
}

func (e *executor) Find(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	return e.store.Find(ctx, id)
}

func (e *executor) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Deployment], error) {
	return e.store.List(ctx, page, filters)
}

func (e *executor) Logs(ctx context.Context, id uuid.UUID) ([]LogLine, error) {
	d, err := e.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Logs, nil
}

func (e *executor) Start(ctx context.Context, cmd StartCommand) (*Deployment, error) {
	s, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	limits, err := Normalize(&cmd, e.environments)
	if err != nil {
		return nil, err
	}

	agent, err := e.agents.Find(ctx, cmd.AgentID)
	if err != nil {
		return nil, err
	}
	if agent.OwnerID != s.UserID {
		return nil, agents.ErrNotFound
	}
	if err := wizard.Validate(agent.Draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentNotReady, err)
	}

	select {
	case e.slots <- struct{}{}:
	default:
		return nil, ErrCapacity
	}

	d, err := e.accept(ctx, s, agent, cmd, limits)
	if err != nil {
		<-e.slots
		return nil, err
	}

	plan := Plan{
		DeploymentID: d.ID,
		AgentID:      d.AgentID,
		VersionID:    d.VersionID,
		Environment:  d.Environment,
		Limits:       limits,
		Scaling:      d.Scaling,
		Draft:        agent.Draft,
	}

	runCtx, cancel := context.WithCancelCause(e.base)
	e.trackRun(d.ID, cancel)
	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		defer func() { <-e.slots }()
		defer e.untrackRun(d.ID)
		defer cancel(nil)

		e.run(runCtx, plan)
	}()

	e.metrics.DeploymentStarted(d.Environment)
	return d, nil
}

func (e *executor) accept(ctx context.Context, s session.Session, agent *agents.Agent, cmd StartCommand, limits Limits) (*Deployment, error) {
	version := cmd.VersionID
	if version == "" {
		version = versionFor(agent)
	}

	snapshot, err := json.Marshal(agent.Draft)
	if err != nil {
		return nil, fmt.Errorf("snapshot agent: %w", err)
	}

	d, err := e.store.Create(ctx, NewRecord{
		AgentID:     agent.ID,
		OwnerID:     s.UserID,
		VersionID:   version,
		Environment: cmd.Environment,
		Limits:      limits,
		Scaling:     cmd.Scaling,
		Snapshot:    snapshot,
	})
	if err != nil {
		return nil, err
	}

	return e.store.MarkDeploying(ctx, d.ID)
}

func (e *executor) run(ctx context.Context, plan Plan) {
	started := time.Now()
	logger := e.logger.With("deployment_id", plan.DeploymentID)

	ctx, stop := context.WithTimeoutCause(ctx, e.timeout, fmt.Errorf("%w after %s", errTimedOut, e.timeout))
	defer stop()

	observer := NewProgressObserver(e.store, plan, e.logger)

	status, reason := StatusActive, ""
	graph, err := newPipeline(plan, e.provisioner, observer, e.checkpoints)
	if err == nil {
		_, err = graph.Execute(ctx, initialState(plan))
	}
	if err != nil {
		status, reason = StatusFailed, e.failureReason(ctx, err)
	}

	finalize, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, err := e.store.Complete(finalize, plan.DeploymentID, status, reason); err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			logger.Debug("deployment already terminal", "status", status)
			return
		}
		logger.Error("failed to finalize deployment", "error", err)
		return
	}

	e.metrics.DeploymentFinished(plan.Environment, string(status), time.Since(started))
	logger.Info("deployment finished", "status", status, "reason", reason, "elapsed", time.Since(started))
}

func (e *executor) failureReason(ctx context.Context, err error) string {
	if ctx.Err() == nil {
		return err.Error()
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, context.Canceled) && e.base.Err() != nil {
		return errInterrupted.Error()
	}
	return cause.Error()
}

// Cancel fails an in-flight deployment. The record is written before the
// pipeline stops, so the caller sees the terminal state immediately.
func (e *executor) Cancel(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	s, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	d, err := e.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != s.UserID {
		return nil, ErrNotFound
	}
	if d.Status.Terminal() {
		return nil, fmt.Errorf("%w: deployment is %s", ErrInvalidStatus, d.Status)
	}

	d, err = e.store.Complete(ctx, id, StatusFailed, errCancelled.Error())
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	cancel, active := e.activeRuns[id]
	e.mu.RUnlock()
	if active {
		cancel(errCancelled)
	}

	e.metrics.DeploymentFinished(d.Environment, string(StatusFailed), time.Since(d.CreatedAt))
	e.logger.Info("deployment cancelled", "id", id)
	return d, nil
}

// recoverInterrupted fails records left non-terminal by a previous process.
func (e *executor) recoverInterrupted() {
	ctx, cancel := context.WithTimeout(e.base, 30*time.Second)
	defer cancel()

	n, err := e.store.FailInterrupted(ctx, e.startedAt, errInterrupted.Error())
	if err != nil {
		e.logger.Error("failed to recover interrupted deployments", "error", err)
		return
	}
	if n > 0 {
		e.logger.Warn("failed interrupted deployments", "count", n)
	}
}

func (e *executor) trackRun(id uuid.UUID, cancel context.CancelCauseFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeRuns[id] = cancel
}

func (e *executor) untrackRun(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.activeRuns, id)
}

func versionFor(a *agents.Agent) string {
	return "v" + a.UpdatedAt.UTC().Format("20060102.150405")
}
