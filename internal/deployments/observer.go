package deployments

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/agent-market/pkg/decode"
	"github.com/JaimeStill/go-agents-orchestration/pkg/observability"
)

// NodeStartData is the payload of an EventNodeStart event.
type NodeStartData struct {
	Node      string `json:"node"`
	Iteration int    `json:"iteration"`
}

// NodeCompleteData is the payload of an EventNodeComplete event.
type NodeCompleteData struct {
	Node      string `json:"node"`
	Iteration int    `json:"iteration"`
	Error     bool   `json:"error"`
}

// EdgeTransitionData is the payload of an EventEdgeTransition event.
type EdgeTransitionData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ProgressObserver implements observability.Observer for one deployment. It
// turns stage start and completion events into progress and log writes on
// the deployment record.
type ProgressObserver struct {
	store      Store
	plan       Plan
	logger     *slog.Logger
	mu         sync.Mutex
	startTimes map[string]time.Time
}

func NewProgressObserver(store Store, plan Plan, logger *slog.Logger) *ProgressObserver {
	return &ProgressObserver{
		store:      store,
		plan:       plan,
		logger:     logger.With("deployment_id", plan.DeploymentID),
		startTimes: make(map[string]time.Time),
	}
}

func (o *ProgressObserver) OnEvent(ctx context.Context, event observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.Type {
	case observability.EventNodeStart:
		o.handleNodeStart(ctx, event)
	case observability.EventNodeComplete:
		o.handleNodeComplete(ctx, event)
	case observability.EventEdgeTransition:
		data, err := decode.FromMap[EdgeTransitionData](event.Data)
		if err == nil {
			o.logger.Debug("stage transition", "from", data.From, "to", data.To)
		}
	default:
		o.logger.Debug("unhandled event", "type", event.Type, "source", event.Source)
	}
}

func (o *ProgressObserver) handleNodeStart(ctx context.Context, event observability.Event) {
	data, err := decode.FromMap[NodeStartData](event.Data)
	if err != nil {
		o.logger.Error("failed to decode node start data", "error", err)
		return
	}

	st, ok := stageByName(data.Node)
	if !ok {
		return
	}

	o.startTimes[stageKey(data.Node, data.Iteration)] = event.Timestamp
	o.write(ctx, 0, st.started(o.plan))
}

func (o *ProgressObserver) handleNodeComplete(ctx context.Context, event observability.Event) {
	data, err := decode.FromMap[NodeCompleteData](event.Data)
	if err != nil {
		o.logger.Error("failed to decode node complete data", "error", err)
		return
	}

	st, ok := stageByName(data.Node)
	if !ok {
		return
	}

	var elapsed time.Duration
	key := stageKey(data.Node, data.Iteration)
	if started, ok := o.startTimes[key]; ok {
		elapsed = event.Timestamp.Sub(started).Round(time.Millisecond)
		delete(o.startTimes, key)
	}

	if data.Error {
		o.logger.Warn("stage failed", "stage", st.name, "elapsed", elapsed)
		return
	}

	o.write(ctx, st.progress, fmt.Sprintf("%s (%s)", st.finished(o.plan), elapsed))
}

func (o *ProgressObserver) write(ctx context.Context, progress int, message string) {
	if err := o.store.Progress(ctx, o.plan.DeploymentID, progress, message); err != nil {
		o.logger.Error("failed to record progress", "error", err, "progress", progress)
	}
}

func stageKey(node string, iteration int) string {
	return fmt.Sprintf("%s:%d", node, iteration)
}
