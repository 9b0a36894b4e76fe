package deployments_test

import (
	"context"
	"testing"
	"time"

	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/pkg/logging"
	"github.com/JaimeStill/go-agents-orchestration/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressObserver(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	d, err := store.Create(ctx, deployments.NewRecord{Environment: "staging", VersionID: "v1"})
	require.NoError(t, err)
	_, err = store.MarkDeploying(ctx, d.ID)
	require.NoError(t, err)

	plan := deployments.Plan{
		DeploymentID: d.ID,
		VersionID:    "v1",
		Environment:  "staging",
		Limits:       deployments.Limits{Millicores: 500, MemoryBytes: 512 << 20},
		Scaling:      deployments.Scaling{MinReplicas: 1, MaxReplicas: 3},
	}
	obs := deployments.NewProgressObserver(store, plan, logging.Discard())

	start := time.Now()
	nodeStart := func(node string, offset time.Duration) observability.Event {
		return observability.Event{
			Type:      observability.EventNodeStart,
			Source:    "deployment",
			Data:      map[string]any{"node": node, "iteration": 0},
			Timestamp: start.Add(offset),
		}
	}
	nodeComplete := func(node string, failed bool, offset time.Duration) observability.Event {
		return observability.Event{
			Type:      observability.EventNodeComplete,
			Source:    "deployment",
			Data:      map[string]any{"node": node, "iteration": 0, "error": failed},
			Timestamp: start.Add(offset),
		}
	}

	obs.OnEvent(ctx, nodeStart("validate", 0))
	obs.OnEvent(ctx, nodeComplete("validate", false, time.Second))
	obs.OnEvent(ctx, nodeStart("provision", time.Second))
	obs.OnEvent(ctx, nodeComplete("provision", false, 3*time.Second))
	obs.OnEvent(ctx, nodeStart("verify", 3*time.Second))
	obs.OnEvent(ctx, nodeComplete("verify", true, 4*time.Second))

	got, err := store.Find(ctx, d.ID)
	require.NoError(t, err)

	assert.Equal(t, 50, got.Progress, "failed stages do not advance progress")

	messages := make([]string, len(got.Logs))
	for i, l := range got.Logs {
		messages[i] = l.Message
	}
	assert.Equal(t, []string{
		"deployment requested",
		"deployment started",
		"validating agent configuration",
		"configuration validated (1s)",
		"provisioning resources in staging",
		"provisioned 1-3 replicas (500m cpu, 512MiB memory) (2s)",
		"running health checks",
	}, messages)
}

func TestProgressObserver_IgnoresUnknownNodes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	d, err := store.Create(ctx, deployments.NewRecord{Environment: "staging"})
	require.NoError(t, err)
	_, err = store.MarkDeploying(ctx, d.ID)
	require.NoError(t, err)

	obs := deployments.NewProgressObserver(store, deployments.Plan{DeploymentID: d.ID}, logging.Discard())
	obs.OnEvent(ctx, observability.Event{
		Type:      observability.EventNodeStart,
		Data:      map[string]any{"node": "unknown"},
		Timestamp: time.Now(),
	})

	got, err := store.Find(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.Logs, 2)
}
