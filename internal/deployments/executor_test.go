package deployments_test

import (
	"context"
	"testing"
	"time"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/lifecycle"
	"github.com/JaimeStill/agent-market/pkg/logging"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = session.Session{UserID: uuid.MustParse("4c1f0a62-8d7e-4f35-a1b9-3e2d5c6f7a80")}

func readyAgent() *agents.Agent {
	return &agents.Agent{
		ID:      uuid.New(),
		OwnerID: owner.UserID,
		Status:  agents.StatusPendingReview,
		Draft: wizard.Draft{
			BasicInfo: wizard.BasicInfo{Title: "Support Bot", Description: "Helps users", Category: "cat-1"},
			Runtime:   wizard.Runtime{Model: "gpt-4o", SystemPrompt: "Be helpful.", Temperature: 0.3},
			TestCases: []wizard.TestCase{{Name: "T1", Input: "hi"}},
		},
		UpdatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

type harness struct {
	sys   deployments.System
	store *memStore
	agent *agents.Agent
	lc    *lifecycle.Coordinator
}

func newHarness(t *testing.T, prov deployments.Provisioner, mutate func(*deployments.Options)) *harness {
	t.Helper()

	agent := readyAgent()
	store := newMemStore()
	lc := lifecycle.New()

	opts := deployments.Options{
		Store:         store,
		Agents:        agentSource{agent.ID: agent},
		Provisioner:   prov,
		Checkpoints:   newMemCheckpoints(),
		Environments:  environments,
		Timeout:       5 * time.Second,
		MaxConcurrent: 4,
	}
	if mutate != nil {
		mutate(&opts)
	}

	sys := deployments.New(opts, lc, logging.Discard())
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	return &harness{sys: sys, store: store, agent: agent, lc: lc}
}

func ownerCtx() context.Context {
	return session.WithSession(context.Background(), owner)
}

func (h *harness) waitTerminal(t *testing.T, id uuid.UUID) *deployments.Deployment {
	t.Helper()

	var d *deployments.Deployment
	require.Eventually(t, func() bool {
		var err error
		d, err = h.sys.Find(context.Background(), id)
		return err == nil && d.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return d
}

func TestStart_ReachesActive(t *testing.T) {
	h := newHarness(t, deployments.Simulator{}, nil)

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "production"})
	require.NoError(t, err)

	assert.Equal(t, deployments.StatusDeploying, d.Status)
	assert.Equal(t, "v20261001.120000", d.VersionID)
	assert.NotNil(t, d.StartedAt)

	final := h.waitTerminal(t, d.ID)
	assert.Equal(t, deployments.StatusActive, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Nil(t, final.ErrorMessage)
	assert.Equal(t, "deployment active", final.Logs[len(final.Logs)-1].Message)
}

func TestStart_StageFailure(t *testing.T) {
	h := newHarness(t, stubProvisioner{failStage: "verify"}, nil)

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, VersionID: "v7", Environment: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "v7", d.VersionID)

	final := h.waitTerminal(t, d.ID)
	assert.Equal(t, deployments.StatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Contains(t, *final.ErrorMessage, "verify check failed")
	assert.Less(t, final.Progress, 100)
}

func TestStart_Timeout(t *testing.T) {
	h := newHarness(t, stubProvisioner{blockStage: "provision"}, func(o *deployments.Options) {
		o.Timeout = 50 * time.Millisecond
	})

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "development"})
	require.NoError(t, err)

	final := h.waitTerminal(t, d.ID)
	assert.Equal(t, deployments.StatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Contains(t, *final.ErrorMessage, "timed out")
}

func TestCancel(t *testing.T) {
	h := newHarness(t, stubProvisioner{blockStage: "provision"}, nil)

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "development"})
	require.NoError(t, err)

	cancelled, err := h.sys.Cancel(ownerCtx(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, deployments.StatusFailed, cancelled.Status)
	require.NotNil(t, cancelled.ErrorMessage)
	assert.Equal(t, "deployment cancelled", *cancelled.ErrorMessage)

	_, err = h.sys.Cancel(ownerCtx(), d.ID)
	assert.ErrorIs(t, err, deployments.ErrInvalidStatus)

	time.Sleep(50 * time.Millisecond)
	final, err := h.sys.Find(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, deployments.StatusFailed, final.Status)
	assert.Equal(t, "deployment cancelled", *final.ErrorMessage)
}

func TestCancel_OtherOwner(t *testing.T) {
	h := newHarness(t, stubProvisioner{blockStage: "provision"}, nil)

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "development"})
	require.NoError(t, err)

	stranger := session.WithSession(context.Background(), session.Session{UserID: uuid.New()})
	_, err = h.sys.Cancel(stranger, d.ID)
	assert.ErrorIs(t, err, deployments.ErrNotFound)
}

func TestStart_Rejections(t *testing.T) {
	incomplete := readyAgent()
	incomplete.TestCases = nil

	h := newHarness(t, deployments.Simulator{}, func(o *deployments.Options) {
		o.Agents.(agentSource)[incomplete.ID] = incomplete
	})

	_, err := h.sys.Start(context.Background(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "staging"})
	assert.ErrorIs(t, err, session.ErrUnauthenticated)

	_, err = h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "qa"})
	assert.ErrorIs(t, err, deployments.ErrInvalidRequest)

	_, err = h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: uuid.New(), Environment: "staging"})
	assert.ErrorIs(t, err, agents.ErrNotFound)

	_, err = h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: incomplete.ID, Environment: "staging"})
	assert.ErrorIs(t, err, deployments.ErrAgentNotReady)

	stranger := session.WithSession(context.Background(), session.Session{UserID: uuid.New()})
	_, err = h.sys.Start(stranger, deployments.StartCommand{AgentID: h.agent.ID, Environment: "staging"})
	assert.ErrorIs(t, err, agents.ErrNotFound)

	page, err := h.sys.List(context.Background(), pagination.PageRequest{}, deployments.Filters{})
	require.NoError(t, err)
	assert.Empty(t, page.Data, "rejected starts create no records")
}

func TestStart_Capacity(t *testing.T) {
	h := newHarness(t, stubProvisioner{blockStage: "provision"}, func(o *deployments.Options) {
		o.MaxConcurrent = 1
	})

	first, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "staging"})
	require.NoError(t, err)

	_, err = h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "staging"})
	assert.ErrorIs(t, err, deployments.ErrCapacity)

	_, err = h.sys.Cancel(ownerCtx(), first.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "staging"})
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestShutdown_FailsInFlight(t *testing.T) {
	h := newHarness(t, stubProvisioner{blockStage: "verify"}, nil)

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "staging"})
	require.NoError(t, err)

	require.NoError(t, h.lc.Shutdown(5*time.Second))

	final, err := h.store.Find(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, deployments.StatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Equal(t, "deployment interrupted by service shutdown", *final.ErrorMessage)
}

func TestShutdown_FailsInFlightBeforeStoreCloses(t *testing.T) {
	h := newHarness(t, stubProvisioner{blockStage: "provision"}, nil)
	h.lc.OnRelease(h.store.close)

	d, err := h.sys.Start(ownerCtx(), deployments.StartCommand{AgentID: h.agent.ID, Environment: "production"})
	require.NoError(t, err)

	require.NoError(t, h.lc.Shutdown(5*time.Second))

	final, err := h.store.Find(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, deployments.StatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Equal(t, "deployment interrupted by service shutdown", *final.ErrorMessage)

	_, err = h.store.Complete(context.Background(), d.ID, deployments.StatusFailed, "late")
	assert.ErrorIs(t, err, errStoreClosed)
}
