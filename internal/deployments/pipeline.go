package deployments

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/observability"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"github.com/google/uuid"
)

// Plan is everything a pipeline run needs about the deployment.
type Plan struct {
	DeploymentID uuid.UUID    `json:"deployment_id"`
	AgentID      uuid.UUID    `json:"agent_id"`
	VersionID    string       `json:"version_id"`
	Environment  string       `json:"environment"`
	Limits       Limits       `json:"limits"`
	Scaling      Scaling      `json:"scaling"`
	Draft        wizard.Draft `json:"draft"`
}

// Provisioner performs the infrastructure side of each pipeline stage.
type Provisioner interface {
	Validate(ctx context.Context, p Plan) error
	Provision(ctx context.Context, p Plan) (endpoint string, err error)
	Verify(ctx context.Context, p Plan, endpoint string) error
	Activate(ctx context.Context, p Plan, endpoint string) error
}

type stage struct {
	name     string
	progress int
	started  func(Plan) string
	finished func(Plan) string
}

// stages run in order; progress is the record's progress once the stage completes.
var stages = []stage{
	{
		name:     "validate",
		progress: 25,
		started:  func(Plan) string { return "validating agent configuration" },
		finished: func(Plan) string { return "configuration validated" },
	},
	{
		name:     "provision",
		progress: 50,
		started: func(p Plan) string {
			return fmt.Sprintf("provisioning resources in %s", p.Environment)
		},
		finished: func(p Plan) string {
			r := p.Limits.Resources()
			return fmt.Sprintf("provisioned %d-%d replicas (%s cpu, %s memory)",
				p.Scaling.MinReplicas, p.Scaling.MaxReplicas, r.CPU, r.Memory)
		},
	},
	{
		name:     "verify",
		progress: 75,
		started:  func(Plan) string { return "running health checks" },
		finished: func(Plan) string { return "health checks passed" },
	},
	{
		name:     "activate",
		progress: 95,
		started: func(p Plan) string {
			return fmt.Sprintf("routing traffic to version %s", p.VersionID)
		},
		finished: func(p Plan) string {
			return fmt.Sprintf("version %s serving traffic", p.VersionID)
		},
	},
}

func stageByName(name string) (stage, bool) {
	for _, s := range stages {
		if s.name == name {
			return s, true
		}
	}
	return stage{}, false
}

const endpointKey = "endpoint"

// newPipeline builds the deployment graph for p.
func newPipeline(p Plan, prov Provisioner, observer observability.Observer, checkpoints state.CheckpointStore) (state.StateGraph, error) {
	cfg := config.DefaultGraphConfig("deployment")
	cfg.Checkpoint.Interval = 1
	cfg.Checkpoint.Preserve = true

	graph, err := state.NewGraphWithDeps(cfg, observer, checkpoints)
	if err != nil {
		return nil, err
	}

	nodes := map[string]state.StateNode{
		"validate": state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
			if err := prov.Validate(ctx, p); err != nil {
				return s, fmt.Errorf("validate: %w", err)
			}
			return s, nil
		}),
		"provision": state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
			endpoint, err := prov.Provision(ctx, p)
			if err != nil {
				return s, fmt.Errorf("provision: %w", err)
			}
			return s.Set(endpointKey, endpoint), nil
		}),
		"verify": state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
			if err := prov.Verify(ctx, p, endpointOf(s)); err != nil {
				return s, fmt.Errorf("verify: %w", err)
			}
			return s, nil
		}),
		"activate": state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
			if err := prov.Activate(ctx, p, endpointOf(s)); err != nil {
				return s, fmt.Errorf("activate: %w", err)
			}
			return s, nil
		}),
	}

	for i, st := range stages {
		if err := graph.AddNode(st.name, nodes[st.name]); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := graph.AddEdge(stages[i-1].name, st.name, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.SetEntryPoint(stages[0].name); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint(stages[len(stages)-1].name); err != nil {
		return nil, err
	}

	return graph, nil
}

// initialState seeds the graph state with the plan identifiers.
func initialState(p Plan) state.State {
	s := state.New(nil)
	s = s.Set("deployment_id", p.DeploymentID.String())
	s = s.Set("agent_id", p.AgentID.String())
	s = s.Set("version_id", p.VersionID)
	s = s.Set("environment", p.Environment)
	s.RunID = p.DeploymentID.String()
	return s
}

func endpointOf(s state.State) string {
	v, _ := s.Get(endpointKey)
	endpoint, _ := v.(string)
	return endpoint
}

// Simulator is the built-in Provisioner. It has no infrastructure behind it:
// each stage re-checks the plan and takes Delay to complete.
type Simulator struct {
	Delay time.Duration
}

func (sim Simulator) Validate(ctx context.Context, p Plan) error {
	if err := wizard.Validate(p.Draft); err != nil {
		return err
	}
	if err := agents.ValidateDraft(p.Draft); err != nil {
		return err
	}
	return sim.wait(ctx)
}

func (sim Simulator) Provision(ctx context.Context, p Plan) (string, error) {
	if err := sim.wait(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.agents.internal/%s/%s", p.Environment, p.AgentID, p.VersionID), nil
}

func (sim Simulator) Verify(ctx context.Context, p Plan, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("no endpoint provisioned")
	}
	return sim.wait(ctx)
}

func (sim Simulator) Activate(ctx context.Context, p Plan, endpoint string) error {
	return sim.wait(ctx)
}

func (sim Simulator) wait(ctx context.Context) error {
	if sim.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(sim.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
