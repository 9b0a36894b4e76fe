package api

import (
	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/config"
	"github.com/JaimeStill/agent-market/internal/deployments"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Agents      agents.System
	Deployments deployments.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()

	agentsSys := agents.New(
		db,
		runtime.Logger,
		runtime.Pagination,
		runtime.Metrics,
	)

	deploymentsSys := deployments.New(
		deployments.Options{
			Store:         deployments.NewStore(db, runtime.Logger, runtime.Pagination),
			Agents:        agentsSys,
			Provisioner:   deployments.Simulator{Delay: cfg.Deployments.StageDelayDuration()},
			Checkpoints:   deployments.NewCheckpointStore(db, runtime.Logger),
			Metrics:       runtime.Metrics,
			Environments:  cfg.Deployments.Environments,
			Timeout:       cfg.Deployments.TimeoutDuration(),
			MaxConcurrent: cfg.Deployments.MaxConcurrent,
		},
		runtime.Lifecycle,
		runtime.Logger,
	)

	return &Domain{
		Agents:      agentsSys,
		Deployments: deploymentsSys,
	}
}
