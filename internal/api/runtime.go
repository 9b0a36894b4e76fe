package api

import (
	"github.com/JaimeStill/agent-market/internal/config"
	"github.com/JaimeStill/agent-market/internal/infrastructure"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/agent-market/pkg/poll"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Watch      poll.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Metrics:   infra.Metrics,
		},
		Pagination: cfg.API.Pagination,
		Watch: poll.Config{
			Interval: cfg.Deployments.PollIntervalDuration(),
			Timeout:  cfg.Deployments.TimeoutDuration(),
		},
	}
}
