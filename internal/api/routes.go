package api

import (
	"net/http"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/config"
	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/openapi"
	"github.com/JaimeStill/agent-market/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	spec *openapi.Spec,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) {
	wizardHandler := wizard.NewHandler(runtime.Logger)
	agentsHandler := agents.NewHandler(domain.Agents, runtime.Logger, runtime.Pagination)
	deploymentsHandler := deployments.NewHandler(domain.Deployments, runtime.Logger, runtime.Pagination, runtime.Watch)

	routes.Register(
		mux,
		cfg.API.BasePath,
		spec,
		wizardHandler.Routes(),
		agentsHandler.Routes(),
		deploymentsHandler.Routes(),
	)
}
