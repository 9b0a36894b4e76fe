// Package api assembles the domain systems and their HTTP handlers into the
// module mounted under the API base path.
package api

import (
	"net/http"

	"github.com/JaimeStill/agent-market/internal/config"
	"github.com/JaimeStill/agent-market/internal/infrastructure"
	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/pkg/middleware"
	"github.com/JaimeStill/agent-market/pkg/module"
	"github.com/JaimeStill/agent-market/pkg/openapi"
)

// NewModule builds the API module. Every route except the OpenAPI document
// requires a session.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.Info.Description = cfg.API.OpenAPI.Description
	spec.Servers = []*openapi.Server{{URL: cfg.API.BasePath}}
	spec.RequireHeader("session", session.HeaderUserID, "User id set by the auth gateway")

	authed := http.NewServeMux()
	registerRoutes(authed, spec, runtime, domain, cfg)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
	mux.Handle("/", session.Middleware(runtime.Logger)(authed))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.API.CORS))

	return m, nil
}
