package main

import (
	"github.com/JaimeStill/agent-market/internal/infrastructure"
	"github.com/JaimeStill/agent-market/pkg/middleware"
)

// buildMiddleware wraps the whole router, so native routes and modules share
// request logging.
func buildMiddleware(infra *infrastructure.Infrastructure) middleware.System {
	mw := middleware.New()
	mw.Use(middleware.Logger(infra.Logger))
	return mw
}
