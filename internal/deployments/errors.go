package deployments

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/session"
)

var (
	ErrNotFound       = errors.New("deployment not found")
	ErrInvalidRequest = errors.New("invalid deployment request")
	ErrInvalidStatus  = errors.New("invalid status transition")
	ErrAgentNotReady  = errors.New("agent is not ready for deployment")
	ErrCapacity       = errors.New("deployment capacity reached")
)

// Reasons recorded as the error message of a failed deployment.
var (
	errCancelled   = errors.New("deployment cancelled")
	errTimedOut    = errors.New("deployment timed out")
	errInterrupted = errors.New("deployment interrupted by service shutdown")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, agents.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidStatus):
		return http.StatusConflict
	case errors.Is(err, ErrAgentNotReady):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrCapacity):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
