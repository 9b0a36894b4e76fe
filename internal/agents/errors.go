package agents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/internal/wizard"
)

// Domain errors for agent operations.
var (
	ErrNotFound     = errors.New("agent not found")
	ErrDuplicate    = errors.New("agent already exists")
	ErrInvalidDraft = errors.New("invalid agent draft")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDraft):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
