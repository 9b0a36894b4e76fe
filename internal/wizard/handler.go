package wizard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agent-market/pkg/handlers"
	"github.com/JaimeStill/agent-market/pkg/routes"
)

// Evaluation reports step completion for a draft.
type Evaluation struct {
	Steps    []Step `json:"steps"`
	Complete bool   `json:"complete"`
	Error    string `json:"error,omitempty"`
}

// Evaluate computes the step list and overall completeness of d.
func Evaluate(d Draft) Evaluation {
	e := Evaluation{Steps: Steps(d), Complete: true}
	if err := Validate(d); err != nil {
		e.Complete = false
		e.Error = err.Error()
	}
	return e
}

// Handler exposes the step definitions so clients render the same gating
// the server enforces on submit.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/wizard",
		Tags:        []string{"Wizard"},
		Description: "Agent creation wizard step definitions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/steps", Handler: h.Steps, OpenAPI: Spec.Steps},
			{Method: "POST", Pattern: "/validate", Handler: h.Validate, OpenAPI: Spec.Validate},
		},
		Schemas: Spec.Schemas(),
	}
}

// Steps handles GET /wizard/steps.
func (h *Handler) Steps(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Steps(Draft{}))
}

// Validate handles POST /wizard/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var d Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, Evaluate(d))
}
