package agents

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/handlers"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/agent-market/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP handlers for agent records.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a new agents HTTP handler.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger,
		pagination: pagination,
	}
}

// Routes returns the route group configuration for agent endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/agents",
		Tags:        []string{"Agents"},
		Description: "Agent drafts and submissions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: Spec.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "POST", Pattern: "/drafts", Handler: h.CreateDraft, OpenAPI: Spec.CreateDraft},
			{Method: "PUT", Pattern: "/{id}/draft", Handler: h.UpdateDraft, OpenAPI: Spec.UpdateDraft},
			{Method: "POST", Pattern: "/submit", Handler: h.CreateSubmit, OpenAPI: Spec.CreateSubmit},
			{Method: "PUT", Pattern: "/{id}/submit", Handler: h.UpdateSubmit, OpenAPI: Spec.UpdateSubmit},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
		},
		Schemas: Spec.Schemas(),
	}
}

// List handles GET /agents to retrieve a paginated list of agents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search handles POST /agents/search with paging in the request body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var page pagination.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find handles GET /agents/{id}.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// CreateDraft handles POST /agents/drafts.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, uuid.Nil, h.sys.SaveDraft, http.StatusCreated)
}

// UpdateDraft handles PUT /agents/{id}/draft.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.save(w, r, id, h.sys.SaveDraft, http.StatusOK)
}

// CreateSubmit handles POST /agents/submit.
func (h *Handler) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, uuid.Nil, h.sys.Submit, http.StatusCreated)
}

// UpdateSubmit handles PUT /agents/{id}/submit.
func (h *Handler) UpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.save(w, r, id, h.sys.Submit, http.StatusOK)
}

// Delete handles DELETE /agents/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondNoContent(w)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id uuid.UUID, write func(context.Context, SaveCommand) (*Agent, error), status int) {
	var d wizard.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := write(r.Context(), SaveCommand{ID: id, Draft: d})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, status, result)
}
