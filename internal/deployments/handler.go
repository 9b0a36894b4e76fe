package deployments

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agent-market/pkg/handlers"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/agent-market/pkg/poll"
	"github.com/JaimeStill/agent-market/pkg/routes"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler provides HTTP handlers for deployments.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	watch      poll.Config
	upgrader   websocket.Upgrader
}

// NewHandler creates the deployments handler. watch bounds each websocket
// watch session.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, watch poll.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger,
		pagination: pagination,
		watch:      watch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/deployments",
		Tags:        []string{"Deployments"},
		Description: "Agent deployment trigger and status",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Start, OpenAPI: Spec.Start},
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "GET", Pattern: "/{id}/logs", Handler: h.Logs, OpenAPI: Spec.Logs},
			{Method: "POST", Pattern: "/{id}/cancel", Handler: h.Cancel, OpenAPI: Spec.Cancel},
			{Method: "GET", Pattern: "/{id}/watch", Handler: h.Watch, OpenAPI: Spec.Watch},
		},
		Schemas: Spec.Schemas(),
	}
}

// Start handles POST /deployments. The record is returned with 202 while the
// pipeline continues in the background.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var cmd StartCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Start(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, result)
}

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

func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	logs, err := h.sys.Logs(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, logs)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Cancel(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
