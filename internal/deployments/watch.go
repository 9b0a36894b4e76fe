package deployments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JaimeStill/agent-market/pkg/handlers"
	"github.com/JaimeStill/agent-market/pkg/poll"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Watch handles GET /deployments/{id}/watch. It upgrades to a websocket and
// pushes the record whenever its status, progress or log count changes,
// closing once the deployment is terminal or the watch bound is reached.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "deployment_id", id)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("watch client closed", "error", err)
				}
				return
			}
		}
	}()

	var last *Deployment
	err = poll.Until(ctx, h.watch, func(ctx context.Context) (bool, error) {
		d, err := h.sys.Find(ctx, id)
		if err != nil {
			return false, err
		}
		if changed(last, d) {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(d); err != nil {
				return false, err
			}
			last = d
		}
		return d.Status.Terminal(), nil
	})

	reason := "deployment " + string(lastStatus(last))
	switch {
	case errors.Is(err, poll.ErrTimeout), errors.Is(err, poll.ErrAttemptsExhausted):
		reason = "watch limit reached"
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		h.logger.Warn("watch stopped", "error", err, "deployment_id", id)
		reason = "watch error"
	}

	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(writeWait),
	)
}

func changed(prev, next *Deployment) bool {
	if prev == nil {
		return true
	}
	return prev.Status != next.Status ||
		prev.Progress != next.Progress ||
		len(prev.Logs) != len(next.Logs)
}

func lastStatus(d *Deployment) Status {
	if d == nil {
		return ""
	}
	return d.Status
}
