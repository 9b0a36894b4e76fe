package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/pkg/poll"
	"github.com/google/uuid"
)

// ErrDeploymentFailed is returned by Watch when the deployment ends failed.
var ErrDeploymentFailed = errors.New("deployment failed")

// DefaultWatch polls every 3s for at most 10 minutes.
var DefaultWatch = poll.Config{
	Interval: 3 * time.Second,
	Timeout:  10 * time.Minute,
}

// Fetcher reads the current state of a deployment. *Client satisfies it.
type Fetcher interface {
	Deployment(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error)
}

// Callback receives an observed deployment snapshot.
type Callback func(deployments.Deployment)

// Watcher polls a deployment until it reaches a terminal status. Observation
// is forward-only: a response whose status ranks below one already seen is
// dropped.
type Watcher struct {
	Fetch  Fetcher
	Config poll.Config

	// OnProgress fires for every observed change in status, progress or logs.
	OnProgress Callback
	OnActive   Callback
	OnFailed   Callback

	Logger *slog.Logger
}

// NewWatcher creates a watcher with DefaultWatch bounds.
func NewWatcher(f Fetcher) *Watcher {
	return &Watcher{
		Fetch:  f,
		Config: DefaultWatch,
	}
}

// Watch polls id until it is active or failed, ctx is cancelled, or the poll
// bound is reached. Transient fetch errors are logged and polled through;
// 4xx responses other than 408 and 429 end the watch. OnActive or OnFailed fires exactly once on a terminal
// status and no request is issued after it. The last observed record is
// returned in every case.
func (w *Watcher) Watch(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("deployment_id", id)

	var (
		last    *deployments.Deployment
		lastErr error
	)
	err := poll.Until(ctx, w.Config, func(ctx context.Context) (bool, error) {
		d, err := w.Fetch.Deployment(ctx, id)
		if err != nil {
			if permanent(ctx, err) {
				return false, err
			}
			lastErr = err
			logger.Warn("deployment fetch failed, retrying", "error", err)
			return false, nil
		}
		lastErr = nil

		if last != nil && d.Status.Rank() < last.Status.Rank() {
			logger.Debug("ignoring regressed status", "observed", d.Status, "current", last.Status)
			return false, nil
		}

		if observedChange(last, d) && w.OnProgress != nil {
			w.OnProgress(*d)
		}
		last = d
		return d.Status.Terminal(), nil
	})
	if err != nil {
		if lastErr != nil && (errors.Is(err, poll.ErrTimeout) || errors.Is(err, poll.ErrAttemptsExhausted)) {
			return last, fmt.Errorf("watch deployment %s: %w (last error: %w)", id, err, lastErr)
		}
		return last, fmt.Errorf("watch deployment %s: %w", id, err)
	}

	switch last.Status {
	case deployments.StatusActive:
		if w.OnActive != nil {
			w.OnActive(*last)
		}
		return last, nil
	default:
		if w.OnFailed != nil {
			w.OnFailed(*last)
		}
		if last.ErrorMessage != nil {
			return last, fmt.Errorf("%w: %s", ErrDeploymentFailed, *last.ErrorMessage)
		}
		return last, ErrDeploymentFailed
	}
}

// permanent reports whether a fetch error will not clear on retry. Transport
// failures and 5xx responses are retried until the poll bound.
func permanent(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.StatusCode
	return code >= 400 && code < 500 && code != http.StatusRequestTimeout && code != http.StatusTooManyRequests
}

func observedChange(prev, next *deployments.Deployment) bool {
	if prev == nil {
		return true
	}
	return prev.Status != next.Status ||
		prev.Progress != next.Progress ||
		len(prev.Logs) != len(next.Logs)
}
