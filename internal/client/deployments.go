package client

import (
	"context"
	"net/http"

	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/google/uuid"
)

// StartDeployment asks the server to deploy an agent. The returned record is
// already deploying.
func (c *Client) StartDeployment(ctx context.Context, cmd deployments.StartCommand) (*deployments.Deployment, error) {
	var d deployments.Deployment
	if err := c.do(ctx, http.MethodPost, "/deployments", cmd, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Deployment fetches the current state of a deployment.
func (c *Client) Deployment(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error) {
	var d deployments.Deployment
	if err := c.do(ctx, http.MethodGet, "/deployments/"+id.String(), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CancelDeployment stops a deployment that has not finished.
func (c *Client) CancelDeployment(ctx context.Context, id uuid.UUID) (*deployments.Deployment, error) {
	var d deployments.Deployment
	if err := c.do(ctx, http.MethodPost, "/deployments/"+id.String()+"/cancel", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
