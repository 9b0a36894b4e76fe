package client

import (
	"context"
	"net/http"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/google/uuid"
)

// SaveAgentDraft creates the record when id is uuid.Nil and updates it otherwise.
func (c *Client) SaveAgentDraft(ctx context.Context, id uuid.UUID, d wizard.Draft) (*agents.Agent, error) {
	if id == uuid.Nil {
		return c.writeAgent(ctx, http.MethodPost, "/agents/drafts", d)
	}
	return c.writeAgent(ctx, http.MethodPut, "/agents/"+id.String()+"/draft", d)
}

// SubmitAgent saves d and moves the record to pending review. The server
// rejects drafts that do not pass every wizard step.
func (c *Client) SubmitAgent(ctx context.Context, id uuid.UUID, d wizard.Draft) (*agents.Agent, error) {
	if id == uuid.Nil {
		return c.writeAgent(ctx, http.MethodPost, "/agents/submit", d)
	}
	return c.writeAgent(ctx, http.MethodPut, "/agents/"+id.String()+"/submit", d)
}

// Agent fetches one record.
func (c *Client) Agent(ctx context.Context, id uuid.UUID) (*agents.Agent, error) {
	var a agents.Agent
	if err := c.do(ctx, http.MethodGet, "/agents/"+id.String(), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Steps returns the wizard step table as served by the API.
func (c *Client) Steps(ctx context.Context) ([]wizard.Step, error) {
	var steps []wizard.Step
	if err := c.do(ctx, http.MethodGet, "/wizard/steps", nil, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// Evaluate asks the server which steps d completes.
func (c *Client) Evaluate(ctx context.Context, d wizard.Draft) (*wizard.Evaluation, error) {
	var e wizard.Evaluation
	if err := c.do(ctx, http.MethodPost, "/wizard/validate", d, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) writeAgent(ctx context.Context, method, path string, d wizard.Draft) (*agents.Agent, error) {
	var a agents.Agent
	if err := c.do(ctx, method, path, d, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Store adapts the client to wizard.Store so a local Controller persists
// through the API.
func (c *Client) Store() wizard.Store {
	return store{c: c}
}

type store struct {
	c *Client
}

func (s store) SaveDraft(ctx context.Context, id uuid.UUID, d wizard.Draft) (uuid.UUID, error) {
	a, err := s.c.SaveAgentDraft(ctx, id, d)
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

func (s store) Submit(ctx context.Context, id uuid.UUID, d wizard.Draft) (uuid.UUID, error) {
	a, err := s.c.SubmitAgent(ctx, id, d)
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}
