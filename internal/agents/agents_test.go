package agents_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeDraft() wizard.Draft {
	return wizard.Draft{
		BasicInfo: wizard.BasicInfo{Title: "Support Bot", Description: "Helps users", Category: "cat-1", Price: 9.99},
		Runtime:   wizard.Runtime{Model: "gpt-4o", SystemPrompt: "Be helpful.", MaxTokens: 2048, Temperature: 0.5},
		TestCases: []wizard.TestCase{{Name: "T1", Input: "hi"}},
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*wizard.Draft)
		valid  bool
	}{
		{"complete", func(*wizard.Draft) {}, true},
		{"empty draft", func(d *wizard.Draft) { *d = wizard.Draft{} }, true},
		{"negative price", func(d *wizard.Draft) { d.BasicInfo.Price = -1 }, false},
		{"temperature too high", func(d *wizard.Draft) { d.Runtime.Temperature = 2.5 }, false},
		{"negative max tokens", func(d *wizard.Draft) { d.Runtime.MaxTokens = -10 }, false},
		{"negative rate limit", func(d *wizard.Draft) { d.Integration.RateLimit = -1 }, false},
		{"webhook enabled without url", func(d *wizard.Draft) { d.Integration.WebhookEnabled = true }, true},
		{"webhook url while disabled", func(d *wizard.Draft) { d.Integration.WebhookURL = "https://example.com/hook" }, true},
		{"webhook bad scheme", func(d *wizard.Draft) { d.Integration.WebhookURL = "ftp://example.com/hook" }, false},
		{"webhook ok", func(d *wizard.Draft) {
			d.Integration.WebhookEnabled = true
			d.Integration.WebhookURL = "https://example.com/hook"
		}, true},
		{"unknown test status", func(d *wizard.Draft) { d.TestCases[0].Status = "skipped" }, false},
		{"malformed agent config", func(d *wizard.Draft) { d.Runtime.AgentConfig = json.RawMessage(`{"name":`) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			tt.mutate(&d)

			err := agents.ValidateDraft(d)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, agents.ErrInvalidDraft)
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{agents.ErrNotFound, http.StatusNotFound},
		{agents.ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("%w: price", agents.ErrInvalidDraft), http.StatusBadRequest},
		{fmt.Errorf("%w: testing", wizard.ErrIncomplete), http.StatusUnprocessableEntity},
		{session.ErrUnauthenticated, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, agents.MapHTTPStatus(tt.err), tt.err.Error())
	}
}

func TestFiltersFromQuery(t *testing.T) {
	owner := uuid.New()

	f := agents.FiltersFromQuery(url.Values{
		"status":   {"draft"},
		"category": {"support"},
		"owner":    {owner.String()},
	})

	require.NotNil(t, f.Status)
	assert.Equal(t, "draft", *f.Status)
	require.NotNil(t, f.Category)
	assert.Equal(t, "support", *f.Category)
	require.NotNil(t, f.OwnerID)
	assert.Equal(t, owner, *f.OwnerID)
	assert.False(t, f.Mine)

	me := agents.FiltersFromQuery(url.Values{"owner": {"me"}})
	assert.True(t, me.Mine)
	assert.Nil(t, me.OwnerID)

	bad := agents.FiltersFromQuery(url.Values{"owner": {"not-a-uuid"}})
	assert.Nil(t, bad.OwnerID)
}

type fakeSystem struct {
	saved    []agents.SaveCommand
	statuses []agents.Status
	err      error
}

// write mirrors the repository: every write is range-checked first.
func (f *fakeSystem) write(ctx context.Context, cmd agents.SaveCommand, status agents.Status) (*agents.Agent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := agents.ValidateDraft(cmd.Draft); err != nil {
		return nil, err
	}
	s, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	f.saved = append(f.saved, cmd)
	f.statuses = append(f.statuses, status)

	id := cmd.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &agents.Agent{ID: id, OwnerID: s.UserID, Status: status, Draft: cmd.Draft}, nil
}

func (f *fakeSystem) SaveDraft(ctx context.Context, cmd agents.SaveCommand) (*agents.Agent, error) {
	return f.write(ctx, cmd, agents.StatusDraft)
}

func (f *fakeSystem) Submit(ctx context.Context, cmd agents.SaveCommand) (*agents.Agent, error) {
	if err := wizard.Validate(cmd.Draft); err != nil {
		return nil, err
	}
	return f.write(ctx, cmd, agents.StatusPendingReview)
}

// systemStore drives a wizard controller against an agents.System.
type systemStore struct {
	sys agents.System
}

func (s systemStore) SaveDraft(ctx context.Context, id uuid.UUID, d wizard.Draft) (uuid.UUID, error) {
	a, err := s.sys.SaveDraft(ctx, agents.SaveCommand{ID: id, Draft: d})
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

func (s systemStore) Submit(ctx context.Context, id uuid.UUID, d wizard.Draft) (uuid.UUID, error) {
	a, err := s.sys.Submit(ctx, agents.SaveCommand{ID: id, Draft: d})
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

func TestController_AdvancesWithWebhookEnabledAndNoURL(t *testing.T) {
	sys := &fakeSystem{}
	c := wizard.NewController(systemStore{sys: sys}, session.Session{UserID: uuid.New()})

	d := completeDraft()
	c.SetBasicInfo(d.BasicInfo)
	c.SetRuntime(d.Runtime)
	c.SetIntegration(wizard.Integration{WebhookEnabled: true})
	c.SetTestCases(d.TestCases)

	for range wizard.StepCount - 1 {
		ok, err := c.Advance(t.Context())
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Equal(t, wizard.StepCount-1, c.Current())
	assert.NotEqual(t, uuid.Nil, c.ID())
	require.Len(t, sys.saved, 1)
	assert.Equal(t, uuid.Nil, sys.saved[0].ID)
	assert.True(t, sys.saved[0].Draft.Integration.WebhookEnabled)
}

func TestController_SaveThenSubmitUpdatesInPlace(t *testing.T) {
	sys := &fakeSystem{}
	c := wizard.NewController(systemStore{sys: sys}, session.Session{UserID: uuid.New()})
	d := completeDraft()
	c.SetBasicInfo(d.BasicInfo)
	c.SetRuntime(d.Runtime)
	c.SetTestCases(d.TestCases)

	id, err := c.SaveDraft(t.Context())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	again, err := c.Submit(t.Context())
	require.NoError(t, err)

	assert.Equal(t, id, again)
	assert.Equal(t, []agents.Status{agents.StatusDraft, agents.StatusPendingReview}, sys.statuses)
	assert.Equal(t, id, sys.saved[1].ID)
}

func TestController_SaveErrorKeepsNoID(t *testing.T) {
	c := wizard.NewController(systemStore{sys: &fakeSystem{err: agents.ErrNotFound}}, session.Session{UserID: uuid.New()})

	_, err := c.SaveDraft(t.Context())

	assert.ErrorIs(t, err, agents.ErrNotFound)
	assert.Equal(t, uuid.Nil, c.ID())
}
