package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/client"
	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/logging"
	"github.com/JaimeStill/agent-market/pkg/poll"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "0e4b6c3a-2f1d-4a8e-9b7c-5d6e7f8a9b01"

const completeAgent = `
basic_info:
  title: Contract Summarizer
  description: Condenses contracts into obligations.
  category: legal
  price: 29
  tags: [contracts]
runtime:
  model: gpt-4o
  max_tokens: 4096
  temperature: 0.2
  system_prompt: You summarize contracts.
integration:
  rate_limit: 60
test_cases:
  - name: NDA
    input: Summarize this NDA.
    status: passed
agent_config:
  name: summarizer
`

const partialAgent = `
basic_info:
  title: Half Done
  description: Missing a runtime.
  category: misc
`

// fakeAPI serves the subset of the API marketplace commands call.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	agents   map[uuid.UUID]agents.Agent
	script   []deployments.Deployment
	polls    int
	lastSave wizard.Draft
}

func newFakeAPI(t *testing.T, script ...deployments.Deployment) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{agents: map[uuid.UUID]agents.Agent{}, script: script}

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, user, r.Header.Get("X-User-ID"))
			api.mu.Lock()
			api.calls = append(api.calls, r.Pattern)
			api.mu.Unlock()
			h(w, r)
		})
	}

	for _, route := range wizard.NewHandler(logging.Discard()).Routes().Routes {
		handle(route.Method+" /api/wizard"+route.Pattern, route.Handler)
	}
	handle("POST /api/agents/drafts", api.save(agents.StatusDraft))
	handle("PUT /api/agents/{id}/draft", api.save(agents.StatusDraft))
	handle("POST /api/agents/submit", api.save(agents.StatusPendingReview))
	handle("PUT /api/agents/{id}/submit", api.save(agents.StatusPendingReview))
	handle("POST /api/deployments", api.start)
	handle("GET /api/deployments/{id}", api.find)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (api *fakeAPI) save(status agents.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d wizard.Draft
		json.NewDecoder(r.Body).Decode(&d)

		if status == agents.StatusPendingReview {
			if err := wizard.Validate(d); err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}
		}

		code := http.StatusOK
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			id = uuid.New()
			code = http.StatusCreated
		}

		a := agents.Agent{ID: id, Status: status, Draft: d}
		api.mu.Lock()
		api.agents[id] = a
		api.lastSave = d
		api.mu.Unlock()

		writeJSON(w, code, a)
	}
}

func (api *fakeAPI) start(w http.ResponseWriter, r *http.Request) {
	var cmd deployments.StartCommand
	json.NewDecoder(r.Body).Decode(&cmd)

	api.mu.Lock()
	_, ok := api.agents[cmd.AgentID]
	api.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
		return
	}

	writeJSON(w, http.StatusAccepted, deployments.Deployment{
		ID:          uuid.New(),
		AgentID:     cmd.AgentID,
		Environment: cmd.Environment,
		Status:      deployments.StatusDeploying,
		Resources:   deployments.Resources{CPU: "500m", Memory: "512MiB"},
		Scaling:     deployments.Scaling{MinReplicas: 1, MaxReplicas: 1},
	})
}

func (api *fakeAPI) find(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	i := min(api.polls, len(api.script)-1)
	api.polls++
	d := api.script[i]
	api.mu.Unlock()

	d.ID = uuid.MustParse(r.PathValue("id"))
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	a := newApp(&out)
	a.watch = poll.Config{Interval: time.Millisecond, Timeout: 2 * time.Second}

	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{"--server", srv.URL + "/api", "--user", user}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func agentFileFor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCreate_SavesDraftOnFinalStep(t *testing.T) {
	api, srv := newFakeAPI(t)

	out, err := run(t, srv, "create", "-f", agentFileFor(t, completeAgent))
	require.NoError(t, err)

	assert.Contains(t, out, "Basic Information")
	assert.Contains(t, out, "saved draft")
	assert.Equal(t, []string{"POST /api/agents/drafts", "PUT /api/agents/{id}/draft"}, api.calls)
	assert.JSONEq(t, `{"name":"summarizer"}`, string(api.lastSave.Runtime.AgentConfig))
}

func TestCreate_BlockedStepStillSavesDraft(t *testing.T) {
	api, srv := newFakeAPI(t)

	out, err := run(t, srv, "create", "-f", agentFileFor(t, partialAgent))
	require.NoError(t, err)

	assert.Contains(t, out, "[ ] Runtime Configuration")
	assert.Equal(t, []string{"POST /api/agents/drafts"}, api.calls)
}

func TestCreate_SubmitRejectsIncomplete(t *testing.T) {
	api, srv := newFakeAPI(t)

	_, err := run(t, srv, "create", "-f", agentFileFor(t, partialAgent), "--submit")

	require.ErrorIs(t, err, wizard.ErrIncomplete)
	assert.Contains(t, err.Error(), "Runtime Configuration")
	assert.Empty(t, api.calls)
}

func TestCreate_DeployAndWait(t *testing.T) {
	api, srv := newFakeAPI(t,
		deployments.Deployment{Status: deployments.StatusDeploying, Progress: 25, Logs: []deployments.LogLine{{Message: "validated"}}},
		deployments.Deployment{Status: deployments.StatusDeploying, Progress: 75, Logs: []deployments.LogLine{{Message: "validated"}, {Message: "verified"}}},
		deployments.Deployment{Status: deployments.StatusActive, Progress: 100},
	)

	out, err := run(t, srv, "create", "-f", agentFileFor(t, completeAgent), "--deploy", "--env", "staging", "--wait")
	require.NoError(t, err)

	assert.Contains(t, out, "submitted agent")
	assert.Contains(t, out, "staging")
	assert.Contains(t, out, "verified")
	assert.Contains(t, out, "is active")
	assert.Equal(t, 3, api.polls)
	assert.Equal(t, "PUT /api/agents/{id}/submit", api.calls[1])
}

func TestDeploy_FailedStopsWatching(t *testing.T) {
	msg := "provision: quota exceeded"
	api, srv := newFakeAPI(t,
		deployments.Deployment{Status: deployments.StatusFailed, Progress: 50, ErrorMessage: &msg},
	)
	id := uuid.New()
	api.agents[id] = agents.Agent{ID: id}

	out, err := run(t, srv, "deploy", id.String(), "--wait")

	require.ErrorIs(t, err, client.ErrDeploymentFailed)
	assert.Contains(t, out, msg)
	assert.Equal(t, 1, api.polls)
}

func TestStatus(t *testing.T) {
	msg := "activate: endpoint unreachable"
	_, srv := newFakeAPI(t, deployments.Deployment{
		Status:       deployments.StatusFailed,
		VersionID:    "v20261017.120000",
		Environment:  "production",
		Progress:     75,
		ErrorMessage: &msg,
		Logs:         []deployments.LogLine{{Time: time.Now(), Message: "verifying endpoint"}},
	})

	out, err := run(t, srv, "status", uuid.NewString())
	require.NoError(t, err)

	assert.Contains(t, out, "v20261017.120000")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, msg)
	assert.Contains(t, out, "verifying endpoint")
}

func TestSteps(t *testing.T) {
	_, srv := newFakeAPI(t)

	out, err := run(t, srv, "steps")
	require.NoError(t, err)

	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "basic-info")
	assert.Contains(t, out, "5. ")
}

func TestRoot_RequiresUser(t *testing.T) {
	_, srv := newFakeAPI(t)

	a := newApp(&bytes.Buffer{})
	cmd := newRootCmd(a)
	cmd.SetArgs([]string{"--server", srv.URL, "--user", "", "steps"})

	assert.Error(t, cmd.Execute())
}
