package deployments

import (
	"encoding/json"
	"net/url"

	"github.com/JaimeStill/agent-market/pkg/query"
	"github.com/JaimeStill/agent-market/pkg/repository"
	"github.com/google/uuid"
)

var projection = query.
	NewProjectionMap("public", "deployments", "d").
	Project("id", "ID").
	Project("agent_id", "AgentID").
	Project("owner_id", "OwnerID").
	Project("version_id", "VersionID").
	Project("environment", "Environment").
	Project("cpu_millicores", "CPU").
	Project("memory_bytes", "Memory").
	Project("min_replicas", "MinReplicas").
	Project("max_replicas", "MaxReplicas").
	Project("status", "Status").
	Project("progress", "Progress").
	Project("logs", "Logs").
	Project("error_message", "ErrorMessage").
	Project("started_at", "StartedAt").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanDeployment(s repository.Scanner) (Deployment, error) {
	var (
		d    Deployment
		l    Limits
		logs []byte
	)

	err := s.Scan(
		&d.ID, &d.AgentID, &d.OwnerID, &d.VersionID, &d.Environment,
		&l.Millicores, &l.MemoryBytes,
		&d.Scaling.MinReplicas, &d.Scaling.MaxReplicas,
		&d.Status, &d.Progress, &logs, &d.ErrorMessage,
		&d.StartedAt, &d.CompletedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	d.Resources = l.Resources()
	d.Logs = []LogLine{}
	if len(logs) > 0 {
		if err := json.Unmarshal(logs, &d.Logs); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Filters contains optional filtering criteria for deployment queries.
type Filters struct {
	AgentID     *uuid.UUID
	Status      *string
	Environment *string
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if raw := values.Get("agent_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.AgentID = &id
		}
	}
	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if e := values.Get("environment"); e != "" {
		f.Environment = &e
	}

	return f
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.AgentID != nil {
		b.WhereEquals("AgentID", *f.AgentID)
	}
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Environment", f.Environment)
}
