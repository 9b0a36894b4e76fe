package agents

import (
	"encoding/json"
	"net/url"

	"github.com/JaimeStill/agent-market/pkg/query"
	"github.com/JaimeStill/agent-market/pkg/repository"
	"github.com/google/uuid"
)

var projection = query.
	NewProjectionMap("public", "agents", "a").
	Project("id", "ID").
	Project("owner_id", "OwnerID").
	Project("status", "Status").
	Project("title", "Title").
	Project("description", "Description").
	Project("category", "Category").
	Project("price", "Price").
	Project("tags", "Tags").
	Project("runtime", "Runtime").
	Project("integration", "Integration").
	Project("test_cases", "TestCases").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "UpdatedAt", Descending: true}

func scanAgent(s repository.Scanner) (Agent, error) {
	var (
		a                                     Agent
		tags, runtime, integration, testCases []byte
	)

	err := s.Scan(
		&a.ID, &a.OwnerID, &a.Status,
		&a.BasicInfo.Title, &a.BasicInfo.Description, &a.BasicInfo.Category, &a.BasicInfo.Price,
		&tags, &runtime, &integration, &testCases,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	for _, col := range []struct {
		raw  []byte
		dest any
	}{
		{tags, &a.BasicInfo.Tags},
		{runtime, &a.Runtime},
		{integration, &a.Integration},
		{testCases, &a.TestCases},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return a, err
		}
	}

	return a, nil
}

// Filters contains optional filtering criteria for agent queries.
type Filters struct {
	Status   *string
	Category *string
	OwnerID  *uuid.UUID
	// Mine restricts results to the session user and takes precedence over OwnerID.
	Mine bool
}

// FiltersFromQuery extracts filter values from URL query parameters.
// owner=me selects the caller's own agents.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	switch owner := values.Get("owner"); owner {
	case "":
	case "me":
		f.Mine = true
	default:
		if id, err := uuid.Parse(owner); err == nil {
			f.OwnerID = &id
		}
	}

	return f
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("Status", f.Status).
		WhereEquals("Category", f.Category)

	if f.OwnerID != nil {
		b.WhereEquals("OwnerID", *f.OwnerID)
	}
	return b
}
