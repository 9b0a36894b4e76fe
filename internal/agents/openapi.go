package agents

import (
	"github.com/JaimeStill/agent-market/pkg/openapi"
)

// spec holds OpenAPI operation definitions for the agents domain.
type spec struct {
	List         *openapi.Operation
	Search       *openapi.Operation
	Find         *openapi.Operation
	CreateDraft  *openapi.Operation
	UpdateDraft  *openapi.Operation
	CreateSubmit *openapi.Operation
	UpdateSubmit *openapi.Operation
	Delete       *openapi.Operation
}

var listParams = []*openapi.Parameter{
	openapi.QueryParam("status", "string", "Filter by status (draft, pending_review)", false),
	openapi.QueryParam("category", "string", "Filter by category", false),
	openapi.QueryParam("owner", "string", "Filter by owner id, or \"me\" for the caller", false),
}

// Spec contains OpenAPI operation definitions for all agent endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List agents",
		Description: "Returns a paginated list of agents with optional filtering and sorting",
		Parameters: append([]*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search query (matches title and description)", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields. Prefix with - for descending", false),
		}, listParams...),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated list of agents", "AgentPageResult"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search agents",
		Description: "Search agents with paging, search and sort in the request body",
		Parameters:  listParams,
		RequestBody: openapi.RequestBodyJSON("PageRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated list of agents", "AgentPageResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Find: &openapi.Operation{
		Summary:     "Get agent by ID",
		Description: "Retrieves a single agent record",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Agent UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Agent record", "Agent"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	CreateDraft: &openapi.Operation{
		Summary:     "Create draft",
		Description: "Stores a new agent with status draft and returns its generated id",
		RequestBody: openapi.RequestBodyJSON("AgentDraft", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Draft created", "Agent"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	UpdateDraft: &openapi.Operation{
		Summary:     "Update draft",
		Description: "Overwrites the caller's agent payload in place and sets status draft",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Agent UUID"),
		},
		RequestBody: openapi.RequestBodyJSON("AgentDraft", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Draft updated", "Agent"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	CreateSubmit: &openapi.Operation{
		Summary:     "Submit new agent",
		Description: "Stores a new agent with status pending_review. Every wizard gate must pass",
		RequestBody: openapi.RequestBodyJSON("AgentDraft", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Agent submitted", "Agent"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
			422: openapi.ResponseRef("Unprocessable"),
		},
	},
	UpdateSubmit: &openapi.Operation{
		Summary:     "Submit existing agent",
		Description: "Overwrites the caller's agent payload and sets status pending_review. Repeated submits update the same record",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Agent UUID"),
		},
		RequestBody: openapi.RequestBodyJSON("AgentDraft", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Agent submitted", "Agent"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: openapi.ResponseRef("Unprocessable"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete agent",
		Description: "Removes one of the caller's agents together with its deployments",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Agent UUID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Agent deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// Schemas returns the agent component schemas. Draft payload schemas are
// contributed by the wizard group.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Agent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          {Type: "string", Format: "uuid"},
				"owner_id":    {Type: "string", Format: "uuid"},
				"status":      {Type: "string", Enum: []any{"draft", "pending_review"}},
				"basic_info":  openapi.SchemaRef("BasicInfo"),
				"runtime":     openapi.SchemaRef("Runtime"),
				"integration": openapi.SchemaRef("Integration"),
				"test_cases":  openapi.ArrayOf("TestCase"),
				"created_at":  {Type: "string", Format: "date-time"},
				"updated_at":  {Type: "string", Format: "date-time"},
			},
		},
		"AgentPageResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        openapi.ArrayOf("Agent"),
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}
