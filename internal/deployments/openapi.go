package deployments

import "github.com/JaimeStill/agent-market/pkg/openapi"

type spec struct {
	Start  *openapi.Operation
	List   *openapi.Operation
	Find   *openapi.Operation
	Logs   *openapi.Operation
	Cancel *openapi.Operation
	Watch  *openapi.Operation
}

var Spec = spec{
	Start: &openapi.Operation{
		Summary:     "Start deployment",
		Description: "Accepts a deployment of one of the caller's agents. The record is returned in status deploying and progresses in the background",
		RequestBody: openapi.RequestBodyJSON("StartDeployment", true),
		Responses: map[int]*openapi.Response{
			202: openapi.ResponseJSON("Deployment accepted", "Deployment"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: openapi.ResponseRef("Unprocessable"),
			503: openapi.ResponseRef("Unavailable"),
		},
	},
	List: &openapi.Operation{
		Summary:     "List deployments",
		Description: "Returns a paginated list of deployments, newest first",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search query (matches version and environment)", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields. Prefix with - for descending", false),
			openapi.QueryParam("agent_id", "string", "Filter by agent", false),
			openapi.QueryParam("status", "string", "Filter by status", false),
			openapi.QueryParam("environment", "string", "Filter by environment", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated list of deployments", "DeploymentPageResult"),
		},
	},
	Find: &openapi.Operation{
		Summary:     "Get deployment",
		Description: "Reads the deployment status, progress and logs. Poll this until the status is active or failed",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Deployment UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Deployment record", "Deployment"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Logs: &openapi.Operation{
		Summary: "Get deployment logs",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Deployment UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Ordered log lines",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: openapi.ArrayOf("LogLine")},
				},
			},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Cancel: &openapi.Operation{
		Summary:     "Cancel deployment",
		Description: "Fails an in-flight deployment with message \"deployment cancelled\"",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Deployment UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Deployment cancelled", "Deployment"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Watch: &openapi.Operation{
		Summary:     "Watch deployment",
		Description: "Upgrades to a websocket that sends the Deployment record as JSON on every change and closes after a terminal status",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Deployment UUID"),
		},
		Responses: map[int]*openapi.Response{
			101: {Description: "Switching to websocket"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	statuses := []any{"pending", "deploying", "active", "failed"}
	return map[string]*openapi.Schema{
		"Resources": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"cpu":    {Type: "string", Description: "Cores (\"0.5\") or millicores (\"500m\")", Example: "500m"},
				"memory": {Type: "string", Description: "Memory limit with units", Example: "512MiB"},
			},
		},
		"Scaling": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"min_replicas": openapi.Integer(openapi.Bound(1), openapi.Bound(100)),
				"max_replicas": openapi.Integer(openapi.Bound(1), openapi.Bound(100)),
			},
		},
		"LogLine": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"time":    {Type: "string", Format: "date-time"},
				"message": {Type: "string"},
			},
		},
		"StartDeployment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"agent_id":    {Type: "string", Format: "uuid"},
				"version_id":  {Type: "string", Description: "Generated from the agent when omitted"},
				"environment": {Type: "string", Enum: []any{"development", "staging", "production"}},
				"resources":   openapi.SchemaRef("Resources"),
				"scaling":     openapi.SchemaRef("Scaling"),
			},
			Required: []string{"agent_id", "environment"},
		},
		"Deployment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"agent_id":      {Type: "string", Format: "uuid"},
				"owner_id":      {Type: "string", Format: "uuid"},
				"version_id":    {Type: "string"},
				"environment":   {Type: "string"},
				"resources":     openapi.SchemaRef("Resources"),
				"scaling":       openapi.SchemaRef("Scaling"),
				"status":        {Type: "string", Enum: statuses},
				"progress":      {Type: "integer"},
				"logs":          openapi.ArrayOf("LogLine"),
				"error_message": {Type: "string"},
				"started_at":    {Type: "string", Format: "date-time"},
				"completed_at":  {Type: "string", Format: "date-time"},
				"created_at":    {Type: "string", Format: "date-time"},
				"updated_at":    {Type: "string", Format: "date-time"},
			},
		},
		"DeploymentPageResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        openapi.ArrayOf("Deployment"),
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}
