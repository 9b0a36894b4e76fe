package wizard

import "github.com/JaimeStill/agent-market/pkg/openapi"

type spec struct {
	Steps    *openapi.Operation
	Validate *openapi.Operation
}

var Spec = spec{
	Steps: &openapi.Operation{
		Summary:     "List wizard steps",
		Description: "Returns the ordered wizard steps with completion evaluated against an empty draft",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Wizard steps",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: openapi.ArrayOf("WizardStep")},
				},
			},
		},
	},
	Validate: &openapi.Operation{
		Summary:     "Evaluate draft",
		Description: "Evaluates every step gate against the posted draft",
		RequestBody: openapi.RequestBodyJSON("AgentDraft", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Step evaluation", "WizardEvaluation"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

// Schemas returns the draft payload schemas shared with the agents API.
func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"WizardStep": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":        {Type: "string", Enum: []any{"basic-info", "runtime", "integration", "testing", "deployment"}},
				"title":     openapi.String(0),
				"completed": {Type: "boolean"},
			},
		},
		"WizardEvaluation": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"steps":    openapi.ArrayOf("WizardStep"),
				"complete": {Type: "boolean"},
				"error":    openapi.String(0),
			},
		},
		"BasicInfo": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"title":       openapi.String(0),
				"description": openapi.String(0),
				"category":    openapi.String(0),
				"price":       openapi.Number(openapi.Bound(0), nil),
				"tags":        {Type: "array", Items: openapi.String(0)},
			},
		},
		"Runtime": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"model":         openapi.String(0),
				"max_tokens":    openapi.Integer(openapi.Bound(0), nil),
				"temperature":   openapi.Number(openapi.Bound(0), openapi.Bound(2)),
				"system_prompt": openapi.String(0),
				"features":      {Type: "object", Description: "Feature flags keyed by name"},
				"agent_config":  {Type: "object", Description: "Optional go-agents configuration"},
			},
		},
		"Integration": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"webhook_enabled": {Type: "boolean"},
				"webhook_url":     {Type: "string", Format: "uri"},
				"webhook_events":  {Type: "array", Items: openapi.String(0)},
				"rate_limit":      openapi.Integer(openapi.Bound(0), nil),
				"auth_type":       openapi.String(0),
			},
		},
		"TestCase": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":            openapi.String(0),
				"input":           openapi.String(0),
				"expected_output": openapi.String(0),
				"actual_output":   openapi.String(0),
				"status":          {Type: "string", Enum: []any{"pending", "passed", "failed"}},
			},
		},
		"AgentDraft": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"basic_info":  openapi.SchemaRef("BasicInfo"),
				"runtime":     openapi.SchemaRef("Runtime"),
				"integration": openapi.SchemaRef("Integration"),
				"test_cases":  openapi.ArrayOf("TestCase"),
			},
		},
	}
}
