// Package wizard implements the agent creation wizard: the draft payload
// collected across steps, the gating predicate of each step, and a
// controller that navigates the steps and persists the draft through a Store.
package wizard

import "encoding/json"

// BasicInfo is the payload of the basic-info step.
type BasicInfo struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Price       float64  `json:"price" yaml:"price"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Runtime is the payload of the runtime step. AgentConfig optionally carries
// a full go-agents configuration that is validated on save.
type Runtime struct {
	Model        string          `json:"model" yaml:"model"`
	MaxTokens    int             `json:"max_tokens" yaml:"max_tokens"`
	Temperature  float64         `json:"temperature" yaml:"temperature"`
	SystemPrompt string          `json:"system_prompt" yaml:"system_prompt"`
	Features     map[string]bool `json:"features,omitempty" yaml:"features"`
	AgentConfig  json.RawMessage `json:"agent_config,omitempty" yaml:"-"`
}

// Integration is the payload of the integration step. Every field is optional.
type Integration struct {
	WebhookEnabled bool     `json:"webhook_enabled" yaml:"webhook_enabled"`
	WebhookURL     string   `json:"webhook_url,omitempty" yaml:"webhook_url"`
	WebhookEvents  []string `json:"webhook_events,omitempty" yaml:"webhook_events"`
	RateLimit      int      `json:"rate_limit" yaml:"rate_limit"`
	AuthType       string   `json:"auth_type,omitempty" yaml:"auth_type"`
}

// TestStatus is the outcome of a single test case.
type TestStatus string

const (
	TestPending TestStatus = "pending"
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
)

// Valid reports whether s is a known status. The empty status is treated as pending.
func (s TestStatus) Valid() bool {
	switch s {
	case "", TestPending, TestPassed, TestFailed:
		return true
	}
	return false
}

// TestCase is one entry of the testing step.
type TestCase struct {
	Name           string     `json:"name" yaml:"name"`
	Input          string     `json:"input" yaml:"input"`
	ExpectedOutput string     `json:"expected_output,omitempty" yaml:"expected_output"`
	ActualOutput   string     `json:"actual_output,omitempty" yaml:"actual_output"`
	Status         TestStatus `json:"status" yaml:"status"`
}

// Draft aggregates every step payload of an agent under construction.
type Draft struct {
	BasicInfo   BasicInfo   `json:"basic_info" yaml:"basic_info"`
	Runtime     Runtime     `json:"runtime" yaml:"runtime"`
	Integration Integration `json:"integration" yaml:"integration"`
	TestCases   []TestCase  `json:"test_cases" yaml:"test_cases"`
}

// Clone returns a deep copy so callers cannot mutate controller state.
func (d Draft) Clone() Draft {
	c := d
	c.BasicInfo.Tags = cloneSlice(d.BasicInfo.Tags)
	c.Integration.WebhookEvents = cloneSlice(d.Integration.WebhookEvents)
	c.TestCases = cloneSlice(d.TestCases)
	if d.Runtime.Features != nil {
		c.Runtime.Features = make(map[string]bool, len(d.Runtime.Features))
		for k, v := range d.Runtime.Features {
			c.Runtime.Features[k] = v
		}
	}
	if d.Runtime.AgentConfig != nil {
		c.Runtime.AgentConfig = append(json.RawMessage(nil), d.Runtime.AgentConfig...)
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
