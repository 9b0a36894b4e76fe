package agents

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/go-agents/pkg/agent"
	agtconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// ValidateDraft checks field ranges of d. Completeness is not required here;
// drafts may be saved with empty steps. Fields are checked independently: a
// webhook URL is checked for shape only when present, whether or not webhooks
// are enabled.
func ValidateDraft(d wizard.Draft) error {
	var problems []string

	if d.BasicInfo.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if d.Runtime.Temperature < 0 || d.Runtime.Temperature > 2 {
		problems = append(problems, "temperature must be between 0 and 2")
	}
	if d.Runtime.MaxTokens < 0 {
		problems = append(problems, "max_tokens must not be negative")
	}
	if d.Integration.RateLimit < 0 {
		problems = append(problems, "rate_limit must not be negative")
	}
	if u := d.Integration.WebhookURL; u != "" {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("webhook_url %q is not an http(s) URL", u))
		}
	}
	for i, tc := range d.TestCases {
		if !tc.Status.Valid() {
			problems = append(problems, fmt.Sprintf("test case %d has unknown status %q", i, tc.Status))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(problems, "; "))
	}

	if len(d.Runtime.AgentConfig) > 0 {
		return validateAgentConfig(d.Runtime.AgentConfig)
	}
	return nil
}

func validateAgentConfig(raw json.RawMessage) error {
	cfg := agtconfig.DefaultAgentConfig()

	var userCfg agtconfig.AgentConfig
	if err := json.Unmarshal(raw, &userCfg); err != nil {
		return fmt.Errorf("%w: agent_config: %v", ErrInvalidDraft, err)
	}

	cfg.Merge(&userCfg)

	if _, err := agent.New(&cfg); err != nil {
		return fmt.Errorf("%w: agent_config: %v", ErrInvalidDraft, err)
	}
	return nil
}

// normalize fills defaults that keep stored rows uniform.
func normalize(d wizard.Draft) wizard.Draft {
	d = d.Clone()
	if d.BasicInfo.Tags == nil {
		d.BasicInfo.Tags = []string{}
	}
	if d.TestCases == nil {
		d.TestCases = []wizard.TestCase{}
	}
	for i := range d.TestCases {
		if d.TestCases[i].Status == "" {
			d.TestCases[i].Status = wizard.TestPending
		}
	}
	return d
}
