package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete is returned when a draft is submitted or deployed while a
// gated step is still incomplete.
var ErrIncomplete = errors.New("agent draft is incomplete")

const (
	StepBasicInfo = iota
	StepRuntime
	StepIntegration
	StepTesting
	StepDeployment
)

// Step describes one wizard step.
type Step struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type stepDef struct {
	id    string
	title string
	gate  func(Draft) bool
}

var steps = []stepDef{
	{"basic-info", "Basic Information", basicInfoComplete},
	{"runtime", "Runtime Configuration", runtimeComplete},
	{"integration", "Integration Settings", always},
	{"testing", "Testing", testingComplete},
	{"deployment", "Deployment", always},
}

// StepCount is the fixed number of wizard steps.
var StepCount = len(steps)

func basicInfoComplete(d Draft) bool {
	return notBlank(d.BasicInfo.Title) &&
		notBlank(d.BasicInfo.Description) &&
		notBlank(d.BasicInfo.Category)
}

func runtimeComplete(d Draft) bool {
	return notBlank(d.Runtime.Model) && notBlank(d.Runtime.SystemPrompt)
}

func testingComplete(d Draft) bool {
	return len(d.TestCases) > 0
}

func always(Draft) bool { return true }

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Steps returns the step descriptors with completion evaluated against d.
func Steps(d Draft) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = Step{ID: s.id, Title: s.title, Completed: s.gate(d)}
	}
	return out
}

// StepComplete evaluates the gate of step index against d. Out of range
// indexes are never complete.
func StepComplete(index int, d Draft) bool {
	if index < 0 || index >= len(steps) {
		return false
	}
	return steps[index].gate(d)
}

// Validate returns an error wrapping ErrIncomplete that names every gated
// step d does not satisfy.
func Validate(d Draft) error {
	var missing []string
	for _, s := range steps {
		if !s.gate(d) {
			missing = append(missing, s.id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
