package wizard_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteps_Order(t *testing.T) {
	steps := wizard.Steps(wizard.Draft{})

	require.Len(t, steps, wizard.StepCount)
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"basic-info", "runtime", "integration", "testing", "deployment"}, ids)

	assert.False(t, steps[wizard.StepBasicInfo].Completed)
	assert.False(t, steps[wizard.StepRuntime].Completed)
	assert.True(t, steps[wizard.StepIntegration].Completed)
	assert.False(t, steps[wizard.StepTesting].Completed)
	assert.True(t, steps[wizard.StepDeployment].Completed)
}

func TestStepComplete_OutOfRange(t *testing.T) {
	assert.False(t, wizard.StepComplete(-1, wizard.Draft{}))
	assert.False(t, wizard.StepComplete(wizard.StepCount, wizard.Draft{}))
}

func TestValidate(t *testing.T) {
	err := wizard.Validate(wizard.Draft{BasicInfo: supportBot()})
	require.ErrorIs(t, err, wizard.ErrIncomplete)
	assert.Contains(t, err.Error(), "runtime")
	assert.Contains(t, err.Error(), "testing")
	assert.NotContains(t, err.Error(), "basic-info")

	complete := wizard.Draft{
		BasicInfo: supportBot(),
		Runtime:   chatRuntime(),
		TestCases: []wizard.TestCase{{Name: "T1", Input: "hi"}},
	}
	assert.NoError(t, wizard.Validate(complete))
}

func TestTestStatus_Valid(t *testing.T) {
	assert.True(t, wizard.TestStatus("").Valid())
	assert.True(t, wizard.TestPassed.Valid())
	assert.False(t, wizard.TestStatus("skipped").Valid())
}

func TestHandler_Steps(t *testing.T) {
	h := wizard.NewHandler(logging.Discard())
	rec := httptest.NewRecorder()

	h.Steps(rec, httptest.NewRequest(http.MethodGet, "/wizard/steps", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var steps []wizard.Step
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	assert.Len(t, steps, wizard.StepCount)
}

func TestHandler_Validate(t *testing.T) {
	h := wizard.NewHandler(logging.Discard())

	body, err := json.Marshal(wizard.Draft{BasicInfo: supportBot()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Validate(rec, httptest.NewRequest(http.MethodPost, "/wizard/validate", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var eval wizard.Evaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.False(t, eval.Complete)
	assert.True(t, eval.Steps[wizard.StepBasicInfo].Completed)
	assert.NotEmpty(t, eval.Error)
}

func TestHandler_Validate_BadBody(t *testing.T) {
	h := wizard.NewHandler(logging.Discard())
	rec := httptest.NewRecorder()

	h.Validate(rec, httptest.NewRequest(http.MethodPost, "/wizard/validate", bytes.NewReader([]byte("{"))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
