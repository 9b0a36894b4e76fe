package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/agent-market/pkg/openapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComponents(t *testing.T) {
	c := openapi.NewComponents()

	assert.Contains(t, c.Schemas, "PageRequest")
	for _, name := range []string{"BadRequest", "NotFound", "Conflict"} {
		assert.Contains(t, c.Responses, name)
	}

	c.AddSchemas(map[string]*openapi.Schema{"Agent": {Type: "object"}})
	assert.Contains(t, c.Schemas, "Agent")
	assert.Contains(t, c.Schemas, "PageRequest")
}

func TestSpec_AddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")

	spec.AddOperation("/api/agents", "GET", &openapi.Operation{Summary: "List"})
	spec.AddOperation("/api/agents", "POST", &openapi.Operation{Summary: "Create"})
	spec.AddOperation("/api/agents", "PATCH", &openapi.Operation{Summary: "Ignored"})

	item := spec.Paths["/api/agents"]
	require.NotNil(t, item)
	assert.Equal(t, "List", item.Get.Summary)
	assert.Equal(t, "Create", item.Post.Summary)
	assert.Nil(t, item.Put)
}

func TestMarshalJSON(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddOperation("/x", "GET", &openapi.Operation{
		Responses: map[int]*openapi.Response{200: {Description: "OK"}},
	})

	data, err := openapi.MarshalJSON(spec)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api", "openapi.json")

	require.NoError(t, openapi.WriteJSON(openapi.NewSpec("Test", "1.0.0"), path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestServeSpec(t *testing.T) {
	w := httptest.NewRecorder()
	openapi.ServeSpec([]byte(`{"openapi":"3.1.0"}`))(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"openapi":"3.1.0"}`, w.Body.String())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "#/components/schemas/Agent", openapi.SchemaRef("Agent").Ref)
	assert.Equal(t, "#/components/responses/NotFound", openapi.ResponseRef("NotFound").Ref)

	p := openapi.PathParam("id", "Agent ID")
	assert.True(t, p.Required)
	assert.Equal(t, "uuid", p.Schema.Format)

	arr := openapi.ArrayOf("Agent")
	assert.Equal(t, "array", arr.Type)
}

func TestSpec_RequireHeader(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.RequireHeader("session", "X-User-ID", "Caller user id")

	require.Contains(t, spec.Components.SecuritySchemes, "session")
	assert.Equal(t, "header", spec.Components.SecuritySchemes["session"].In)
	assert.Equal(t, "X-User-ID", spec.Components.SecuritySchemes["session"].Name)
	require.Len(t, spec.Security, 1)
	assert.Contains(t, spec.Security[0], "session")
}

func TestSchemaConstructors(t *testing.T) {
	s := openapi.String(200)
	require.NotNil(t, s.MaxLength)
	assert.Equal(t, 200, *s.MaxLength)
	assert.Nil(t, openapi.String(0).MaxLength)

	n := openapi.Number(openapi.Bound(0), openapi.Bound(2))
	assert.Equal(t, "number", n.Type)
	assert.Equal(t, 2.0, *n.Maximum)
	assert.Nil(t, openapi.Integer(openapi.Bound(1), nil).Maximum)
}
