package query_test

import (
	"testing"

	"github.com/JaimeStill/agent-market/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "agents", "a").
		Project("id", "ID").
		Project("title", "Title").
		Project("description", "Description").
		Project("status", "Status").
		Project("updated_at", "UpdatedAt")
}

func TestProjectionMap(t *testing.T) {
	pm := newProjection()

	assert.Equal(t, "public.agents a", pm.Table())
	assert.Equal(t, "a", pm.Alias())
	assert.Equal(t, "a.id, a.title, a.description, a.status, a.updated_at", pm.Columns())
	assert.Equal(t, "a.title", pm.Column("Title"))
	assert.Equal(t, "a.updated_at", pm.Column("updated_at"))
	assert.True(t, pm.HasField("Status"))
	assert.False(t, pm.HasField("Secret"))
	assert.Equal(t, "raw", pm.Column("raw"))
}

func TestParseSortFields(t *testing.T) {
	fields := query.ParseSortFields("-UpdatedAt, Title,,")

	require.Len(t, fields, 2)
	assert.Equal(t, query.SortField{Field: "UpdatedAt", Descending: true}, fields[0])
	assert.Equal(t, query.SortField{Field: "Title"}, fields[1])
	assert.Empty(t, query.ParseSortFields(""))
}

func TestBuilder_BuildCount(t *testing.T) {
	status := "draft"
	sql, args := query.NewBuilder(newProjection()).
		WhereEquals("Status", &status).
		BuildCount()

	assert.Equal(t, "SELECT COUNT(*) FROM public.agents a WHERE a.status = $1", sql)
	assert.Equal(t, []any{&status}, args)
}

func TestBuilder_BuildPage_DefaultSort(t *testing.T) {
	sql, args := query.NewBuilder(newProjection(), query.SortField{Field: "UpdatedAt", Descending: true}).
		BuildPage(2, 10)

	assert.Contains(t, sql, "FROM public.agents a ORDER BY a.updated_at DESC LIMIT 10 OFFSET 10")
	assert.Empty(t, args)
}

func TestBuilder_OrderByFields_IgnoresUnknown(t *testing.T) {
	sql, _ := query.NewBuilder(newProjection(), query.SortField{Field: "UpdatedAt"}).
		OrderByFields([]query.SortField{
			{Field: "title"},
			{Field: "1; DROP TABLE agents", Descending: true},
		}).
		BuildPage(1, 20)

	assert.Contains(t, sql, "ORDER BY a.title ASC LIMIT")
	assert.NotContains(t, sql, "DROP")
}

func TestBuilder_ParameterNumbering(t *testing.T) {
	search := "support"
	var nilStatus *string

	sql, args := query.NewBuilder(newProjection()).
		WhereEquals("Status", nilStatus).
		WhereSearch(&search, "Title", "Description").
		WhereIn("ID", []any{"a", "b"}).
		BuildCount()

	assert.Equal(t,
		"SELECT COUNT(*) FROM public.agents a WHERE (a.title ILIKE $1 OR a.description ILIKE $2) AND a.id IN ($3, $4)",
		sql,
	)
	assert.Equal(t, []any{"%support%", "%support%", "a", "b"}, args)
}

func TestBuilder_BuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(newProjection()).BuildSingle("ID", 7)

	assert.Equal(t, "SELECT a.id, a.title, a.description, a.status, a.updated_at FROM public.agents a WHERE a.id = $1", sql)
	assert.Equal(t, []any{7}, args)
}

func TestBuilder_WhereContains_Empty(t *testing.T) {
	empty := ""
	sql, args := query.NewBuilder(newProjection()).WhereContains("Title", &empty).BuildCount()

	assert.Equal(t, "SELECT COUNT(*) FROM public.agents a", sql)
	assert.Empty(t, args)
}
