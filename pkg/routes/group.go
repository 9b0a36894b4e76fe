// Package routes declares HTTP routes together with their OpenAPI operations
// so that registration and documentation come from one definition.
package routes

import (
	"net/http"

	"github.com/JaimeStill/agent-market/pkg/openapi"
)

// Route is a single method and pattern bound to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
	Schemas     map[string]*openapi.Schema
}

// AddToSpec documents the group's routes under basePath. Operations without
// tags inherit the group's tags.
func (g *Group) AddToSpec(basePath string, spec *openapi.Spec) {
	g.addToSpec(basePath, spec)
}

func (g *Group) addToSpec(basePath string, spec *openapi.Spec) {
	if len(g.Schemas) > 0 {
		spec.Components.AddSchemas(g.Schemas)
	}

	prefix := basePath + g.Prefix
	for _, route := range g.Routes {
		if route.OpenAPI == nil {
			continue
		}
		op := route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = g.Tags
		}
		spec.AddOperation(prefix+route.Pattern, route.Method, op)
	}

	for i := range g.Children {
		g.Children[i].addToSpec(prefix, spec)
	}
}

// Register binds every route in groups to mux and documents them in spec.
// Mux patterns are relative to the module, while spec paths include basePath.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		register(mux, "", group)
		group.AddToSpec(basePath, spec)
	}
}

func register(mux *http.ServeMux, parent string, group Group) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		register(mux, prefix, child)
	}
}
