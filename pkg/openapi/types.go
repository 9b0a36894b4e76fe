// Package openapi builds an OpenAPI 3.1 document from route declarations.
package openapi

// Spec is the root document.
type Spec struct {
	OpenAPI    string                `json:"openapi"`
	Info       *Info                 `json:"info"`
	Servers    []*Server             `json:"servers,omitempty"`
	Security   []SecurityRequirement `json:"security,omitempty"`
	Paths      map[string]*PathItem  `json:"paths"`
	Components *Components           `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// SecurityRequirement maps a scheme name to its scopes. Header keys have none.
type SecurityRequirement map[string][]string

// SecurityScheme describes how callers authenticate. Only apiKey schemes are
// produced here.
type SecurityScheme struct {
	Type        string `json:"type"`
	In          string `json:"in"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PathItem holds the operations of one path, keyed by method.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

type Operation struct {
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Parameters  []*Parameter      `json:"parameters,omitempty"`
	RequestBody *RequestBody      `json:"requestBody,omitempty"`
	Responses   map[int]*Response `json:"responses"`
	// Security overrides the document default. An empty, non-nil slice marks
	// the operation public.
	Security []SecurityRequirement `json:"security,omitempty"`
}

type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Required    bool    `json:"required,omitempty"`
	Description string  `json:"description,omitempty"`
	Schema      *Schema `json:"schema"`
}

type RequestBody struct {
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content"`
}

// Response is either inline or a $ref into components.
type Response struct {
	Ref         string                `json:"$ref,omitempty"`
	Description string                `json:"description,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

// Schema is the JSON Schema subset the API documents use.
type Schema struct {
	Ref         string             `json:"$ref,omitempty"`
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
	MaxLength   *int               `json:"maxLength,omitempty"`
	Example     any                `json:"example,omitempty"`
}

const (
	componentSchemas   = "#/components/schemas/"
	componentResponses = "#/components/responses/"
	mediaJSON          = "application/json"
)

func SchemaRef(name string) *Schema {
	return &Schema{Ref: componentSchemas + name}
}

func ResponseRef(name string) *Response {
	return &Response{Ref: componentResponses + name}
}

func jsonContent(s *Schema) map[string]*MediaType {
	return map[string]*MediaType{mediaJSON: {Schema: s}}
}

// RequestBodyJSON is a JSON body whose schema is the named component.
func RequestBodyJSON(schemaName string, required bool) *RequestBody {
	return &RequestBody{Required: required, Content: jsonContent(SchemaRef(schemaName))}
}

// ResponseJSON is a JSON response whose schema is the named component.
func ResponseJSON(description, schemaName string) *Response {
	return &Response{Description: description, Content: jsonContent(SchemaRef(schemaName))}
}

// ArrayOf is an array of the named component.
func ArrayOf(schemaName string) *Schema {
	return &Schema{Type: "array", Items: SchemaRef(schemaName)}
}

// String returns a plain string schema, capped at maxLen when maxLen > 0.
func String(maxLen int) *Schema {
	s := &Schema{Type: "string"}
	if maxLen > 0 {
		s.MaxLength = &maxLen
	}
	return s
}

// Number and Integer take optional bounds; nil leaves a side open.
func Number(lo, hi *float64) *Schema {
	return &Schema{Type: "number", Minimum: lo, Maximum: hi}
}

func Integer(lo, hi *float64) *Schema {
	return &Schema{Type: "integer", Minimum: lo, Maximum: hi}
}

// Bound is a convenience for Number and Integer limits.
func Bound(f float64) *float64 { return &f }

// PathParam is a required path segment holding a UUID.
func PathParam(name, description string) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "path",
		Required:    true,
		Description: description,
		Schema:      &Schema{Type: "string", Format: "uuid"},
	}
}

func QueryParam(name, typ, description string, required bool) *Parameter {
	return &Parameter{
		Name:        name,
		In:          "query",
		Required:    required,
		Description: description,
		Schema:      &Schema{Type: typ},
	}
}
