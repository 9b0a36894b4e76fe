package openapi

// Components holds reusable schema and response definitions.
type Components struct {
	Schemas         map[string]*Schema         `json:"schemas,omitempty"`
	Responses       map[string]*Response       `json:"responses,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `json:"securitySchemes,omitempty"`
}

// NewComponents returns the schemas and responses shared by every API group.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "1-based page number"},
					"page_size": {Type: "integer", Description: "Results per page"},
					"search":    {Type: "string", Description: "Case-insensitive text search"},
					"sort": {
						Type:        "array",
						Description: "Sort fields",
						Items: &Schema{
							Type: "object",
							Properties: map[string]*Schema{
								"field":      {Type: "string"},
								"descending": {Type: "boolean"},
							},
						},
					},
				},
			},
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error": {Type: "string"},
				},
				Required: []string{"error"},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    errorResponse("Invalid request"),
			"Unauthorized":  errorResponse("Missing or malformed session"),
			"Unavailable":   errorResponse("Service temporarily unable to accept the request"),
			"NotFound":      errorResponse("Resource not found"),
			"Conflict":      errorResponse("Resource conflict"),
			"Unprocessable": errorResponse("Request is well-formed but cannot be processed"),
		},
	}
}

// AddSchemas merges schemas into the component set.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		c.Schemas[name] = schema
	}
}

// AddResponses merges responses into the component set.
func (c *Components) AddResponses(responses map[string]*Response) {
	for name, response := range responses {
		c.Responses[name] = response
	}
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}
