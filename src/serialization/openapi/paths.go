package openapi

type Path struct {
	Summary     string                `yaml:"summary"`
	Description string                `yaml:"description"`
	Parameters  []*Parameter          `yaml:"parameters"`
	Operations  map[string]*Operation `yaml:",inline"`
}

type Operation struct {
	Summary     string               `yaml:"summary"`
	OperationId string               `yaml:"operationId"`
	Description string               `yaml:"description"`
	Tags        []string             `yaml:"tags"`
	Parameters  []*Parameter         `yaml:"parameters"`
	RequestBody *RequestBody         `yaml:"requestBody"`
	Responses   map[string]*Response `yaml:"responses"`
}

type RequestBody struct {
	Description string               `yaml:"description"`
	Required    bool                 `yaml:"required"`
	Content     map[string]MediaType `yaml:"content"`

	Ref string `yaml:"$ref"`
}

type Response struct {
	Description string               `yaml:"description"`
	Headers     map[string]*Header   `yaml:"headers"`
	Content     map[string]MediaType `yaml:"content"`

	Ref string `yaml:"$ref"`
}

type MediaType struct {
	Schema *Schema `yaml:"schema"`
}

// jsonSchema picks the schema of the JSON media type, falling back to the
// first declared content entry when no JSON variant is present.
func jsonSchema(content map[string]MediaType) *Schema {
	for _, key := range []string{"application/json", "application/json; charset=utf-8"} {
		if mt, ok := content[key]; ok {
			return mt.Schema
		}
	}
	for _, mt := range content {
		return mt.Schema
	}
	return nil
}
