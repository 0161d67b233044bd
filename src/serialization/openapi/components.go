package openapi

type SchemaType string

const (
	SchemaTypeObject  SchemaType = "object"
	SchemaTypeArray   SchemaType = "array"
	SchemaTypeString  SchemaType = "string"
	SchemaTypeInteger SchemaType = "integer"
	SchemaTypeNumber  SchemaType = "number"
	SchemaTypeBoolean SchemaType = "boolean"
)

type Schema struct {
	Title       string             `yaml:"title"`
	Type        SchemaType         `yaml:"type"`
	Format      string             `yaml:"format"`
	Description string             `yaml:"description"`
	Properties  map[string]*Schema `yaml:"properties"`
	Required    []string           `yaml:"required"`
	Nullable    bool               `yaml:"nullable"`
	Items       *Schema            `yaml:"items"`
	Enum        []interface{}      `yaml:"enum"`
	Default     interface{}        `yaml:"default"`
	Example     interface{}        `yaml:"example"`

	// additionalProperties is either a bool or a nested schema; only the
	// boolean false form changes validation (closed object).
	AdditionalProperties interface{} `yaml:"additionalProperties"`

	AnyOf []*Schema `yaml:"anyOf"`
	OneOf []*Schema `yaml:"oneOf"`
	AllOf []*Schema `yaml:"allOf"`

	Ref string `yaml:"$ref"`
}

func (s *Schema) Requires(key string) bool {
	for _, val := range s.Required {
		if val == key {
			return true
		}
	}
	return false
}

// Closed reports whether the object schema forbids undeclared properties
// (additionalProperties: false).
func (s *Schema) Closed() bool {
	b, ok := s.AdditionalProperties.(bool)
	return ok && !b
}

type ParameterIn string

const (
	ParameterInQuery  ParameterIn = "query"
	ParameterInHeader ParameterIn = "header"
	ParameterInPath   ParameterIn = "path"
	ParameterInCookie ParameterIn = "cookie"
)

type Parameter struct {
	Name            string      `yaml:"name"`
	In              ParameterIn `yaml:"in"`
	Description     string      `yaml:"description"`
	Required        bool        `yaml:"required"`
	Deprecated      bool        `yaml:"deprecated"`
	AllowEmptyValue bool        `yaml:"allowEmptyValue"`

	Ref string `yaml:"$ref"`

	Schema *Schema `yaml:"schema"`
}

type Header struct {
	Description string  `yaml:"description"`
	Required    bool    `yaml:"required"`
	Schema      *Schema `yaml:"schema"`

	Ref string `yaml:"$ref"`
}

type Components struct {
	Schemas       map[string]*Schema      `yaml:"schemas"`
	Parameters    map[string]*Parameter   `yaml:"parameters"`
	Responses     map[string]*Response    `yaml:"responses"`
	RequestBodies map[string]*RequestBody `yaml:"requestBodies"`
	Headers       map[string]*Header      `yaml:"headers"`
}
