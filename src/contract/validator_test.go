package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-testing/src/report"
	"contract-testing/src/serialization/openapi"
)

const validatorComponents = `
openapi: 3.0.3
paths: {}
components:
  schemas:
    Product:
      type: object
      required: [id, name, price]
      properties:
        id:
          type: integer
        name:
          type: string
        price:
          type: number
        in_stock:
          type: boolean
        tags:
          type: array
          items:
            type: string
    Node:
      type: object
      required: [value]
      properties:
        value:
          type: integer
        next:
          $ref: "#/components/schemas/Node"
    Loop:
      allOf:
        - $ref: "#/components/schemas/Loop"
    Status:
      type: string
      enum: [active, retired]
    ClosedBox:
      type: object
      additionalProperties: false
      properties:
        label:
          type: string
`

func newTestValidator(t *testing.T, strict bool) (*Validator, *openapi.Document) {
	t.Helper()
	doc, err := openapi.ParseDocument([]byte(validatorComponents))
	require.NoError(t, err)
	return NewValidator(doc, strict), doc
}

func schemaRef(name string) *openapi.Schema {
	return &openapi.Schema{Ref: "#/components/schemas/" + name}
}

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	value, err := DecodeJSON([]byte(raw))
	require.NoError(t, err)
	return value
}

func TestValidateSoundValues(t *testing.T) {
	v, _ := newTestValidator(t, false)

	cases := map[string]string{
		"full product":       `{"id": 7, "name": "widget", "price": 19.99, "in_stock": true, "tags": ["a", "b"]}`,
		"integer price":      `{"id": 7, "name": "widget", "price": 20}`,
		"extra property":     `{"id": 7, "name": "widget", "price": 19.99, "color": "red"}`,
		"whole float for id": `{"id": 7.0, "name": "widget", "price": 1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, v.Validate(decode(t, raw), schemaRef("Product")))
		})
	}
}

func TestValidatePriceAsString(t *testing.T) {
	v, _ := newTestValidator(t, false)

	violations := v.Validate(
		decode(t, `{"id": 7, "name": "widget", "price": "19.99"}`),
		schemaRef("Product"))

	require.Len(t, violations, 1)
	assert.Equal(t, "price", violations[0].Path)
	assert.Equal(t, report.KindTypeMismatch, violations[0].Kind)
	assert.Equal(t, "number", violations[0].Expected)
	assert.Equal(t, `string "19.99"`, violations[0].Actual)
}

func TestValidateIntegerRejectsFraction(t *testing.T) {
	v, _ := newTestValidator(t, false)

	violations := v.Validate(
		decode(t, `{"id": 7.5, "name": "widget", "price": 1}`),
		schemaRef("Product"))

	require.Len(t, violations, 1)
	assert.Equal(t, "id", violations[0].Path)
	assert.Equal(t, report.KindTypeMismatch, violations[0].Kind)
}

func TestValidateMissingRequiredField(t *testing.T) {
	v, _ := newTestValidator(t, false)

	violations := v.Validate(decode(t, `{"id": 7, "name": "widget"}`), schemaRef("Product"))

	require.Len(t, violations, 1)
	assert.Equal(t, "price", violations[0].Path)
	assert.Equal(t, report.KindMissingRequiredField, violations[0].Kind)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	v, _ := newTestValidator(t, false)

	violations := v.Validate(
		decode(t, `{"id": "seven", "price": "cheap", "tags": [1]}`),
		schemaRef("Product"))

	// name missing, id wrong, price wrong, tags[0] wrong: never fail-fast.
	require.Len(t, violations, 4)
	paths := make([]string, 0, len(violations))
	for _, violation := range violations {
		paths = append(paths, violation.Path)
	}
	assert.ElementsMatch(t, []string{"name", "id", "price", "tags[0]"}, paths)
}

func TestValidateNestedArrayPath(t *testing.T) {
	v, _ := newTestValidator(t, false)

	schema := &openapi.Schema{
		Type: openapi.SchemaTypeObject,
		Properties: map[string]*openapi.Schema{
			"items": {Type: openapi.SchemaTypeArray, Items: schemaRef("Product")},
		},
	}

	violations := v.Validate(decode(t, `{"items": [
		{"id": 1, "name": "a", "price": 1},
		{"id": 2, "name": "b", "price": 2},
		{"id": 3, "name": "c", "price": "9.99"}
	]}`), schema)

	require.Len(t, violations, 1)
	assert.Equal(t, "items[2].price", violations[0].Path)
}

func TestValidateNonArrayAgainstArraySchema(t *testing.T) {
	v, _ := newTestValidator(t, false)

	schema := &openapi.Schema{Type: openapi.SchemaTypeArray, Items: schemaRef("Product")}
	violations := v.Validate(decode(t, `{"id": 1}`), schema)

	require.Len(t, violations, 1)
	assert.Equal(t, report.KindTypeMismatch, violations[0].Kind)
	assert.Equal(t, "array", violations[0].Expected)
	assert.Equal(t, "object", violations[0].Actual)
}

func TestValidateNullability(t *testing.T) {
	v, _ := newTestValidator(t, false)

	nullable := &openapi.Schema{Type: openapi.SchemaTypeString, Nullable: true}
	assert.Empty(t, v.Validate(nil, nullable))

	strict := &openapi.Schema{Type: openapi.SchemaTypeString}
	violations := v.Validate(nil, strict)
	require.Len(t, violations, 1)
	assert.Equal(t, "null", violations[0].Actual)
}

func TestValidateEnum(t *testing.T) {
	v, _ := newTestValidator(t, false)

	assert.Empty(t, v.Validate(decode(t, `"active"`), schemaRef("Status")))

	violations := v.Validate(decode(t, `"deleted"`), schemaRef("Status"))
	require.Len(t, violations, 1)
	assert.Equal(t, report.KindEnumMismatch, violations[0].Kind)
}

func TestValidateFormats(t *testing.T) {
	v, _ := newTestValidator(t, false)

	cases := []struct {
		format string
		good   string
		bad    string
	}{
		{"date", "2024-02-29", "yesterday"},
		{"date-time", "2024-02-29T12:00:00Z", "2024-02-29"},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", "not-a-uuid"},
		{"email", "alice@example.com", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			schema := &openapi.Schema{Type: openapi.SchemaTypeString, Format: tc.format}
			assert.Empty(t, v.Validate(tc.good, schema))

			violations := v.Validate(tc.bad, schema)
			require.Len(t, violations, 1)
			assert.Equal(t, report.KindBadFormat, violations[0].Kind)
		})
	}

	t.Run("unknown formats are advisory", func(t *testing.T) {
		schema := &openapi.Schema{Type: openapi.SchemaTypeString, Format: "hostname"}
		assert.Empty(t, v.Validate("anything", schema))
	})
}

func TestValidateRecursiveSchema(t *testing.T) {
	v, _ := newTestValidator(t, false)

	t.Run("linked list shaped value passes", func(t *testing.T) {
		value := decode(t, `{"value": 1, "next": {"value": 2, "next": {"value": 3}}}`)
		assert.Empty(t, v.Validate(value, schemaRef("Node")))
	})

	t.Run("wrong type deep in the chain is reported at its path", func(t *testing.T) {
		value := decode(t, `{"value": 1, "next": {"value": "two"}}`)
		violations := v.Validate(value, schemaRef("Node"))
		require.Len(t, violations, 1)
		assert.Equal(t, "next.value", violations[0].Path)
		assert.Equal(t, report.KindTypeMismatch, violations[0].Kind)
	})

	t.Run("reference cycle without value consumption terminates", func(t *testing.T) {
		violations := v.Validate(decode(t, `{"anything": true}`), schemaRef("Loop"))
		require.Len(t, violations, 1)
		assert.Equal(t, report.KindCycle, violations[0].Kind)
	})
}

func TestValidateUndeclaredProperties(t *testing.T) {
	t.Run("open world by default", func(t *testing.T) {
		v, _ := newTestValidator(t, false)
		value := decode(t, `{"label": "x", "surprise": 1}`)

		violations := v.Validate(value, &openapi.Schema{
			Type:       openapi.SchemaTypeObject,
			Properties: map[string]*openapi.Schema{"label": {Type: openapi.SchemaTypeString}},
		})
		assert.Empty(t, violations)
	})

	t.Run("additionalProperties false closes the object", func(t *testing.T) {
		v, _ := newTestValidator(t, false)
		violations := v.Validate(decode(t, `{"label": "x", "surprise": 1}`), schemaRef("ClosedBox"))
		require.Len(t, violations, 1)
		assert.Equal(t, "surprise", violations[0].Path)
		assert.Equal(t, report.KindUndeclaredProperty, violations[0].Kind)
	})

	t.Run("strict mode closes every object", func(t *testing.T) {
		v, _ := newTestValidator(t, true)
		violations := v.Validate(
			decode(t, `{"id": 1, "name": "widget", "price": 1, "color": "red"}`),
			schemaRef("Product"))
		require.Len(t, violations, 1)
		assert.Equal(t, "color", violations[0].Path)
		assert.Equal(t, report.KindUndeclaredProperty, violations[0].Kind)
	})
}

func TestValidateUnresolvedReference(t *testing.T) {
	v, _ := newTestValidator(t, false)

	violations := v.Validate(decode(t, `{}`), schemaRef("Ghost"))
	require.Len(t, violations, 1)
	assert.Equal(t, report.KindUnresolvedReference, violations[0].Kind)
}
