package openapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsDocument = `
openapi: 3.0.3
info:
  title: Products API
  version: 1.0.0
servers:
  - url: http://localhost:8080
paths:
  /products:
    get:
      operationId: listProducts
      responses:
        "200":
          description: all products
          headers:
            X-Total-Count:
              required: true
              schema:
                type: integer
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Product"
    post:
      operationId: createProduct
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewProduct"
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Product"
  /products/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: integer
    get:
      operationId: getProduct
      parameters:
        - name: expand
          in: query
          schema:
            type: string
      responses:
        "200":
          description: one product
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Product"
        "404":
          description: not found
    delete:
      responses:
        "204":
          description: deleted
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
        tags:
          type: array
          items:
            type: string
    NewProduct:
      type: object
      required: [name, price]
      properties:
        name:
          type: string
        price:
          type: number
`

func TestParseDocumentOperationsInDeclarationOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(productsDocument))
	require.NoError(t, err)

	ops := doc.Operations()
	require.Len(t, ops, 4)

	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	assert.Equal(t, []string{"listProducts", "createProduct", "getProduct", "DELETE /products/{id}"}, ids)

	// Restartable: a second call yields the same sequence.
	assert.Equal(t, ops, doc.Operations())
}

func TestParseDocumentOperationDetails(t *testing.T) {
	doc, err := ParseDocument([]byte(productsDocument))
	require.NoError(t, err)
	ops := doc.Operations()

	t.Run("response headers", func(t *testing.T) {
		list := ops[0]
		require.Contains(t, list.Responses, 200)
		assert.Equal(t, []string{"X-Total-Count"}, list.Responses[200].RequiredHeaders)
		require.NotNil(t, list.Responses[200].BodySchema)
		assert.Equal(t, SchemaTypeArray, list.Responses[200].BodySchema.Type)
	})

	t.Run("request body", func(t *testing.T) {
		create := ops[1]
		assert.Equal(t, "POST", create.Method)
		assert.True(t, create.RequestBodyReq)
		require.NotNil(t, create.RequestBodySchema)
		assert.Equal(t, "#/components/schemas/NewProduct", create.RequestBodySchema.Ref)
	})

	t.Run("path level parameters are inherited", func(t *testing.T) {
		get := ops[2]
		require.Len(t, get.PathParams, 1)
		assert.Equal(t, "id", get.PathParams[0].Name)
		require.Len(t, get.QueryParams, 1)
		assert.Equal(t, "expand", get.QueryParams[0].Name)

		assert.ElementsMatch(t, []int{200, 404}, get.DeclaredStatuses())
	})

	t.Run("response without content has no body schema", func(t *testing.T) {
		del := ops[3]
		require.Contains(t, del.Responses, 204)
		assert.Nil(t, del.Responses[204].BodySchema)
	})
}

func TestParseDocumentServerURL(t *testing.T) {
	doc, err := ParseDocument([]byte(productsDocument))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", doc.ServerURL())
}

func TestParseDocumentMalformed(t *testing.T) {
	var perr *ParseError

	_, err := ParseDocument([]byte("\t not yaml"))
	require.Error(t, err)
	assert.True(t, errors.As(err, &perr))

	_, err = ParseDocument([]byte("swagger: \"2.0\"\npaths: {}\n"))
	require.Error(t, err)
	assert.True(t, errors.As(err, &perr))
}

func TestParseDocumentUnresolvedReference(t *testing.T) {
	const doc = `
openapi: 3.0.0
paths:
  /things:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Missing"
`
	_, err := ParseDocument([]byte(doc))
	require.Error(t, err)

	var uerr *UnresolvedReferenceError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "#/components/schemas/Missing", uerr.Ref)
}

func TestParseDocumentCyclicSchemas(t *testing.T) {
	const doc = `
openapi: 3.0.0
paths:
  /nodes:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Node"
components:
  schemas:
    Node:
      type: object
      required: [value]
      properties:
        value:
          type: integer
        next:
          $ref: "#/components/schemas/Node"
`
	parsed, err := ParseDocument([]byte(doc))
	require.NoError(t, err, "cyclic references are legal and must load")

	node, ok := parsed.Resolver().Schema("#/components/schemas/Node")
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/Node", node.Properties["next"].Ref,
		"references stay lazy, never inlined")
}

func TestResolverRefName(t *testing.T) {
	r := &Resolver{doc: &Document{}}

	_, ok := r.Schema("#/components/schemas/")
	assert.False(t, ok)
	_, ok = r.Schema("#/components/parameters/Nope")
	assert.False(t, ok)
	_, ok = r.Schema("external.yaml#/components/schemas/X")
	assert.False(t, ok)
}

func TestNormalizeValue(t *testing.T) {
	in := map[interface{}]interface{}{
		"name":  "widget",
		"count": 3,
		"nested": map[interface{}]interface{}{
			"ok": true,
		},
		"list": []interface{}{1, "two"},
	}

	out, ok := NormalizeValue(in).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(3), out["count"])
	assert.Equal(t, map[string]interface{}{"ok": true}, out["nested"])
	assert.Equal(t, []interface{}{int64(1), "two"}, out["list"])
}
