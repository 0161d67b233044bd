package openapi

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

type Document struct {
	OpenAPI    string           `yaml:"openapi"`
	Info       Info             `yaml:"info"`
	Servers    []Server         `yaml:"servers"`
	Paths      map[string]*Path `yaml:"paths"`
	Components Components       `yaml:"components"`

	resolver   *Resolver
	operations []*OperationSpec
}

type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// LoadDocument reads and parses an OpenAPI document from disk.
func LoadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return ParseDocument(content)
}

// ParseDocument parses an OpenAPI 3.x document, verifies every reachable
// $ref target exists, and builds the ordered operation list. Any failure
// here is fatal; no request is ever sent against a broken document.
func ParseDocument(content []byte) (*Document, error) {
	document := Document{}
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, &ParseError{Err: err}
	}
	if !strings.HasPrefix(document.OpenAPI, "3.") {
		return nil, &ParseError{Err: fmt.Errorf("unsupported openapi version %q", document.OpenAPI)}
	}

	document.resolver = &Resolver{doc: &document}

	order, err := declarationOrder(content)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if err := document.checkRefs(); err != nil {
		return nil, err
	}
	if err := document.buildOperations(order); err != nil {
		return nil, err
	}
	return &document, nil
}

// Resolver exposes lazy $ref lookup for validation.
func (d *Document) Resolver() *Resolver { return d.resolver }

// ServerURL returns the first declared server URL, if any.
func (d *Document) ServerURL() string {
	if len(d.Servers) > 0 {
		return d.Servers[0].URL
	}
	return ""
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

type pathMethod struct {
	path   string
	method string
}

// declarationOrder extracts the (path, method) sequence as written in the
// document. Go maps lose ordering, so the raw YAML is walked a second time
// with MapSlice, which preserves it.
func declarationOrder(content []byte) ([]pathMethod, error) {
	var raw struct {
		Paths yaml.MapSlice `yaml:"paths"`
	}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	var order []pathMethod
	for _, item := range raw.Paths {
		path, ok := item.Key.(string)
		if !ok {
			continue
		}
		methods, ok := item.Value.(yaml.MapSlice)
		if !ok {
			continue
		}
		for _, m := range methods {
			method, ok := m.Key.(string)
			if !ok || !httpMethods[strings.ToLower(method)] {
				continue
			}
			order = append(order, pathMethod{path: path, method: strings.ToUpper(method)})
		}
	}
	return order, nil
}

// checkRefs eagerly verifies that every $ref reachable from components or
// paths has a target. Resolution itself stays lazy; this only guarantees
// that lazy lookups during a run cannot dead-end.
func (d *Document) checkRefs() error {
	visited := map[*Schema]bool{}

	for _, schema := range d.Components.Schemas {
		if err := d.resolver.checkSchemaRefs(schema, visited); err != nil {
			return err
		}
	}

	checkParams := func(params []*Parameter) error {
		for _, p := range params {
			resolved, err := d.resolver.resolveParameter(p)
			if err != nil {
				return err
			}
			if err := d.resolver.checkSchemaRefs(resolved.Schema, visited); err != nil {
				return err
			}
		}
		return nil
	}

	for _, path := range d.Paths {
		if err := checkParams(path.Parameters); err != nil {
			return err
		}
		for _, op := range path.Operations {
			if op == nil {
				continue
			}
			if err := checkParams(op.Parameters); err != nil {
				return err
			}
			if op.RequestBody != nil {
				body, err := d.resolver.resolveRequestBody(op.RequestBody)
				if err != nil {
					return err
				}
				if err := d.resolver.checkSchemaRefs(jsonSchema(body.Content), visited); err != nil {
					return err
				}
			}
			for _, response := range op.Responses {
				resolved, err := d.resolver.resolveResponse(response)
				if err != nil {
					return err
				}
				if err := d.resolver.checkSchemaRefs(jsonSchema(resolved.Content), visited); err != nil {
					return err
				}
				for _, h := range resolved.Headers {
					header, err := d.resolver.resolveHeader(h)
					if err != nil {
						return err
					}
					if err := d.resolver.checkSchemaRefs(header.Schema, visited); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
