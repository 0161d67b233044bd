package contract

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"contract-testing/src/serialization/openapi"
	"contract-testing/src/transport"
)

// Overrides carries fixture data for one operation: known-valid IDs, session
// headers, a prepared body. They are explicit per-run inputs, never global
// state, and they replace the synthesizer's derived defaults.
type Overrides struct {
	Params  map[string]interface{}
	Headers map[string]string
	Body    []byte
}

func (o *Overrides) param(name string) (interface{}, bool) {
	if o == nil || o.Params == nil {
		return nil, false
	}
	v, ok := o.Params[name]
	return openapi.NormalizeValue(v), ok
}

// UnsatisfiableParameterError means a required parameter had no override and
// no default could be derived from its schema. The operation is recorded as
// errored; the run continues.
type UnsatisfiableParameterError struct {
	Operation string
	Parameter string
}

func (e *UnsatisfiableParameterError) Error() string {
	return fmt.Sprintf("operation %s: no override or derivable default for required parameter %q",
		e.Operation, e.Parameter)
}

// Synthesizer builds concrete requests from operation specs.
type Synthesizer struct {
	resolver *openapi.Resolver
}

func NewSynthesizer(doc *openapi.Document) *Synthesizer {
	return &Synthesizer{resolver: doc.Resolver()}
}

// Synthesize fills the path template, required query and header parameters,
// and the request body, preferring override values over schema-derived
// defaults.
func (s *Synthesizer) Synthesize(op *openapi.OperationSpec, baseURL string, ov *Overrides) (*transport.LiveRequest, error) {
	path := op.PathTemplate
	for _, p := range op.PathParams {
		value, ok := s.paramValue(p, ov)
		if !ok {
			return nil, &UnsatisfiableParameterError{Operation: op.ID, Parameter: p.Name}
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(scalarString(value)))
	}

	query := url.Values{}
	for _, q := range op.QueryParams {
		if value, ok := ov.param(q.Name); ok {
			query.Set(q.Name, scalarString(value))
			continue
		}
		if !q.Required {
			continue
		}
		value, ok := s.defaultFor(q.Schema, nil)
		if !ok {
			return nil, &UnsatisfiableParameterError{Operation: op.ID, Parameter: q.Name}
		}
		query.Set(q.Name, scalarString(value))
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	for _, h := range op.HeaderParams {
		if value, ok := ov.param(h.Name); ok {
			header.Set(h.Name, scalarString(value))
			continue
		}
		if !h.Required {
			continue
		}
		value, ok := s.defaultFor(h.Schema, nil)
		if !ok {
			return nil, &UnsatisfiableParameterError{Operation: op.ID, Parameter: h.Name}
		}
		header.Set(h.Name, scalarString(value))
	}

	body, err := s.synthesizeBody(op, ov)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		header.Set("Content-Type", "application/json")
	}
	if ov != nil {
		for name, value := range ov.Headers {
			header.Set(name, value)
		}
	}

	target := strings.TrimSuffix(baseURL, "/") + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	return &transport.LiveRequest{
		Method: op.Method,
		URL:    target,
		Header: header,
		Body:   body,
	}, nil
}

func (s *Synthesizer) synthesizeBody(op *openapi.OperationSpec, ov *Overrides) ([]byte, error) {
	if ov != nil && len(ov.Body) > 0 {
		return ov.Body, nil
	}
	if op.RequestBodySchema == nil {
		return nil, nil
	}
	value, ok := s.defaultFor(op.RequestBodySchema, nil)
	if !ok {
		if op.RequestBodyReq {
			return nil, &UnsatisfiableParameterError{Operation: op.ID, Parameter: "requestBody"}
		}
		return nil, nil
	}
	return json.Marshal(value)
}

func (s *Synthesizer) paramValue(p *openapi.Parameter, ov *Overrides) (interface{}, bool) {
	if value, ok := ov.param(p.Name); ok {
		return value, true
	}
	return s.defaultFor(p.Schema, nil)
}

// Deterministic default per primitive kind; the same operation always
// synthesizes the same request.
const (
	defaultString   = "test"
	defaultDate     = "2020-01-01"
	defaultDateTime = "2020-01-01T00:00:00Z"
	defaultUUID     = "00000000-0000-0000-0000-000000000000"
	defaultEmail    = "test@example.com"
)

// defaultFor derives a value from a schema node. seen guards against $ref
// cycles: a revisited pointer yields no value, so recursive optional
// properties are simply omitted from synthesized bodies.
func (s *Synthesizer) defaultFor(schema *openapi.Schema, seen map[string]bool) (interface{}, bool) {
	if schema == nil {
		return nil, false
	}
	if schema.Ref != "" {
		if seen[schema.Ref] {
			return nil, false
		}
		target, ok := s.resolver.Schema(schema.Ref)
		if !ok {
			return nil, false
		}
		next := make(map[string]bool, len(seen)+1)
		for k := range seen {
			next[k] = true
		}
		next[schema.Ref] = true
		return s.defaultFor(target, next)
	}

	if schema.Default != nil {
		return openapi.NormalizeValue(schema.Default), true
	}
	if schema.Example != nil {
		return openapi.NormalizeValue(schema.Example), true
	}
	if len(schema.Enum) > 0 {
		return openapi.NormalizeValue(schema.Enum[0]), true
	}

	switch schema.Type {
	case openapi.SchemaTypeInteger:
		return int64(1), true
	case openapi.SchemaTypeNumber:
		return float64(1), true
	case openapi.SchemaTypeBoolean:
		return true, true
	case openapi.SchemaTypeString:
		switch schema.Format {
		case "date":
			return defaultDate, true
		case "date-time":
			return defaultDateTime, true
		case "uuid":
			return defaultUUID, true
		case "email":
			return defaultEmail, true
		}
		return defaultString, true
	case openapi.SchemaTypeObject:
		return s.defaultObject(schema, seen)
	case openapi.SchemaTypeArray:
		if value, ok := s.defaultFor(schema.Items, seen); ok {
			return []interface{}{value}, true
		}
		return []interface{}{}, true
	}

	if len(schema.AllOf) > 0 {
		merged := map[string]interface{}{}
		for _, sub := range schema.AllOf {
			value, ok := s.defaultFor(sub, seen)
			if !ok {
				continue
			}
			if m, isMap := value.(map[string]interface{}); isMap {
				for k, v := range m {
					merged[k] = v
				}
			}
		}
		return merged, true
	}
	if len(schema.AnyOf) > 0 {
		return s.defaultFor(schema.AnyOf[0], seen)
	}
	if len(schema.OneOf) > 0 {
		return s.defaultFor(schema.OneOf[0], seen)
	}

	return nil, false
}

func (s *Synthesizer) defaultObject(schema *openapi.Schema, seen map[string]bool) (interface{}, bool) {
	obj := make(map[string]interface{}, len(schema.Properties))

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := s.defaultFor(schema.Properties[name], seen)
		if ok {
			obj[name] = value
			continue
		}
		// A required property whose schema dead-ends in a cycle still has
		// to appear; null is the only terminating stand-in.
		if schema.Requires(name) {
			obj[name] = nil
		}
	}
	return obj, true
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(value)
}
