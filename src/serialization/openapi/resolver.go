package openapi

import "strings"

const (
	schemaRefPrefix      = "#/components/schemas/"
	parameterRefPrefix   = "#/components/parameters/"
	responseRefPrefix    = "#/components/responses/"
	requestBodyRefPrefix = "#/components/requestBodies/"
	headerRefPrefix      = "#/components/headers/"
)

// Resolver looks up component objects by their $ref pointer string. Schemas
// are never inlined, so cyclic reference graphs (recursive tree shapes) stay
// cyclic and are walked lazily, one hop at a time, during validation.
type Resolver struct {
	doc *Document
}

func refName(ref, prefix string) (string, bool) {
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, prefix)
	return name, name != "" && !strings.Contains(name, "/")
}

// Schema resolves a schema pointer one hop. The returned schema may itself
// carry a $ref; callers that need the concrete node follow it with their own
// cycle guard.
func (r *Resolver) Schema(ref string) (*Schema, bool) {
	name, ok := refName(ref, schemaRefPrefix)
	if !ok {
		return nil, false
	}
	s, ok := r.doc.Components.Schemas[name]
	return s, ok && s != nil
}

func (r *Resolver) parameter(ref string) (*Parameter, bool) {
	name, ok := refName(ref, parameterRefPrefix)
	if !ok {
		return nil, false
	}
	p, ok := r.doc.Components.Parameters[name]
	return p, ok && p != nil
}

func (r *Resolver) response(ref string) (*Response, bool) {
	name, ok := refName(ref, responseRefPrefix)
	if !ok {
		return nil, false
	}
	resp, ok := r.doc.Components.Responses[name]
	return resp, ok && resp != nil
}

func (r *Resolver) requestBody(ref string) (*RequestBody, bool) {
	name, ok := refName(ref, requestBodyRefPrefix)
	if !ok {
		return nil, false
	}
	b, ok := r.doc.Components.RequestBodies[name]
	return b, ok && b != nil
}

func (r *Resolver) header(ref string) (*Header, bool) {
	name, ok := refName(ref, headerRefPrefix)
	if !ok {
		return nil, false
	}
	h, ok := r.doc.Components.Headers[name]
	return h, ok && h != nil
}

// resolveParameter follows parameter refs until a concrete definition is
// reached. Parameter refs do not legally cycle, but a malformed document
// should fail loudly instead of spinning.
func (r *Resolver) resolveParameter(p *Parameter) (*Parameter, error) {
	seen := map[string]bool{}
	for p.Ref != "" {
		if seen[p.Ref] {
			return nil, &UnresolvedReferenceError{Ref: p.Ref}
		}
		seen[p.Ref] = true
		target, ok := r.parameter(p.Ref)
		if !ok {
			return nil, &UnresolvedReferenceError{Ref: p.Ref}
		}
		p = target
	}
	return p, nil
}

func (r *Resolver) resolveResponse(resp *Response) (*Response, error) {
	seen := map[string]bool{}
	for resp.Ref != "" {
		if seen[resp.Ref] {
			return nil, &UnresolvedReferenceError{Ref: resp.Ref}
		}
		seen[resp.Ref] = true
		target, ok := r.response(resp.Ref)
		if !ok {
			return nil, &UnresolvedReferenceError{Ref: resp.Ref}
		}
		resp = target
	}
	return resp, nil
}

func (r *Resolver) resolveRequestBody(b *RequestBody) (*RequestBody, error) {
	seen := map[string]bool{}
	for b.Ref != "" {
		if seen[b.Ref] {
			return nil, &UnresolvedReferenceError{Ref: b.Ref}
		}
		seen[b.Ref] = true
		target, ok := r.requestBody(b.Ref)
		if !ok {
			return nil, &UnresolvedReferenceError{Ref: b.Ref}
		}
		b = target
	}
	return b, nil
}

func (r *Resolver) resolveHeader(h *Header) (*Header, error) {
	seen := map[string]bool{}
	for h.Ref != "" {
		if seen[h.Ref] {
			return nil, &UnresolvedReferenceError{Ref: h.Ref}
		}
		seen[h.Ref] = true
		target, ok := r.header(h.Ref)
		if !ok {
			return nil, &UnresolvedReferenceError{Ref: h.Ref}
		}
		h = target
	}
	return h, nil
}

// checkSchemaRefs walks a schema tree and verifies that every $ref target
// exists. Cycles through named schemas are fine; the visited set stops the
// walk from revisiting them.
func (r *Resolver) checkSchemaRefs(s *Schema, visited map[*Schema]bool) error {
	if s == nil || visited[s] {
		return nil
	}
	visited[s] = true

	if s.Ref != "" {
		target, ok := r.Schema(s.Ref)
		if !ok {
			return &UnresolvedReferenceError{Ref: s.Ref}
		}
		if err := r.checkSchemaRefs(target, visited); err != nil {
			return err
		}
	}
	for _, p := range s.Properties {
		if err := r.checkSchemaRefs(p, visited); err != nil {
			return err
		}
	}
	if err := r.checkSchemaRefs(s.Items, visited); err != nil {
		return err
	}
	for _, group := range [][]*Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for _, sub := range group {
			if err := r.checkSchemaRefs(sub, visited); err != nil {
				return err
			}
		}
	}
	return nil
}
