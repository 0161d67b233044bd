package openapi

import (
	"sort"
	"strconv"
	"strings"
)

// OperationSpec is the flattened, resolved view of one (path, method) pair.
// Specs are built once at document load and never mutated afterwards.
type OperationSpec struct {
	ID           string
	Method       string
	PathTemplate string

	PathParams   []*Parameter
	QueryParams  []*Parameter
	HeaderParams []*Parameter

	RequestBodySchema *Schema
	RequestBodyReq    bool

	Responses map[int]*ResponseSpec
}

// ResponseSpec is the declared contract for one status code.
type ResponseSpec struct {
	StatusCode      int
	RequiredHeaders []string
	BodySchema      *Schema
}

// DeclaredStatuses lists the status codes an operation declares, ascending.
func (op *OperationSpec) DeclaredStatuses() []int {
	statuses := make([]int, 0, len(op.Responses))
	for code := range op.Responses {
		statuses = append(statuses, code)
	}
	sort.Ints(statuses)
	return statuses
}

// Operations returns one OperationSpec per declared (path, method) pair, in
// document declaration order. The slice is built once at load; iterating it
// is free and restartable.
func (d *Document) Operations() []*OperationSpec {
	return d.operations
}

func (d *Document) buildOperations(order []pathMethod) error {
	for _, pm := range order {
		path, ok := d.Paths[pm.path]
		if !ok || path == nil {
			continue
		}
		op, ok := path.Operations[strings.ToLower(pm.method)]
		if !ok || op == nil {
			continue
		}

		spec := &OperationSpec{
			ID:           pm.method + " " + pm.path,
			Method:       pm.method,
			PathTemplate: pm.path,
			Responses:    make(map[int]*ResponseSpec, len(op.Responses)),
		}
		if op.OperationId != "" {
			spec.ID = op.OperationId
		}

		// Operation-level parameters shadow path-level ones of the same
		// name and location.
		params, err := d.mergeParameters(path.Parameters, op.Parameters)
		if err != nil {
			return err
		}
		for _, p := range params {
			switch p.In {
			case ParameterInPath:
				spec.PathParams = append(spec.PathParams, p)
			case ParameterInQuery:
				spec.QueryParams = append(spec.QueryParams, p)
			case ParameterInHeader:
				spec.HeaderParams = append(spec.HeaderParams, p)
			}
		}

		if op.RequestBody != nil {
			body, err := d.resolver.resolveRequestBody(op.RequestBody)
			if err != nil {
				return err
			}
			spec.RequestBodySchema = jsonSchema(body.Content)
			spec.RequestBodyReq = body.Required
		}

		for statusKey, response := range op.Responses {
			// "default" and range keys have no exact status to match
			// against; only numeric declarations participate.
			status, err := strconv.Atoi(statusKey)
			if err != nil {
				continue
			}
			resolved, err := d.resolver.resolveResponse(response)
			if err != nil {
				return err
			}
			rs := &ResponseSpec{
				StatusCode: status,
				BodySchema: jsonSchema(resolved.Content),
			}
			headerNames := make([]string, 0, len(resolved.Headers))
			for name := range resolved.Headers {
				headerNames = append(headerNames, name)
			}
			sort.Strings(headerNames)
			for _, name := range headerNames {
				header, err := d.resolver.resolveHeader(resolved.Headers[name])
				if err != nil {
					return err
				}
				if header.Required {
					rs.RequiredHeaders = append(rs.RequiredHeaders, name)
				}
			}
			spec.Responses[status] = rs
		}

		d.operations = append(d.operations, spec)
	}
	return nil
}

func (d *Document) mergeParameters(pathLevel, opLevel []*Parameter) ([]*Parameter, error) {
	merged := make([]*Parameter, 0, len(pathLevel)+len(opLevel))
	seen := map[string]bool{}

	add := func(params []*Parameter) error {
		for _, p := range params {
			resolved, err := d.resolver.resolveParameter(p)
			if err != nil {
				return err
			}
			key := string(resolved.In) + ":" + resolved.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, resolved)
		}
		return nil
	}

	if err := add(opLevel); err != nil {
		return nil, err
	}
	if err := add(pathLevel); err != nil {
		return nil, err
	}
	return merged, nil
}
