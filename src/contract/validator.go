package contract

import (
	"fmt"
	"math"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"contract-testing/src/report"
	"contract-testing/src/serialization/openapi"
)

// Validator matches decoded JSON values against schema nodes. It collects
// every violation at every depth; a single response yields the complete
// diff, not just the first mismatch.
type Validator struct {
	resolver *openapi.Resolver

	// strict flags properties the schema does not declare, even without
	// additionalProperties: false in the document.
	strict bool
}

func NewValidator(doc *openapi.Document, strict bool) *Validator {
	return &Validator{resolver: doc.Resolver(), strict: strict}
}

// Validate returns all violations of value against schema; empty means valid.
func (v *Validator) Validate(value interface{}, schema *openapi.Schema) []report.Violation {
	return v.check(value, schema, "", nil)
}

// check walks value and schema together. seen holds the $ref pointers
// already followed on the current recursion path without consuming a
// concrete value; descending into a property or array element resets it,
// revisiting a pointer before that is a cycle in the document.
func (v *Validator) check(value interface{}, schema *openapi.Schema, path string, seen map[string]bool) []report.Violation {
	if schema == nil {
		return nil
	}

	if schema.Ref != "" {
		if seen[schema.Ref] {
			return []report.Violation{{
				Path:     path,
				Kind:     report.KindCycle,
				Expected: "a value consuming the recursive reference",
				Actual:   schema.Ref + " revisited",
			}}
		}
		target, ok := v.resolver.Schema(schema.Ref)
		if !ok {
			return []report.Violation{{
				Path:     path,
				Kind:     report.KindUnresolvedReference,
				Expected: "a resolvable $ref",
				Actual:   schema.Ref,
			}}
		}
		next := make(map[string]bool, len(seen)+1)
		for k := range seen {
			next[k] = true
		}
		next[schema.Ref] = true
		return v.check(value, target, path, next)
	}

	var violations []report.Violation

	for _, sub := range schema.AllOf {
		violations = append(violations, v.check(value, sub, path, seen)...)
	}
	if len(schema.AnyOf) > 0 {
		violations = append(violations, v.checkAnyOf(value, schema.AnyOf, path, seen)...)
	}
	if len(schema.OneOf) > 0 {
		violations = append(violations, v.checkOneOf(value, schema.OneOf, path, seen)...)
	}

	if schema.Type == "" {
		return violations
	}

	if value == nil {
		if schema.Nullable {
			return violations
		}
		return append(violations, report.Violation{
			Path:     path,
			Kind:     report.KindTypeMismatch,
			Expected: string(schema.Type),
			Actual:   "null",
		})
	}

	switch schema.Type {
	case openapi.SchemaTypeObject:
		violations = append(violations, v.checkObject(value, schema, path)...)
	case openapi.SchemaTypeArray:
		violations = append(violations, v.checkArray(value, schema, path)...)
	default:
		violations = append(violations, v.checkPrimitive(value, schema, path)...)
	}
	return violations
}

func (v *Validator) checkObject(value interface{}, schema *openapi.Schema, path string) []report.Violation {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return []report.Violation{typeMismatch(path, schema, value)}
	}

	var violations []report.Violation

	for _, name := range schema.Required {
		if _, present := obj[name]; !present {
			violations = append(violations, report.Violation{
				Path:     joinPath(path, name),
				Kind:     report.KindMissingRequiredField,
				Expected: fmt.Sprintf("required property %q", name),
				Actual:   "absent",
			})
		}
	}

	// Deterministic violation order regardless of map iteration.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if val, present := obj[name]; present {
			violations = append(violations, v.check(val, schema.Properties[name], joinPath(path, name), nil)...)
		}
	}

	if v.strict || schema.Closed() {
		extra := make([]string, 0)
		for name := range obj {
			if _, declared := schema.Properties[name]; !declared {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			violations = append(violations, report.Violation{
				Path:     joinPath(path, name),
				Kind:     report.KindUndeclaredProperty,
				Expected: "only declared properties",
				Actual:   describeValue(obj[name]),
			})
		}
	}
	return violations
}

func (v *Validator) checkArray(value interface{}, schema *openapi.Schema, path string) []report.Violation {
	arr, ok := value.([]interface{})
	if !ok {
		return []report.Violation{typeMismatch(path, schema, value)}
	}
	var violations []report.Violation
	if schema.Items != nil {
		for i, el := range arr {
			violations = append(violations, v.check(el, schema.Items, fmt.Sprintf("%s[%d]", path, i), nil)...)
		}
	}
	return violations
}

func (v *Validator) checkPrimitive(value interface{}, schema *openapi.Schema, path string) []report.Violation {
	ok := false
	switch schema.Type {
	case openapi.SchemaTypeBoolean:
		_, ok = value.(bool)
	case openapi.SchemaTypeString:
		_, ok = value.(string)
	case openapi.SchemaTypeInteger:
		// A fractional literal can never satisfy integer; a whole-number
		// float (1.0) can.
		switch n := value.(type) {
		case int64:
			ok = true
		case float64:
			ok = n == math.Trunc(n)
		}
	case openapi.SchemaTypeNumber:
		switch value.(type) {
		case int64, float64:
			ok = true
		}
	}
	if !ok {
		return []report.Violation{typeMismatch(path, schema, value)}
	}

	var violations []report.Violation
	if len(schema.Enum) > 0 && !enumContains(schema.Enum, value) {
		violations = append(violations, report.Violation{
			Path:     path,
			Kind:     report.KindEnumMismatch,
			Expected: fmt.Sprintf("one of %v", schema.Enum),
			Actual:   describeValue(value),
		})
	}
	if s, isString := value.(string); isString && schema.Format != "" {
		if err := checkFormat(schema.Format, s); err != nil {
			violations = append(violations, report.Violation{
				Path:     path,
				Kind:     report.KindBadFormat,
				Expected: "string with format " + schema.Format,
				Actual:   describeValue(value),
			})
		}
	}
	return violations
}

func (v *Validator) checkAnyOf(value interface{}, subs []*openapi.Schema, path string, seen map[string]bool) []report.Violation {
	var best []report.Violation
	for _, sub := range subs {
		sv := v.check(value, sub, path, seen)
		if len(sv) == 0 {
			return nil
		}
		if best == nil || len(sv) < len(best) {
			best = sv
		}
	}
	return best
}

func (v *Validator) checkOneOf(value interface{}, subs []*openapi.Schema, path string, seen map[string]bool) []report.Violation {
	matched := 0
	for _, sub := range subs {
		if len(v.check(value, sub, path, seen)) == 0 {
			matched++
		}
	}
	if matched == 1 {
		return nil
	}
	return []report.Violation{{
		Path:     path,
		Kind:     report.KindTypeMismatch,
		Expected: fmt.Sprintf("exactly one of %d schemas", len(subs)),
		Actual:   fmt.Sprintf("%d matched", matched),
	}}
}

func typeMismatch(path string, schema *openapi.Schema, value interface{}) report.Violation {
	return report.Violation{
		Path:     path,
		Kind:     report.KindTypeMismatch,
		Expected: string(schema.Type),
		Actual:   describeValue(value),
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, candidate := range enum {
		if enumEquals(candidate, value) {
			return true
		}
	}
	return false
}

// enumEquals compares a YAML-decoded enum literal with a JSON-decoded value.
// The two decoders produce different numeric types for the same literal.
func enumEquals(candidate, value interface{}) bool {
	if cf, ok := toFloat(candidate); ok {
		vf, ok := toFloat(value)
		return ok && cf == vf
	}
	return candidate == value
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func checkFormat(format, value string) error {
	switch format {
	case "date":
		_, err := time.Parse("2006-01-02", value)
		return err
	case "date-time":
		_, err := time.Parse(time.RFC3339, value)
		return err
	case "uuid":
		_, err := uuid.Parse(value)
		return err
	case "email":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("empty address")
		}
		_, err := mail.ParseAddress(value)
		return err
	}
	// Unknown formats are advisory in OpenAPI; accept them.
	return nil
}
