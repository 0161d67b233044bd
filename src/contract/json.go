package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSON parses a JSON document into a dynamic value tree of
// map[string]interface{}, []interface{}, string, int64, float64, bool and
// nil. Numbers without a fractional part decode as int64 so the validator
// can tell integer values from fractional ones; encoding/json's default
// float64-for-everything would erase that distinction.
func DecodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return normalize(value), nil
}

func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, err := v.Float64()
		if err != nil {
			// Out-of-range literals keep their textual form; the
			// validator will report the type it sees.
			return v.String()
		}
		return f
	case []interface{}:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	case map[string]interface{}:
		for k := range v {
			v[k] = normalize(v[k])
		}
		return v
	}
	return value
}

// jsonTypeName names a decoded value's JSON type for violation messages.
func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}

// describeValue renders a short expected-vs-actual fragment: type name plus
// the literal for scalars.
func describeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", v)
	case bool, int64, float64:
		return fmt.Sprintf("%s %v", jsonTypeName(value), v)
	}
	return jsonTypeName(value)
}
