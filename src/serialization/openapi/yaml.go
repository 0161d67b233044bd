package openapi

// NormalizeValue rewrites a yaml.v2-decoded value into the shape the JSON
// side of the engine works with: map[interface{}]interface{} becomes
// map[string]interface{} (and is JSON-marshalable), int becomes int64.
func NormalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case int:
		return int64(v)
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			name, ok := key.(string)
			if !ok {
				continue
			}
			out[name] = NormalizeValue(val)
		}
		return out
	case map[string]interface{}:
		for key, val := range v {
			v[key] = NormalizeValue(val)
		}
		return v
	case []interface{}:
		for i, val := range v {
			v[i] = NormalizeValue(val)
		}
		return v
	}
	return value
}
