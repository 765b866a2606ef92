package condition

// Flatten walks a nested configuration document depth-first and emits one
// variable per scalar leaf, named by joining the path segments with "_"
// (so {"a": {"b": 5}} yields "a_b" = 5). Nested objects are recursed into;
// values of any other type are dropped from the namespace, not treated as
// errors.
func Flatten(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	flattenInto(out, "", attrs)
	return out
}

func flattenInto(out map[string]any, prefix string, attrs map[string]any) {
	for key, value := range attrs {
		name := key
		if prefix != "" {
			name = prefix + "_" + key
		}

		switch v := value.(type) {
		case string:
			out[name] = v
		case bool:
			out[name] = v
		case int:
			out[name] = int64(v)
		case int32:
			out[name] = int64(v)
		case int64:
			out[name] = v
		case float32:
			out[name] = float64(v)
		case float64:
			out[name] = v
		case map[string]any:
			flattenInto(out, name, v)
		default:
			// Arrays, nulls and anything else carry no variable.
		}
	}
}
