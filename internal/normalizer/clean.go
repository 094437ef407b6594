package normalizer

// undefined is the marker for fields the legacy layout left genuinely absent
// (as opposed to explicitly null). The store mishandles such values, so they
// are stripped before persistence; explicit nils are preserved.
type undefined struct{}

// Undefined is the sentinel value for an absent field in a map-shaped
// document.
var Undefined = undefined{}

// Clean recursively strips Undefined-valued fields from a map-shaped
// document. Nulls are preserved. The input is not mutated.
func Clean(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		cleaned, keep := cleanValue(v)
		if keep {
			out[k] = cleaned
		}
	}
	return out
}

func cleanValue(v any) (any, bool) {
	switch val := v.(type) {
	case undefined:
		return nil, false
	case map[string]any:
		return Clean(val), true
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			cleaned, keep := cleanValue(item)
			if keep {
				out = append(out, cleaned)
			}
		}
		return out, true
	default:
		return v, true
	}
}
