// Package relation normalizes nested relation values decoded from JSON
// payloads. Depending on join cardinality the backend returns a related
// record either as a single object or as a single-element array; every
// consumer goes through Unwrap so the conditional lives in exactly one place.
package relation

// Unwrap normalizes a decoded relation value to a single object or nil.
// PRE: v is the result of decoding JSON into any (map, []any, or nil)
// POST: returns the related object, or nil for nil, empty arrays, and
// values of any other shape
func Unwrap(v any) map[string]any {
	switch rel := v.(type) {
	case map[string]any:
		return rel
	case []any:
		if len(rel) == 0 {
			return nil
		}
		if obj, ok := rel[0].(map[string]any); ok {
			return obj
		}
		return nil
	default:
		return nil
	}
}

// UnwrapField is a convenience for record["field"] access.
func UnwrapField(record map[string]any, field string) map[string]any {
	if record == nil {
		return nil
	}
	return Unwrap(record[field])
}
