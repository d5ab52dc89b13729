package invite

// Merge deep-merges src over dst and returns a new map; neither input is
// mutated. The rule is deliberately asymmetric: when both sides hold a
// mapping the merge recurses, otherwise the src value wins outright.
// Scalars and lists are replaced wholesale, never concatenated or merged
// per item, so list-shaped configuration (schedule, gallery, RSVP fields)
// is all-or-nothing per user override.
func Merge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))

	for k, v := range dst {
		out[k] = cloneValue(v)
	}

	for k, srcVal := range src {
		dstVal, exists := out[k]
		if !exists {
			out[k] = cloneValue(srcVal)
			continue
		}

		dstMap, dstIsMap := asStringMap(dstVal)
		srcMap, srcIsMap := asStringMap(srcVal)
		if dstIsMap && srcIsMap {
			out[k] = Merge(dstMap, srcMap)
			continue
		}

		out[k] = cloneValue(srcVal)
	}

	return out
}

// asStringMap normalizes the two mapping shapes the YAML parser can
// produce into map[string]any. Non-string keys disqualify the value from
// recursive merging; it is then replaced wholesale like a scalar.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// cloneValue deep-copies maps and slices so merged documents never alias
// the defaults or the parsed user document.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case map[any]any:
		if m, ok := asStringMap(val); ok {
			return cloneValue(m)
		}
		out := make(map[any]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
