package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalize walks v recursively and converts boxed numeric scalar types to
// plain native types the store API accepts: json.Number becomes int64 or
// float64, narrower int/uint and float widths are widened, and map keys are
// forced to strings. The walk is total over nested maps and slices and
// idempotent: Normalize(Normalize(v)) == Normalize(v).
func Normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		// YAML decoders produce interface-keyed maps
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case json.Number:
		return normalizeNumber(val)
	case float32:
		return float64(val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	default:
		return v
	}
}

// normalizeNumber converts a json.Number to int64 when it has no fractional
// part, float64 otherwise. Unparseable values fall back to the raw string.
func normalizeNumber(n json.Number) any {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
