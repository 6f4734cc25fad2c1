package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
)

// MarshalJSON encodes the entry with its identifier rewritten into values
// JSON can carry: map keys become strings and non-finite floats become
// their YAML spellings (".nan", ".inf", "-.inf"). The in-memory
// Identifier is left untouched.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry

	p := plain(e)
	p.Identifier = reportable(e.Identifier)

	return json.Marshal(p)
}

func reportable(v any) any {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = reportable(val)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = reportable(val)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = reportable(val)
		}

		return out
	default:
		return v
	}
}

func finite(f float64) any {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return f
	}
}
