package stage

import (
	"encoding/json"
	"strconv"
)

// Record is one row of values positionally aligned with a Schema. Values are
// nil, string, bool, float64, int64 or json.Number.
type Record []any

// StringAt renders the value at idx as text. ok is false when idx is out of
// range or the value is nil.
func (r Record) StringAt(idx int) (s string, ok bool) {
	if idx < 0 || idx >= len(r) {
		return "", false
	}
	switch v := r[idx].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.Number:
		return string(v), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

// appendTriple lays out rec over width input positions followed by the
// three result values. Short records are padded with nil and long ones
// truncated so the result always has width+3 values.
func appendTriple(rec Record, width int, t Triple) Record {
	out := make(Record, width+3)
	copy(out, rec[:min(len(rec), width)])
	out[width] = t.IsSafe
	out[width+1] = t.Category
	out[width+2] = t.Score
	return out
}
