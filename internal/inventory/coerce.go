package inventory

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CoerceStock normalizes a heterogeneously-typed stock value into an int.
// Historical records hold the quantity as a native integer, a 64-bit
// integer, a float (JSON decoding), or a numeric string. Native numeric
// types take priority over string parsing; anything unrecognized coerces
// to zero so subsequent reservations fail closed.
func CoerceStock(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
		return 0
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	case []byte:
		i, err := strconv.Atoi(strings.TrimSpace(string(n)))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
