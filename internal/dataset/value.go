package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// FormatValue renders a cell value as text for delimited output. nil is the
// empty string; numbers keep their shortest exact representation; nested
// JSON values are emitted as compact JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.RawMessage:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// KeyOf returns a comparable join key for v and whether v can participate in
// an equality join at all. Missing values never match. Numeric values compare
// by exact value regardless of representation, so json.Number("5") and
// float64(5.0) share a key while integers beyond float64 precision stay
// distinct; strings never equal numbers.
func KeyOf(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return "s:" + x, true
	case bool:
		return "b:" + strconv.FormatBool(x), true
	case json.Number:
		if r, ok := new(big.Rat).SetString(x.String()); ok {
			return numKey(r), true
		}
		return "n:" + x.String(), true
	case int:
		return numKey(big.NewRat(int64(x), 1)), true
	case int64:
		return numKey(big.NewRat(x, 1)), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", false
		}
		// The shortest decimal form keeps 0.1 equal to json.Number("0.1").
		r, _ := new(big.Rat).SetString(strconv.FormatFloat(x, 'g', -1, 64))
		return numKey(r), true
	case json.RawMessage:
		return "j:" + string(x), true
	default:
		return "v:" + fmt.Sprint(x), true
	}
}

func numKey(r *big.Rat) string {
	return "n:" + r.RatString()
}
