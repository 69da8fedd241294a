package pipeline

import (
	"strconv"
	"strings"
)

var currencyCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// ToNumber coerces a raw field value into a float64. Numeric values pass
// through; strings are cleaned of currency formatting ($ signs, thousands
// separators, whitespace) before parsing. Anything unparseable counts as
// zero, so one dirty cell never aborts a batch build.
func ToNumber(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		cleaned := currencyCleaner.Replace(strings.TrimSpace(val))
		if cleaned == "" {
			return 0
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
