package nutrition

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatAmount prints whole numbers without decimals and everything else
// with at most one decimal: 0 → "0", 7 → "7", 2.50 → "2.5", 0.04 → "0".
func FormatAmount(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// PercentDailyValue returns amount as a percentage of n's daily value. It
// reports false when n has no daily value or amount is not positive.
func PercentDailyValue(n Nutrient, amount float64) (float64, bool) {
	dv, ok := n.DailyValue()
	if !ok || amount <= 0 {
		return 0, false
	}
	return amount / dv * 100, true
}

// FormatPercent prints a %DV: "<1%" below one percent, otherwise rounded
// to a whole number.
func FormatPercent(pct float64) string {
	if pct < 1 {
		return "<1%"
	}
	return fmt.Sprintf("%.0f%%", pct)
}
