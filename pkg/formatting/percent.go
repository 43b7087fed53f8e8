package formatting

import (
	"math"
	"strconv"
)

// Percent renders a ratio in [0,1] as a percentage string with the given precision.
// 0.97 at precision 2 renders as "97.00%". NaN renders as "-".
func Percent(ratio float64, precision int) string {
	if math.IsNaN(ratio) {
		return "-"
	}
	if precision < 0 {
		precision = 0
	}
	return strconv.FormatFloat(ratio*100, 'f', precision, 64) + "%"
}
