package heatmap

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatSI renders v with two significant digits and an SI prefix,
// e.g. 1.2M, 450k, 45k, 1.0M.
func FormatSI(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	value, prefix := humanize.ComputeSI(roundSig(v, 2))

	intDigits := len(strconv.Itoa(int(math.Abs(value))))
	decimals := max(0, 2-intDigits)
	return strconv.FormatFloat(value, 'f', decimals, 64) + prefix
}

// CellTitle is the tooltip text shown for a cell.
func CellTitle(year, month, visitors int) string {
	return fmt.Sprintf("Year: %d, Month: %d, Visitors: %s", year, month, humanize.Comma(int64(visitors)))
}

// MonthLabel returns the three-letter abbreviation for a 1-based month.
func MonthLabel(month int) string {
	return time.Month(month).String()[:3]
}

// roundSig rounds v to the given number of significant digits. It divides
// or multiplies by an exact power of ten depending on the magnitude so the
// result carries no binary noise such as 0.30000000000000004.
func roundSig(v float64, digits int) float64 {
	k := digits - 1 - int(math.Floor(math.Log10(math.Abs(v))))
	if k >= 0 {
		p := math.Pow(10, float64(k))
		return math.Round(v*p) / p
	}
	p := math.Pow(10, float64(-k))
	return math.Round(v/p) * p
}
