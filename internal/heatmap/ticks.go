package heatmap

import (
	"math"
	"slices"
)

// Thresholds choosing between steps of 1, 2, 5 and 10 times a power of ten.
var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Ticks returns roughly count "nice" values covering [start, stop]. Values
// are multiples of 1, 2 or 5 times a power of ten and always lie inside the
// interval. A degenerate interval yields the single value start.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}

	n := int(i2 - i1 + 1)
	ticks := make([]float64, n)
	for i := range n {
		k := i1 + float64(i)
		if inc < 0 {
			// Negative increments encode a divisor to keep small steps exact.
			ticks[i] = k / -inc
		} else {
			ticks[i] = k * inc
		}
	}
	if reverse {
		slices.Reverse(ticks)
	}
	return ticks
}

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = roundHalfUp(start * inc)
		i2 = roundHalfUp(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = roundHalfUp(start / inc)
		i2 = roundHalfUp(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
