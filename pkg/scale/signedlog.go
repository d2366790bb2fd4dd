// Package scale implements the signed pseudo-log axis used by the "logy" bar
// mode: values are plotted as ±ln|v| and labelled with their original number.
package scale

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// HoverTemplate shows the untransformed value, kept in the trace text, on hover.
const HoverTemplate = "%{text:.1f}"

// DefaultThresholds are the candidate ticks placed between the data bounds.
var DefaultThresholds = []float64{-1000, -10, 0, 10, 100, 1000, 10000, 100000, 1000000, 10000000}

// Transform maps v to ln(v) when positive and to -ln(|v|) when negative.
// Zero maps to 0.
func Transform(v float64) float64 {
	switch {
	case v > 0:
		return math.Log(v)
	case v < 0:
		return -math.Log(-v)
	default:
		return 0
	}
}

// TransformAll returns a new slice with Transform applied to every value.
func TransformAll(values []float64) []float64 {
	return lo.Map(values, func(v float64, _ int) float64 {
		return Transform(v)
	})
}

// Axis is the tick set of a transformed axis. Vals are plotted positions and
// Text the original numbers, index aligned.
type Axis struct {
	Vals []float64
	Text []float64
}

// Len returns the number of ticks.
func (a Axis) Len() int {
	return len(a.Vals)
}

// Ticks derives the axis of values: the data minimum and maximum plus every
// threshold strictly between them. Empty input gives an empty axis.
func Ticks(values, thresholds []float64) Axis {
	if len(values) == 0 {
		return Axis{Vals: []float64{}, Text: []float64{}}
	}

	minVal, maxVal := floats.Min(values), floats.Max(values)

	between := lo.Filter(thresholds, func(v float64, _ int) bool {
		return v > minVal && v < maxVal
	})
	slices.Sort(between)

	text := make([]float64, 0, len(between)+2)
	text = append(text, minVal)
	text = append(text, between...)
	if maxVal != minVal {
		text = append(text, maxVal)
	}

	return Axis{
		Vals: TransformAll(text),
		Text: text,
	}
}

// LogY is the result of preparing a dataset for the logy bar mode.
type LogY struct {
	Values   []float64
	Original []float64
	Axis     Axis
}

// NewLogY transforms values and derives their ticks. The input is left untouched.
func NewLogY(values, thresholds []float64) LogY {
	return LogY{
		Values:   TransformAll(values),
		Original: slices.Clone(values),
		Axis:     Ticks(values, thresholds),
	}
}
