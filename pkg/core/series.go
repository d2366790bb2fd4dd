package core

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Series is an ordered run of values, oldest first.
type Series[T constraints.Ordered] []T

// Values returns the underlying slice of values
func (s Series[T]) Values() []T {
	return s
}

// Length returns the number of values in the series
func (s Series[T]) Length() int {
	return len(s)
}

// Last returns the value at a specified position from the end.
// position 0 is the last value, 1 is the second-to-last, etc.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns a slice with the last 'size' values.
// If size exceeds the length, returns the entire series
func (s Series[T]) LastValues(size int) Series[T] {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Copy returns a series backed by a fresh array.
func (s Series[T]) Copy() Series[T] {
	out := make(Series[T], len(s))
	copy(out, s)
	return out
}

// Column is a single metric of a data response laid out for plotting.
type Column struct {
	Metric string
	Dates  []time.Time
	Values Series[float64]
}

// DateStrings formats the dates of the column with layout.
func (c Column) DateStrings(layout string) []string {
	out := make([]string, len(c.Dates))
	for i, d := range c.Dates {
		out[i] = d.Format(layout)
	}
	return out
}

// Latest returns the most recent value of the column.
func (c Column) Latest() (time.Time, float64, bool) {
	if len(c.Values) == 0 {
		return time.Time{}, 0, false
	}
	return c.Dates[len(c.Dates)-1], c.Values.Last(0), true
}
