// Package indicator smooths metric columns for the chart overlays.
package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/raykavin/coviddash/pkg/core"
)

// MaType represents moving average type
type MaType = talib.MaType

// TypeSMA is the simple moving average used by the dashboard charts
const TypeSMA = talib.SMA

// RollingWindow is the window, in days, of the dashboard rolling averages.
const RollingWindow = 7

// Suffix is appended to the metric name of a smoothed column.
const Suffix = "RollingAverage"

// RollingAverage smooths column over period values. The first period-1 dates
// have no average and are dropped, so the result stays date aligned.
func RollingAverage(column core.Column, period int, maType MaType) core.Column {
	out := core.Column{Metric: column.Metric + Suffix}

	if period < 1 || column.Values.Length() < period {
		return out
	}

	if period == 1 {
		out.Dates = append(out.Dates, column.Dates...)
		out.Values = column.Values.Copy()
		return out
	}

	values := talib.Ma(column.Values, period, maType)
	out.Dates = append(out.Dates, column.Dates[period-1:]...)
	out.Values = core.Series[float64](values[period-1:])
	return out
}
