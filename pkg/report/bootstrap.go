package report

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Interval is a bootstrap confidence interval of a measure.
type Interval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Mean is the arithmetic mean, usable as a bootstrap measure.
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// Bootstrap estimates the confidence interval of measure over values by
// resampling them with replacement rounds times.
func Bootstrap(values []float64, measure func([]float64) float64, rounds int, confidence float64) Interval {
	if len(values) == 0 || rounds < 1 {
		return Interval{}
	}

	data := make([]float64, 0, rounds)
	for i := 0; i < rounds; i++ {
		samples := make([]float64, len(values))
		for j := range samples {
			samples[j] = lo.Sample(values)
		}
		data = append(data, measure(samples))
	}

	tail := 1 - confidence
	sort.Float64s(data)

	mean, stdDev := stat.MeanStdDev(data, nil)
	return Interval{
		Lower:  stat.Quantile(tail/2, stat.LinInterp, data, nil),
		Upper:  stat.Quantile(1-tail/2, stat.LinInterp, data, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}
