package plot

import (
	"encoding/json"
	"slices"

	"github.com/raykavin/coviddash/pkg/core"
)

// Palette is the dashboard series palette, indexed by a card field colour.
var Palette = []string{
	"#2B8CC4", "#F47738", "#6F72AF", "#D53880",
	"#85994B", "#B10E1E", "#28A197", "#F499BE",
}

// ColourAt returns the palette entry i, wrapping around.
func ColourAt(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// BarTrace builds a bar trace.
func BarTrace(name string, x []string, y []float64, colour string) Trace {
	return Trace{
		"name":   name,
		"x":      x,
		"y":      y,
		"type":   "bar",
		"marker": Map{"color": colour},
	}
}

// LineTrace builds a line trace; dash may be empty for a solid line.
func LineTrace(name string, x []string, y []float64, colour, dash string) Trace {
	line := Map{"color": colour, "width": 2}
	if dash != "" {
		line["dash"] = dash
	}
	return Trace{
		"name": name,
		"x":    x,
		"y":    y,
		"type": "scatter",
		"mode": "lines",
		"line": line,
	}
}

// Floats reads a numeric sequence out of a trace attribute. The result never
// aliases the input.
func Floats(v any) ([]float64, bool) {
	switch values := v.(type) {
	case []float64:
		return slices.Clone(values), true
	case core.Series[float64]:
		return slices.Clone([]float64(values)), true
	case []int:
		out := make([]float64, len(values))
		for i, n := range values {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(values))
		for i, item := range values {
			switch n := item.(type) {
			case float64:
				out[i] = n
			case int:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			case json.Number:
				f, err := n.Float64()
				if err != nil {
					return nil, false
				}
				out[i] = f
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}
