package plot

import (
	"fmt"

	"github.com/raykavin/coviddash/pkg/color"
	"github.com/raykavin/coviddash/pkg/core"
)

// MapSource locates the basemap used by Choropleth.
type MapSource struct {
	Style   string
	BaseGeo string
}

func exportOptions(height, width int) Map {
	return Map{
		"format":   "png",
		"filename": "export",
		"height":   height,
		"width":    width,
		"scale":    4,
	}
}

func zeroMargin() Map {
	return Map{"l": 0, "r": 0, "b": 0, "t": 0, "pad": 0}
}

// Choropleth draws trace as a mapbox choropleth centred on the UK.
func Choropleth(trace Trace, src MapSource, opts Options) Figure {
	preset := Trace{
		"type":           "choroplethmapbox",
		"hoverinfo":      "text+z",
		"autocolorscale": false,
		"reversescale":   true,
		"colorscale": [][]any{
			{0, "#F47738"},
			{0.5, "#005EA5"},
			{1, "#9DDAE8"},
		},
		"colorbar": Map{
			"thickness": 10,
			"thickfont": Map{"family": fontFamily},
		},
		"hoverlabel": Map{
			"font": Map{"family": fontFamily},
		},
		"center": Map{"lat": 53.5, "lon": -2},
		"marker": Map{
			"line": Map{"color": "#2f2f2f", "width": 0.1},
		},
	}

	layout := Map{
		"height": 500,
		"geo": Map{
			"fitbounds":  "geojson",
			"resolution": 50,
			"scope":      "europe",
			"projection": Map{"lon": 2, "lat": 2, "roll": 130},
		},
		"mapbox": Map{
			"style":  src.Style,
			"center": Map{"lat": 55.5, "lon": -2.5},
			"zoom":   4.2,
			"layers": []Map{{
				"sourcetype": "geojson",
				"source":     src.BaseGeo + "countries_v1.geojson",
				"type":       "line",
				"color":      "#a3a3a3",
				"line":       Map{"width": 0.1},
			}},
		},
	}

	// a caller margin replaces the zero preset as a whole
	margin := zeroMargin()
	if opts.Margin != nil {
		margin = opts.Margin
	}

	return Plotter([]Trace{Merge(preset, trace)}, Options{
		Layout:       Merge(layout, opts.Layout),
		Config:       Merge(Map{"toImageButtonOptions": exportOptions(600, 1200)}, opts.Config),
		Margin:       margin,
		XAxis:        Merge(Map{"showgrid": false, "zeroline": false, "showline": false}, opts.XAxis),
		YAxis:        opts.YAxis,
		Style:        opts.Style,
		Categorical:  opts.Categorical,
		Viewport:     opts.Viewport,
		ScreenReader: opts.ScreenReader,
	})
}

// ScatterWithTrendLine overlays a dashed trend line on a scatter of points.
func ScatterWithTrendLine(scatter, trend Trace, opts Options) Figure {
	points := Merge(Trace{
		"type":       "heatmap",
		"showlegend": false,
		"marker":     Map{"size": 8},
		"fillcolor":  "#005EA5",
	}, scatter)

	line := Merge(Trace{
		"showlegend": false,
		"mode":       "lines",
		"fillcolor":  "#F47738",
		"line": Map{
			"width": 3,
			"dash":  "dash",
			"color": color.RGB{R: 109, G: 109, B: 109}.RGBA(0.7),
		},
	}, trend)

	config := Map{
		"displayModeBar": true,
		"showLink":       false,
		"responsive":     true,
		"displaylogo":    false,
		"modeBarButtonsToRemove": []string{
			"autoScale2d",
			"zoomIn2d",
			"zoomOut2d",
			"toggleSpikelines",
			"hoverClosestCartesian",
			"zoom2d",
		},
		"toImageButtonOptions": exportOptions(600, 1200),
	}

	layout := Map{
		"height":        500,
		"legend":        legend(16),
		"showlegend":    true,
		"plot_bgcolor":  plotBg,
		"paper_bgcolor": paperBg,
	}

	return Plotter([]Trace{points, line}, Options{
		Layout:       Merge(layout, opts.Layout),
		Config:       Merge(config, opts.Config),
		Margin:       opts.Margin,
		XAxis:        opts.XAxis,
		YAxis:        opts.YAxis,
		Style:        opts.Style,
		Categorical:  opts.Categorical,
		Viewport:     opts.Viewport,
		ScreenReader: opts.ScreenReader,
	})
}

// HeatmapData is one age/date grid of a heatmap card.
type HeatmapData struct {
	Label string
	X     []string
	Y     []string
	Z     [][]float64
}

// heatmapZMax is the value at which the colour scale saturates.
const heatmapZMax = 400

// heatmapStops pair rates with the colour they are drawn in.
var heatmapStops = []struct {
	at     float64
	colour color.RGB
}{
	{0, color.MustHexToRGB("#e0e543")},
	{10, color.MustHexToRGB("#74bb68")},
	{50, color.MustHexToRGB("#399384")},
	{100, color.MustHexToRGB("#3375b7")},
	{200, color.MustHexToRGB("#12407F")},
	{400, color.MustHexToRGB("#53084a")},
}

// HeatmapColorscale converts the heatmap stops into a plotly colorscale.
func HeatmapColorscale() [][]any {
	scale := make([][]any, 0, len(heatmapStops))
	for _, stop := range heatmapStops {
		scale = append(scale, []any{stop.at / heatmapZMax, stop.colour.CSS()})
	}
	return scale
}

// Heatmap draws rate grids with the fixed 0–400+ colour scale.
func Heatmap(datasets []HeatmapData, opts Options) (Figure, error) {
	if len(datasets) == 0 {
		return Figure{}, fmt.Errorf("heatmap: %w", core.ErrNoData)
	}

	colorscale := HeatmapColorscale()
	traces := make([]Trace, 0, len(datasets))
	for _, dataset := range datasets {
		traces = append(traces, Trace{
			"x":          dataset.X,
			"y":          dataset.Y,
			"z":          dataset.Z,
			"type":       "heatmap",
			"colorscale": colorscale,
			"ygap":       1,
			"fixedrange": true,
			"zauto":      false,
			"zmin":       0,
			"zmax":       heatmapZMax,
			"colorbar": Map{
				"tickvals":  []float64{0, 10, 50, 100, 200, 400},
				"ticktext":  []string{"0", "10", "50", "100", "200", "400+"},
				"tickmode":  "array",
				"ticks":     "outside",
				"tickson":   "boundaries",
				"tickslen":  5,
				"ticklen":   "labels",
				"thickness": 20,
				"x":         1,
				"len":       .8,
				"tickfont":  tickFont(10),
			},
		})
	}

	annotations := []Map{}
	if opts.Viewport == Desktop {
		annotations = append(annotations, Map{
			"text":      datasets[0].Label,
			"textangle": 90,
			"x":         1.07,
			"align":     "right",
			"valign":    "top",
			"showarrow": false,
			"xref":      "paper",
			"yref":      "paper",
			"xanchor":   "right",
			"yanchor":   "middle",
			"font":      Map{"family": fontFamily, "size": 11},
		})
	}

	layout := Map{
		"annotations":   annotations,
		"height":        350,
		"legend":        legend(16),
		"showlegend":    true,
		"plot_bgcolor":  plotBg,
		"paper_bgcolor": paperBg,
	}

	return Plotter(traces, Options{
		Layout:       Merge(layout, opts.Layout),
		Config:       opts.Config,
		Margin:       Merge(Map{"l": pick(opts.Viewport, 80, 50)}, opts.Margin),
		XAxis:        opts.XAxis,
		YAxis:        Merge(Map{"fixedrange": false}, opts.YAxis),
		Style:        opts.Style,
		Categorical:  opts.Categorical,
		Viewport:     opts.Viewport,
		ScreenReader: opts.ScreenReader,
	}), nil
}

// Histogram draws the distribution of values as percentages with a red
// marker at current, the value of the selected location.
func Histogram(values []float64, current float64, vp Viewport) Figure {
	return Figure{
		Data: []Trace{{
			"x":        values,
			"type":     "histogram",
			"autobinx": true,
			"histnorm": "percent",
		}},
		Config: Map{
			"showLink":    false,
			"responsive":  true,
			"displaylogo": false,
			"staticPlot":  true,
		},
		Style: Map{"display": "block", "height": 150},
		Layout: Map{
			"shapes": []Map{{
				"type": "line",
				"x0":   current,
				"x1":   current,
				"xref": "x",
				"y0":   0,
				"y1":   1,
				"yref": "paper",
				"line": Map{"color": "#cb0000", "width": 3},
			}},
			"legend":     Map{"orientation": "h", "font": Map{"family": fontFamily, "size": 8}, "xanchor": "auto"},
			"showlegend": false,
			"margin":     Map{"l": 0, "r": 0, "b": 20, "t": 0, "pad": 0},
			"xaxis": Map{
				"showgrid": false,
				"zeroline": false,
				"showline": false,
				"tickslen": 10,
				"ticks":    "outside",
				"tickson":  "boundaries",
				"ticklen":  "labels",
				"tickfont": tickFont(10),
			},
			"yaxis": Map{
				"tickslen":   5,
				"ticks":      "outside",
				"tickson":    "boundaries",
				"ticklen":    "labels",
				"tickcolor":  "#f1f1f1",
				"tickformat": pick(vp, ",r", ".2s"),
				"tickfont":   tickFont(14),
			},
			"plot_bgcolor":  plotBg,
			"paper_bgcolor": paperBg,
		},
	}
}

// XAxis draws a static month strip placed under a stack of charts.
func XAxis(data []Trace, opts Options) Figure {
	xType := "date"
	if opts.Categorical {
		xType = "category"
	}

	xaxis := Map{
		"showgrid":   false,
		"zeroline":   false,
		"showline":   false,
		"tickslen":   15,
		"ticks":      "outside",
		"tickson":    "boundaries",
		"ticklen":    "labels",
		"type":       xType,
		"autorange":  true,
		"tickformat": "%b",
		"tickfont":   tickFont(14),
	}

	yaxis := Map{
		"showgrid":       false,
		"zeroline":       false,
		"showline":       false,
		"ticks":          "",
		"showticklabels": false,
		"tickslen":       0,
	}

	layout := Map{
		"showlegend":    false,
		"margin":        Merge(Map{"l": 6, "r": 3, "b": 25, "t": 0, "pad": 0}, opts.Margin),
		"xaxis":         Merge(xaxis, opts.XAxis),
		"yaxis":         Merge(yaxis, opts.YAxis),
		"plot_bgcolor":  plotBg,
		"paper_bgcolor": paperBg,
	}

	return Figure{
		Data:   cloneTraces(data),
		Layout: Merge(layout, opts.Layout),
		Config: Merge(Map{
			"showLink":       false,
			"responsive":     true,
			"staticPlot":     true,
			"displaylogo":    false,
			"displayModeBar": false,
		}, opts.Config),
		Style: Merge(Map{
			"display":   "block",
			"height":    30,
			"marginTop": -27,
			"zIndex":    1,
		}, opts.Style),
	}
}
