package plot

import (
	"github.com/raykavin/coviddash/pkg/scale"
)

const (
	fontFamily  = `"GDS Transport", Arial, sans-serif`
	tickColour  = "#6B7276"
	plotBg      = "rgba(231,231,231,0)"
	paperBg     = "rgba(255,255,255,0)"
	BarModeLogY = "logy"
)

// description is the screen reader text placed before every chart.
const description = `The data that is visualised in the chart is that which is tabulated ` +
	`under the "Data" tab. The tables do not include the rolling average metric ` +
	`(where the metric is included).`

// Figure is everything plotly needs to draw a chart.
type Figure struct {
	Data        []Trace `json:"data"`
	Layout      Map     `json:"layout"`
	Config      Map     `json:"config"`
	Style       Map     `json:"style,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Options are the caller overrides of a figure. Each map is merged over the
// matching defaults with Merge.
type Options struct {
	Layout Map
	XAxis  Map
	YAxis  Map
	Config Map
	Margin Map
	Style  Map

	// Categorical switches the x axis from dates to categories
	Categorical bool

	// Viewport picks the desktop or mobile defaults
	Viewport Viewport

	// ScreenReader is appended to the chart description
	ScreenReader string

	// Thresholds are the logy tick candidates; nil means scale.DefaultThresholds
	Thresholds []float64
}

func defaultConfig() Map {
	return Map{
		"showLink":    false,
		"responsive":  true,
		"displaylogo": false,
		"modeBarButtonsToRemove": []string{
			"autoScale2d",
			"toggleSpikelines",
			"hoverClosestCartesian",
			"select2d",
			"lasso2d",
		},
		"toImageButtonOptions": Map{
			"format":   "png",
			"filename": "export",
			"height":   989,
			"width":    1600,
			"scale":    4,
		},
	}
}

func legend(size int) Map {
	return Map{
		"orientation": "h",
		"font": Map{
			"family": fontFamily,
			"size":   size,
		},
		"xanchor": "auto",
		"y":       -.2,
	}
}

func tickFont(size int) Map {
	return Map{
		"family": fontFamily,
		"size":   size,
		"color":  tickColour,
	}
}

// Plotter builds the standard dashboard chart around data. When the layout
// bar mode is "logy" every trace is plotted on the signed log scale and the y
// axis gets ticks labelled with the original values. data is not modified.
func Plotter(data []Trace, opts Options) Figure {
	vp := opts.Viewport
	traces := cloneTraces(data)

	xType := "date"
	if opts.Categorical {
		xType = "category"
	}

	xaxis := Map{
		"showgrid":   false,
		"zeroline":   false,
		"showline":   false,
		"fixedrange": vp == Mobile,
		"tickslen":   10,
		"ticks":      "outside",
		"tickson":    "boundaries",
		"ticklen":    "labels",
		"type":       xType,
		"tickformat": "%d %b",
		"tickfont":   tickFont(pick(vp, 14, 10)),
	}

	yaxis := Map{
		"tickslen":   0,
		"ticks":      pick(vp, "outside", "inside"),
		"fixedrange": vp == Mobile,
		"tickson":    "boundaries",
		"ticklen":    "labels",
		"tickcolor":  "#f1f1f1",
		"tickformat": pick(vp, ",r", ".2s"),
		"tickfont":   tickFont(pick(vp, 13, 10)),
	}

	if opts.Layout.String("barmode") == BarModeLogY {
		applyLogY(traces, yaxis, opts.Thresholds)
	}

	margin := Map{
		"l":   pick(vp, 80, 30),
		"r":   pick(vp, 10, 5),
		"b":   25,
		"t":   10,
		"pad": 0,
	}

	layout := Map{
		"hovermode":     "x unified",
		"legend":        legend(pick(vp, 15, 12)),
		"showlegend":    true,
		"margin":        Merge(margin, opts.Margin),
		"xaxis":         Merge(xaxis, opts.XAxis),
		"yaxis":         Merge(yaxis, opts.YAxis),
		"plot_bgcolor":  plotBg,
		"paper_bgcolor": paperBg,
	}

	text := description
	if opts.ScreenReader != "" {
		text += " " + opts.ScreenReader
	}

	return Figure{
		Data:        traces,
		Layout:      Merge(layout, opts.Layout),
		Config:      Merge(defaultConfig(), opts.Config),
		Style:       Merge(Map{"display": "block", "height": 350}, opts.Style),
		Description: text,
	}
}

// applyLogY rewrites traces in place; callers pass clones.
func applyLogY(traces []Trace, yaxis Map, thresholds []float64) {
	if thresholds == nil {
		thresholds = scale.DefaultThresholds
	}

	var reference []float64
	if len(traces) > 0 {
		reference, _ = Floats(traces[0]["y"])
	}
	axis := scale.Ticks(reference, thresholds)

	yaxis["tickmode"] = "array"
	yaxis["tickvals"] = axis.Vals
	yaxis["ticktext"] = axis.Text

	for _, trace := range traces {
		values, ok := Floats(trace["y"])
		if !ok {
			continue
		}
		trace["text"] = values
		trace["y"] = scale.TransformAll(values)
		trace["hovertemplate"] = scale.HoverTemplate
	}
}

func cloneTraces(data []Trace) []Trace {
	out := make([]Trace, len(data))
	for i, trace := range data {
		out[i] = trace.Clone()
	}
	return out
}
