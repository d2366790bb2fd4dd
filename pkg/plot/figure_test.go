package plot

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/raykavin/coviddash/pkg/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	defaults := Map{"a": 1, "b": Map{"c": 2, "d": 3}}
	override := Map{"b": Map{"c": 99}}

	merged := Merge(defaults, override)

	require.Equal(t, Map{"a": 1, "b": Map{"c": 99}}, merged)
	require.Equal(t, Map{"a": 1, "b": Map{"c": 2, "d": 3}}, defaults)
	require.Equal(t, Map{"b": Map{"c": 99}}, override)
}

func TestMerge_Nil(t *testing.T) {
	require.Equal(t, Map{}, Merge(nil, nil))
	require.Equal(t, Map{"a": 1}, Merge(Map{"a": 1}, nil))
	require.Equal(t, Map{"a": 1}, Merge(nil, Map{"a": 1}))
}

func TestPlotter_Defaults(t *testing.T) {
	figure := Plotter([]Trace{BarTrace("Cases", []string{"2020-10-01"}, []float64{10}, ColourAt(0))}, Options{})

	assert.Equal(t, "x unified", figure.Layout["hovermode"])
	assert.Equal(t, Map{"display": "block", "height": 350}, figure.Style)
	assert.Equal(t, false, figure.Config["displaylogo"])

	margin := figure.Layout["margin"].(Map)
	assert.Equal(t, 80, margin["l"])
	assert.Equal(t, 10, margin["r"])

	xaxis := figure.Layout["xaxis"].(Map)
	assert.Equal(t, "date", xaxis["type"])
	assert.Equal(t, false, xaxis["fixedrange"])

	yaxis := figure.Layout["yaxis"].(Map)
	assert.Equal(t, ",r", yaxis["tickformat"])
	assert.NotContains(t, yaxis, "tickvals")
	assert.Contains(t, figure.Description, `"Data" tab`)
}

func TestPlotter_Mobile(t *testing.T) {
	figure := Plotter(nil, Options{Viewport: Mobile, Categorical: true})

	margin := figure.Layout["margin"].(Map)
	assert.Equal(t, 30, margin["l"])

	xaxis := figure.Layout["xaxis"].(Map)
	assert.Equal(t, "category", xaxis["type"])
	assert.Equal(t, true, xaxis["fixedrange"])

	yaxis := figure.Layout["yaxis"].(Map)
	assert.Equal(t, "inside", yaxis["ticks"])
	assert.Equal(t, ".2s", yaxis["tickformat"])
}

func TestPlotter_Overrides(t *testing.T) {
	figure := Plotter(nil, Options{
		Margin: Map{"l": 0},
		XAxis:  Map{"tickformat": "%b"},
		Config: Map{"toImageButtonOptions": Map{"format": "svg"}},
		Style:  Map{"height": 500},
		Layout: Map{"showlegend": false},
	})

	margin := figure.Layout["margin"].(Map)
	assert.Equal(t, 0, margin["l"])
	assert.Equal(t, 10, margin["r"])

	xaxis := figure.Layout["xaxis"].(Map)
	assert.Equal(t, "%b", xaxis["tickformat"])
	assert.Equal(t, "outside", xaxis["ticks"])

	// nested config objects are replaced, not merged
	assert.Equal(t, Map{"format": "svg"}, figure.Config["toImageButtonOptions"])
	assert.Equal(t, Map{"display": "block", "height": 500}, figure.Style)
	assert.Equal(t, false, figure.Layout["showlegend"])
}

func TestPlotter_LayoutReplacesAxis(t *testing.T) {
	figure := Plotter(nil, Options{Layout: Map{"yaxis": Map{"title": "Deaths"}}})
	require.Equal(t, Map{"title": "Deaths"}, figure.Layout["yaxis"])
}

func TestPlotter_LogY(t *testing.T) {
	input := []Trace{
		{"name": "Cases", "y": []float64{-50, 0, 25, 500}},
		{"name": "Deaths", "y": []int{1, 10}},
		{"name": "Annotation"},
	}

	figure := Plotter(input, Options{
		Layout:     Map{"barmode": BarModeLogY},
		Thresholds: []float64{-1000, -10, 0, 10, 100, 1000},
	})

	yaxis := figure.Layout["yaxis"].(Map)
	assert.Equal(t, "array", yaxis["tickmode"])
	assert.Equal(t, []float64{-50, -10, 0, 10, 100, 500}, yaxis["ticktext"])
	assert.Len(t, yaxis["tickvals"], 6)

	cases := figure.Data[0]
	assert.Equal(t, []float64{-50, 0, 25, 500}, cases["text"])
	assert.Equal(t, scale.HoverTemplate, cases["hovertemplate"])
	y := cases["y"].([]float64)
	assert.InDelta(t, -math.Log(50), y[0], 1e-12)
	assert.Equal(t, 0.0, y[1])

	deaths := figure.Data[1]
	assert.Equal(t, []float64{1, 10}, deaths["text"])
	assert.NotContains(t, figure.Data[2], "hovertemplate")

	// the caller's traces are untouched
	assert.Equal(t, []float64{-50, 0, 25, 500}, input[0]["y"])
	assert.NotContains(t, input[0], "text")

	_, err := json.Marshal(figure)
	require.NoError(t, err)
}

func TestPlotter_LogYEmpty(t *testing.T) {
	figure := Plotter([]Trace{{"y": []float64{}}}, Options{Layout: Map{"barmode": BarModeLogY}})

	yaxis := figure.Layout["yaxis"].(Map)
	assert.Empty(t, yaxis["tickvals"])
	assert.Empty(t, yaxis["ticktext"])
	assert.Equal(t, []float64{}, figure.Data[0]["y"])
}

func TestViewportFor(t *testing.T) {
	assert.Equal(t, Desktop, ViewportFor(0))
	assert.Equal(t, Mobile, ViewportFor(320))
	assert.Equal(t, Desktop, ViewportFor(Breakpoint))
	assert.Equal(t, Mobile, ParseViewport("mobile"))
	assert.Equal(t, "desktop", Desktop.String())
}

func TestFloats(t *testing.T) {
	values, ok := Floats([]any{1.5, 2, json.Number("3")})
	require.True(t, ok)
	require.Equal(t, []float64{1.5, 2, 3}, values)

	_, ok = Floats([]any{"x"})
	require.False(t, ok)

	_, ok = Floats("nope")
	require.False(t, ok)
}
