package plot

import (
	"testing"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmapColorscale(t *testing.T) {
	scale := HeatmapColorscale()
	require.Len(t, scale, 6)
	assert.Equal(t, []any{0.0, "rgb(224,229,67)"}, scale[0])
	assert.Equal(t, []any{10.0 / 400, "rgb(116,187,104)"}, scale[1])
	assert.Equal(t, []any{1.0, "rgb(83,8,74)"}, scale[5])

	// palette entries are parsed once at package load
	assert.Equal(t, "#12407f", heatmapStops[4].colour.Hex())
}

func TestHeatmap(t *testing.T) {
	figure, err := Heatmap([]HeatmapData{{
		Label: "Rate per 100,000 population",
		X:     []string{"2020-10-01", "2020-10-02"},
		Y:     []string{"0-59", "60+"},
		Z:     [][]float64{{12, 40}, {300, 410}},
	}}, Options{})
	require.NoError(t, err)

	require.Len(t, figure.Data, 1)
	assert.Equal(t, 400, figure.Data[0]["zmax"])
	assert.Len(t, figure.Layout["annotations"], 1)
	assert.Equal(t, 80, figure.Layout["margin"].(Map)["l"])
	assert.Equal(t, false, figure.Layout["yaxis"].(Map)["fixedrange"])

	mobile, err := Heatmap([]HeatmapData{{Label: "rate"}}, Options{Viewport: Mobile})
	require.NoError(t, err)
	assert.Empty(t, mobile.Layout["annotations"])
	assert.Equal(t, 50, mobile.Layout["margin"].(Map)["l"])
}

func TestHeatmap_Empty(t *testing.T) {
	_, err := Heatmap(nil, Options{})
	require.ErrorIs(t, err, core.ErrNoData)
}

func TestChoropleth(t *testing.T) {
	figure := Choropleth(
		Trace{"geojson": "utla.geojson", "z": []float64{1, 2}},
		MapSource{Style: "https://example.org/style.json", BaseGeo: "https://example.org/geo/"},
		Options{Layout: Map{"height": 650}},
	)

	require.Len(t, figure.Data, 1)
	assert.Equal(t, "choroplethmapbox", figure.Data[0]["type"])
	assert.Equal(t, "utla.geojson", figure.Data[0]["geojson"])
	assert.Equal(t, 650, figure.Layout["height"])
	assert.Equal(t, zeroMargin(), figure.Layout["margin"])

	mapbox := figure.Layout["mapbox"].(Map)
	assert.Equal(t, "https://example.org/style.json", mapbox["style"])
	layers := mapbox["layers"].([]Map)
	assert.Equal(t, "https://example.org/geo/countries_v1.geojson", layers[0]["source"])

	image := figure.Config["toImageButtonOptions"].(Map)
	assert.Equal(t, 1200, image["width"])
}

func TestChoropleth_MarginReplacesPreset(t *testing.T) {
	figure := Choropleth(Trace{}, MapSource{}, Options{Margin: Map{"t": 40}})

	margin := figure.Layout["margin"].(Map)
	assert.Equal(t, 40, margin["t"])
	// the zero preset is dropped, so the plotter defaults fill the rest
	assert.Equal(t, 80, margin["l"])
	assert.Equal(t, 10, margin["r"])
	assert.Equal(t, 25, margin["b"])
}

func TestScatterWithTrendLine(t *testing.T) {
	figure := ScatterWithTrendLine(
		Trace{"x": []float64{1, 2}, "y": []float64{3, 4}},
		Trace{"x": []float64{1, 2}, "y": []float64{3.1, 3.9}},
		Options{},
	)

	require.Len(t, figure.Data, 2)
	assert.Equal(t, "heatmap", figure.Data[0]["type"])
	assert.Equal(t, "lines", figure.Data[1]["mode"])
	assert.Equal(t, "rgba(109,109,109,0.7)", figure.Data[1]["line"].(Map)["color"])
	assert.Equal(t, true, figure.Config["displayModeBar"])
	assert.Equal(t, 500, figure.Layout["height"])
}

func TestHistogram(t *testing.T) {
	figure := Histogram([]float64{1, 2, 3}, 2, Desktop)

	assert.Equal(t, "percent", figure.Data[0]["histnorm"])
	assert.Equal(t, true, figure.Config["staticPlot"])
	shapes := figure.Layout["shapes"].([]Map)
	assert.Equal(t, 2.0, shapes[0]["x0"])
	assert.Equal(t, ".2s", Histogram(nil, 0, Mobile).Layout["yaxis"].(Map)["tickformat"])
}

func TestXAxis(t *testing.T) {
	figure := XAxis([]Trace{{"x": []string{"2020-10-01"}}}, Options{Margin: Map{"l": 80}})

	assert.Equal(t, false, figure.Config["displayModeBar"])
	assert.Equal(t, 30, figure.Style["height"])
	assert.Equal(t, 80, figure.Layout["margin"].(Map)["l"])
	assert.Equal(t, "%b", figure.Layout["xaxis"].(Map)["tickformat"])
}
