package page

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/logger/zerolog"
	"github.com/raykavin/coviddash/pkg/plot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	layout    core.PageLayout
	layoutErr error
	records   []core.Record
	seriesErr map[string]error
}

func (f *fakeSource) PageLayout(_ context.Context, _ string) (core.PageLayout, error) {
	return f.layout, f.layoutErr
}

func (f *fakeSource) Series(_ context.Context, _ core.Params, metrics ...string) ([]core.Record, error) {
	if err, ok := f.seriesErr[metrics[0]]; ok {
		return nil, err
	}
	return f.records, nil
}

func (f *fakeSource) Headline(_ context.Context, _ core.Params, _ string) (core.Record, error) {
	if len(f.records) == 0 {
		return core.Record{}, core.ErrNoData
	}
	return f.records[len(f.records)-1], nil
}

func float(v float64) *float64 {
	return &v
}

func dailyRecords(days int) []core.Record {
	start := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)
	records := make([]core.Record, days)
	for i := range records {
		records[i] = core.Record{
			Date:     start.AddDate(0, 0, i),
			AreaName: "United Kingdom",
			Values: map[string]*float64{
				"newDeaths28DaysByPublishDate": float(float64(1000 * (i + 1))),
			},
		}
	}
	return records
}

func TestPage_Resolve(t *testing.T) {
	page := Deaths("https://example.org/layouts")
	require.Equal(t, "https://example.org/layouts/deaths.json", page.LayoutURL)

	params := page.Resolve("")
	require.Equal(t, DeathsParams, params)

	params[0].Value = "changed"
	require.Equal(t, "United Kingdom", DeathsParams[0].Value)

	params = page.Resolve("?areaType=nation&areaName=England")
	require.Equal(t, core.Params{
		{Key: "areaType", Sign: "=", Value: "nation"},
		{Key: "areaName", Sign: "=", Value: "England"},
	}, params)
}

func TestRegistry(t *testing.T) {
	registry := Builtin("./layouts/")
	page, ok := registry.Lookup("Deaths")
	require.True(t, ok)
	require.Equal(t, "./layouts/deaths.json", page.LayoutURL)

	registry.Register(Page{Name: "cases"})
	require.Equal(t, []string{"cases", "deaths"}, registry.Names())
}

func TestRenderer_Loading(t *testing.T) {
	source := &fakeSource{layoutErr: errors.New("offline")}
	view := NewRenderer(source, zerolog.Nop()).Render(context.Background(), Deaths(""), "", plot.Desktop)

	require.True(t, view.Loading)
	require.Empty(t, view.Cards)
	require.Equal(t, DeathsParams, view.Params)
}

func TestRenderer_Render(t *testing.T) {
	source := &fakeSource{
		layout: core.PageLayout{
			Title:     "Deaths",
			Headlines: []core.Headline{{Heading: "Daily", Metric: "newDeaths28DaysByPublishDate"}},
			Cards: []core.Card{
				{
					Heading: "Deaths",
					Layout:  map[string]any{"barmode": plot.BarModeLogY},
					Fields: []core.Field{{
						Metric:         "newDeaths28DaysByPublishDate",
						Label:          "Deaths",
						RollingAverage: true,
					}},
				},
				{
					Heading: "Broken",
					Fields:  []core.Field{{Metric: "broken"}},
				},
				{
					Heading:  "Map",
					CardType: "map",
					Fields:   []core.Field{{Metric: "newDeaths28DaysByPublishDate"}},
				},
			},
		},
		records:   dailyRecords(10),
		seriesErr: map[string]error{"broken": fmt.Errorf("wrapped: %w", core.ErrNoData)},
	}

	view := NewRenderer(source, zerolog.Nop()).Render(context.Background(), Deaths(""), "", plot.Mobile)
	require.False(t, view.Loading)
	require.Equal(t, "Deaths", view.Title)

	require.Len(t, view.Headlines, 1)
	assert.Equal(t, "10,000", view.Headlines[0].Value)
	assert.Equal(t, "2020-10-10", view.Headlines[0].Date)

	require.Len(t, view.Cards, 3)
	chart := view.Cards[0]
	require.False(t, chart.Loading)
	require.NotNil(t, chart.Figure)
	require.Len(t, chart.Figure.Data, 2)
	assert.Equal(t, "Deaths (7-day average)", chart.Figure.Data[1]["name"])
	assert.Len(t, chart.Figure.Data[1]["x"], 4)
	assert.Equal(t, "dash", chart.Figure.Data[1]["line"].(plot.Map)["dash"])
	assert.Equal(t, "array", chart.Figure.Layout["yaxis"].(plot.Map)["tickmode"])

	assert.True(t, view.Cards[1].Loading)
	assert.Contains(t, view.Cards[1].Error, "no data")

	assert.True(t, view.Cards[2].Loading)
	assert.Contains(t, view.Cards[2].Error, "unsupported")
}

func TestRenderer_HeadlineUnavailable(t *testing.T) {
	source := &fakeSource{layout: core.PageLayout{
		Headlines: []core.Headline{{Heading: "Daily", Metric: "newDeaths28DaysByPublishDate"}},
	}}

	view := NewRenderer(source, zerolog.Nop()).Render(context.Background(), Deaths(""), "", plot.Desktop)
	require.Equal(t, Placeholder, view.Headlines[0].Value)
}

func TestRenderer_FormatNumber(t *testing.T) {
	renderer := NewRenderer(&fakeSource{}, zerolog.Nop())
	assert.Equal(t, "1,234,567", renderer.FormatNumber(1234567))
	assert.Equal(t, "12.5", renderer.FormatNumber(12.5))
	assert.Equal(t, "0", renderer.FormatNumber(0))
}

func TestTraces(t *testing.T) {
	traces := Traces(dailyRecords(3), []core.Field{
		{Metric: "newDeaths28DaysByPublishDate", Type: "line", Colour: 1, RollingAverage: true},
	})

	// three days are too few for a 7-day average
	require.Len(t, traces, 1)
	assert.Equal(t, "scatter", traces[0]["type"])
	assert.Equal(t, "newDeaths28DaysByPublishDate", traces[0]["name"])
	assert.Equal(t, []string{"2020-10-01", "2020-10-02", "2020-10-03"}, traces[0]["x"])
}

func TestRenderer_Figure(t *testing.T) {
	renderer := NewRenderer(&fakeSource{records: dailyRecords(8)}, zerolog.Nop())
	ctx := context.Background()

	figure, err := renderer.Figure(ctx, FigureRequest{
		Metrics: []string{"newDeaths28DaysByPublishDate"},
		BarMode: plot.BarModeLogY,
		Rolling: true,
	})
	require.NoError(t, err)
	require.Len(t, figure.Data, 2)
	assert.Equal(t, plot.BarModeLogY, figure.Layout["barmode"])
	assert.Equal(t, []float64{1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000}, figure.Data[0]["text"])

	histogram, err := renderer.Figure(ctx, FigureRequest{Kind: KindHistogram, Metrics: []string{"newDeaths28DaysByPublishDate"}})
	require.NoError(t, err)
	assert.Equal(t, 8000.0, histogram.Layout["shapes"].([]plot.Map)[0]["x0"])

	axis, err := renderer.Figure(ctx, FigureRequest{Kind: KindXAxis, Metrics: []string{"newDeaths28DaysByPublishDate"}})
	require.NoError(t, err)
	assert.Equal(t, 30, axis.Style["height"])

	_, err = renderer.Figure(ctx, FigureRequest{Kind: "pie", Metrics: []string{"x"}})
	require.ErrorIs(t, err, core.ErrUnsupportedKind)

	_, err = renderer.Figure(ctx, FigureRequest{})
	require.ErrorIs(t, err, core.ErrInvalidParam)

	_, err = renderer.Figure(ctx, FigureRequest{Kind: KindHistogram, Metrics: []string{"missing"}})
	require.ErrorIs(t, err, core.ErrNoData)
}

func pairedRecords() []core.Record {
	start := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)
	records := make([]core.Record, 0, 4)
	for i, cases := range []float64{100, 200, 300, 400} {
		values := map[string]*float64{"newCases": float(cases), "newDeaths": float(cases / 10)}
		if i == 1 {
			values["newDeaths"] = nil
		}
		records = append(records, core.Record{Date: start.AddDate(0, 0, i), Values: values})
	}
	// newest first, as the API sends them
	slices.Reverse(records)
	return records
}

func TestRenderer_FigureHeatmap(t *testing.T) {
	renderer := NewRenderer(&fakeSource{records: pairedRecords()}, zerolog.Nop())

	figure, err := renderer.Figure(context.Background(), FigureRequest{Kind: KindHeatmap, Metrics: []string{"newCases", "newDeaths"}})
	require.NoError(t, err)
	require.Len(t, figure.Data, 1)

	trace := figure.Data[0]
	assert.Equal(t, "heatmap", trace["type"])
	assert.Equal(t, []string{"2020-10-01", "2020-10-03", "2020-10-04"}, trace["x"])
	assert.Equal(t, []string{"newCases", "newDeaths"}, trace["y"])
	assert.Equal(t, [][]float64{{100, 300, 400}, {10, 30, 40}}, trace["z"])

	_, err = renderer.Figure(context.Background(), FigureRequest{Kind: KindHeatmap, Metrics: []string{"missing"}})
	require.ErrorIs(t, err, core.ErrNoData)
}

func TestRenderer_FigureScatter(t *testing.T) {
	renderer := NewRenderer(&fakeSource{records: pairedRecords()}, zerolog.Nop())
	ctx := context.Background()

	figure, err := renderer.Figure(ctx, FigureRequest{Kind: KindScatter, Metrics: []string{"newCases", "newDeaths"}})
	require.NoError(t, err)
	require.Len(t, figure.Data, 2)

	points := figure.Data[0]
	assert.Equal(t, "markers", points["mode"])
	assert.Equal(t, []float64{100, 300, 400}, points["x"])

	trend := figure.Data[1]
	assert.Equal(t, []float64{100, 400}, trend["x"])
	y := trend["y"].([]float64)
	assert.InDelta(t, 10, y[0], 1e-9)
	assert.InDelta(t, 40, y[1], 1e-9)
	assert.Equal(t, "linear", figure.Layout["xaxis"].(plot.Map)["type"])

	_, err = renderer.Figure(ctx, FigureRequest{Kind: KindScatter, Metrics: []string{"newCases"}})
	require.ErrorIs(t, err, core.ErrInvalidParam)
}

func TestRenderer_FigureMap(t *testing.T) {
	day := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)
	records := []core.Record{
		{Date: day, AreaCode: "E92000001", AreaName: "England", Values: map[string]*float64{"newCases": float(10)}},
		{Date: day.AddDate(0, 0, 1), AreaCode: "E92000001", AreaName: "England", Values: map[string]*float64{"newCases": float(12)}},
		{Date: day, AreaCode: "W92000004", AreaName: "Wales", Values: map[string]*float64{"newCases": float(3)}},
	}
	renderer := NewRenderer(&fakeSource{records: records}, zerolog.Nop(),
		WithMapSource(plot.MapSource{Style: "https://example.org/style.json", BaseGeo: "https://example.org/geo/"}))
	ctx := context.Background()

	figure, err := renderer.Figure(ctx, FigureRequest{
		Kind:    KindMap,
		Metrics: []string{"newCases"},
		Params:  core.Params{{Key: "areaType", Sign: "=", Value: "nation"}},
	})
	require.NoError(t, err)

	trace := figure.Data[0]
	assert.Equal(t, "choroplethmapbox", trace["type"])
	assert.Equal(t, "https://example.org/geo/nation.geojson", trace["geojson"])
	assert.Equal(t, []string{"E92000001", "W92000004"}, trace["locations"])
	assert.Equal(t, []float64{12, 3}, trace["z"])
	assert.Equal(t, "https://example.org/style.json", figure.Layout["mapbox"].(plot.Map)["style"])

	figure, err = renderer.Figure(ctx, FigureRequest{Kind: KindMap, Metrics: []string{"newCases"}, GeoJSON: "utla.geojson"})
	require.NoError(t, err)
	assert.Equal(t, "utla.geojson", figure.Data[0]["geojson"])

	_, err = renderer.Figure(ctx, FigureRequest{Kind: KindMap, Metrics: []string{"newCases"}})
	require.ErrorIs(t, err, core.ErrInvalidParam)
}
