package page

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/plot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Figure kinds
const (
	KindChart     = "chart"
	KindHistogram = "histogram"
	KindXAxis     = "xaxis"
	KindHeatmap   = "heatmap"
	KindScatter   = "scatter"
	KindMap       = "map"
)

var kinds = []string{KindChart, KindHistogram, KindXAxis, KindHeatmap, KindScatter, KindMap}

// FigureRequest selects a single figure outside of a page layout.
type FigureRequest struct {
	Kind     string
	Metrics  []string
	Params   core.Params
	BarMode  string
	Rolling  bool
	Viewport plot.Viewport

	// GeoJSON is the boundary file of a map; empty means <areaType>.geojson
	// under the map source
	GeoJSON string
}

// Figure draws the figure described by req.
func (r *Renderer) Figure(ctx context.Context, req FigureRequest) (plot.Figure, error) {
	if len(req.Metrics) == 0 {
		return plot.Figure{}, fmt.Errorf("%w: no metric", core.ErrInvalidParam)
	}

	kind := req.Kind
	if kind == "" {
		kind = KindChart
	}
	if !slices.Contains(kinds, kind) {
		return plot.Figure{}, fmt.Errorf("%w: %s", core.ErrUnsupportedKind, kind)
	}
	if kind == KindScatter && len(req.Metrics) != 2 {
		return plot.Figure{}, fmt.Errorf("%w: scatter needs two metrics, got %d", core.ErrInvalidParam, len(req.Metrics))
	}

	records, err := r.source.Series(ctx, req.Params, req.Metrics...)
	if err != nil {
		return plot.Figure{}, err
	}

	opts := plot.Options{Viewport: req.Viewport}

	switch kind {
	case KindHistogram:
		column := core.ColumnOf(records, req.Metrics[0])
		_, current, ok := column.Latest()
		if !ok {
			return plot.Figure{}, fmt.Errorf("histogram %s: %w", column.Metric, core.ErrNoData)
		}
		return plot.Histogram(column.Values.Values(), current, req.Viewport), nil

	case KindXAxis:
		column := core.ColumnOf(records, req.Metrics[0])
		return plot.XAxis(
			[]plot.Trace{{"x": column.DateStrings(core.DateLayout), "y": column.Values.Values()}},
			opts,
		), nil

	case KindHeatmap:
		dates, rows := aligned(records, req.Metrics)
		if len(dates) == 0 {
			return plot.Figure{}, fmt.Errorf("heatmap: %w", core.ErrNoData)
		}
		return plot.Heatmap([]plot.HeatmapData{{
			Label: strings.Join(req.Metrics, ", "),
			X:     dates,
			Y:     req.Metrics,
			Z:     rows,
		}}, opts)

	case KindScatter:
		return scatter(records, req.Metrics, opts)

	case KindMap:
		return r.choropleth(records, req)
	}

	fields := make([]core.Field, len(req.Metrics))
	for i, metric := range req.Metrics {
		fields[i] = core.Field{Metric: metric, Colour: i, RollingAverage: req.Rolling}
	}

	if req.BarMode != "" {
		opts.Layout = plot.Map{"barmode": req.BarMode}
	}

	return plot.Plotter(Traces(records, fields), opts), nil
}

// aligned keeps the dates, oldest first, on which every metric has a value.
// rows[i] holds the values of metrics[i].
func aligned(records []core.Record, metrics []string) ([]string, [][]float64) {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b core.Record) int {
		return a.Date.Compare(b.Date)
	})

	dates := make([]string, 0, len(sorted))
	rows := make([][]float64, len(metrics))
	for i := range rows {
		rows[i] = make([]float64, 0, len(sorted))
	}

	for _, record := range sorted {
		complete := true
		for _, metric := range metrics {
			if value, ok := record.Values[metric]; !ok || value == nil {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		dates = append(dates, record.Date.Format(core.DateLayout))
		for i, metric := range metrics {
			rows[i] = append(rows[i], *record.Values[metric])
		}
	}
	return dates, rows
}

// scatter plots the second metric against the first with a least squares
// trend line.
func scatter(records []core.Record, metrics []string, opts plot.Options) (plot.Figure, error) {
	dates, rows := aligned(records, metrics)
	if len(dates) < 2 {
		return plot.Figure{}, fmt.Errorf("scatter: %w", core.ErrNoData)
	}

	xs, ys := rows[0], rows[1]
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	low, high := floats.Min(xs), floats.Max(xs)

	points := plot.Trace{
		"type": "scatter",
		"mode": "markers",
		"name": metrics[1],
		"x":    xs,
		"y":    ys,
		"text": dates,
	}
	trend := plot.Trace{
		"name": "Trend",
		"x":    []float64{low, high},
		"y":    []float64{alpha + beta*low, alpha + beta*high},
	}

	opts.XAxis = plot.Map{"type": "linear", "tickformat": ",r", "title": metrics[0]}
	opts.YAxis = plot.Map{"title": metrics[1]}
	return plot.ScatterWithTrendLine(points, trend, opts), nil
}

// choropleth colours every area by the latest value of the first metric.
func (r *Renderer) choropleth(records []core.Record, req FigureRequest) (plot.Figure, error) {
	metric := req.Metrics[0]

	geojson := req.GeoJSON
	if geojson == "" {
		areaType, ok := req.Params.Get("areaType")
		if !ok {
			return plot.Figure{}, fmt.Errorf("%w: map needs an areaType or a geojson file", core.ErrInvalidParam)
		}
		geojson = r.mapSource.BaseGeo + areaType + ".geojson"
	}

	latest := make(map[string]core.Record)
	order := make([]string, 0)
	for _, record := range records {
		if value, ok := record.Values[metric]; !ok || value == nil {
			continue
		}
		current, seen := latest[record.AreaCode]
		if !seen {
			order = append(order, record.AreaCode)
		}
		if !seen || record.Date.After(current.Date) {
			latest[record.AreaCode] = record
		}
	}
	if len(order) == 0 {
		return plot.Figure{}, fmt.Errorf("map %s: %w", metric, core.ErrNoData)
	}

	codes := make([]string, len(order))
	names := make([]string, len(order))
	values := make([]float64, len(order))
	for i, code := range order {
		record := latest[code]
		codes[i] = code
		names[i] = record.AreaName
		values[i] = *record.Values[metric]
	}

	return plot.Choropleth(plot.Trace{
		"geojson":      geojson,
		"featureidkey": "properties.code",
		"locations":    codes,
		"z":            values,
		"text":         names,
	}, r.mapSource, plot.Options{Viewport: req.Viewport}), nil
}
