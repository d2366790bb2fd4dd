// Package coviddash wires the dashboard API client, the metric catalogue and
// the page renderer into a single Dashboard used by the server and the CLI.
package coviddash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/raykavin/coviddash/pkg/api"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/export"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/raykavin/coviddash/pkg/metricdoc"
	"github.com/raykavin/coviddash/pkg/page"
	"github.com/raykavin/coviddash/pkg/plot"
	"github.com/raykavin/coviddash/pkg/report"
)

// Dashboard serves pages, figures and metric searches.
type Dashboard struct {
	client    *api.Client
	source    core.DataSource
	metrics   core.MetricSource
	catalogue core.Catalogue
	pages     page.Registry
	renderer  *page.Renderer
	log       logger.Logger

	rendererOptions []page.RendererOption
}

// New creates a dashboard backed by client. A nil client talks to the
// public API.
func New(client *api.Client, options ...Option) *Dashboard {
	if client == nil {
		client = api.New(api.DefaultBaseURL, DefaultLog)
	}

	dashboard := &Dashboard{
		client:  client,
		source:  client,
		metrics: client,
		pages:   page.Builtin(""),
		log:     DefaultLog,
	}

	for _, option := range options {
		option(dashboard)
	}

	dashboard.renderer = page.NewRenderer(dashboard.source, dashboard.log, dashboard.rendererOptions...)
	return dashboard
}

// Pages lists the names of the registered pages
func (d *Dashboard) Pages() []string {
	return d.pages.Names()
}

// Page renders the page called name for the filter params of rawQuery
func (d *Dashboard) Page(ctx context.Context, name, rawQuery string, vp plot.Viewport) (page.View, error) {
	p, ok := d.pages.Lookup(name)
	if !ok {
		return page.View{}, fmt.Errorf("%w: %s", core.ErrUnknownPage, name)
	}
	return d.renderer.Render(ctx, p, rawQuery, vp), nil
}

// Figure draws a single figure
func (d *Dashboard) Figure(ctx context.Context, req page.FigureRequest) (plot.Figure, error) {
	return d.renderer.Figure(ctx, req)
}

// Metrics returns the metric catalogue narrowed by criteria. The stored
// catalogue is used when it holds any metric.
func (d *Dashboard) Metrics(ctx context.Context, criteria metricdoc.Criteria) ([]core.Metric, error) {
	if d.catalogue != nil {
		stored, err := d.catalogue.Metrics(ctx, catalogueFilters(criteria)...)
		if err != nil {
			d.log.WithError(err).Warn("catalogue unavailable, falling back to the API")
		} else if len(stored) > 0 {
			return metricdoc.Filter(stored, criteria), nil
		}
	}

	metrics, err := d.metrics.Metrics(ctx, criteria.Query())
	if err != nil {
		return nil, err
	}

	// the API may ignore some criteria, filter locally as well
	return metricdoc.Filter(metrics, criteria), nil
}

func catalogueFilters(criteria metricdoc.Criteria) []core.MetricFilter {
	var filters []core.MetricFilter
	if !criteria.IncludeDeprecated {
		filters = append(filters, core.WithoutDeprecated())
	}
	if criteria.Category != "" {
		filters = append(filters, core.WithCategory(criteria.Category))
	}
	for _, tag := range criteria.Tags {
		filters = append(filters, core.WithTag(tag))
	}
	return filters
}

// SearchMetrics returns the metric search results of criteria. download is
// the export link placed in the results.
func (d *Dashboard) SearchMetrics(ctx context.Context, criteria metricdoc.Criteria, download string) (metricdoc.Results, error) {
	metrics, err := d.Metrics(ctx, criteria)
	if err != nil {
		return metricdoc.Results{}, err
	}
	return metricdoc.Search(metrics, criteria, download), nil
}

// Sync stores the full metric catalogue, deprecated metrics included
func (d *Dashboard) Sync(ctx context.Context) (int, error) {
	if d.catalogue == nil {
		return 0, fmt.Errorf("sync: no catalogue configured")
	}

	metrics, err := d.metrics.Metrics(ctx, core.MetricQuery{IncludeDeprecated: true})
	if err != nil {
		return 0, err
	}

	if err := d.catalogue.SaveMetrics(ctx, metrics); err != nil {
		return 0, err
	}

	d.log.WithField("metrics", len(metrics)).Info("catalogue synchronised")
	return len(metrics), nil
}

// Series fetches the records of metrics
func (d *Dashboard) Series(ctx context.Context, params core.Params, metrics ...string) ([]core.Record, error) {
	return d.source.Series(ctx, params, metrics...)
}

// DownloadURL is the API export link of metrics
func (d *Dashboard) DownloadURL(params core.Params, format string, metrics ...string) (string, error) {
	return d.client.DownloadURL(params, format, metrics...)
}

type exportResponse struct {
	Length int           `json:"length"`
	Data   []core.Record `json:"data"`
}

// WriteExport writes the records of metrics to w as csv or json
func (d *Dashboard) WriteExport(ctx context.Context, w io.Writer, params core.Params, metrics []string, format string) error {
	format = strings.ToLower(format)
	if format != api.FormatCSV && format != api.FormatJSON {
		return fmt.Errorf("%w: %q", api.ErrInvalidFormat, format)
	}

	records, err := d.source.Series(ctx, params, metrics...)
	if err != nil {
		return err
	}

	if format == api.FormatCSV {
		return export.WriteCSV(w, records, metrics)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportResponse{Length: len(records), Data: records})
}

// Downloader returns a bulk CSV downloader drawing its progress on progress
func (d *Dashboard) Downloader(progress io.Writer) export.Downloader {
	return export.NewDownloader(d.source, d.log, progress)
}

// Summary prints a table describing metrics and, when bins is positive, a
// histogram of each of them
func (d *Dashboard) Summary(ctx context.Context, w io.Writer, params core.Params, metrics []string, bins int) error {
	records, err := d.source.Series(ctx, params, metrics...)
	if err != nil {
		return err
	}

	summaries := make([]report.Summary, 0, len(metrics))
	columns := make([]core.Column, 0, len(metrics))
	for _, metric := range metrics {
		column := core.ColumnOf(records, metric)
		columns = append(columns, column)
		summaries = append(summaries, report.Summarise(column))
	}

	report.WriteSummaries(w, summaries)

	if bins <= 0 {
		return nil
	}

	for _, column := range columns {
		if column.Values.Length() == 0 {
			continue
		}
		if err := report.WriteHistogram(w, column, bins); err != nil {
			return err
		}
	}
	return nil
}
