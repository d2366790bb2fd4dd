package core

import "context"

// MetricSource lists the metrics known to the dashboard API.
type MetricSource interface {
	Metrics(ctx context.Context, query MetricQuery) ([]Metric, error)
}

// DataSource fetches page layouts and series data.
type DataSource interface {
	PageLayout(ctx context.Context, location string) (PageLayout, error)
	Series(ctx context.Context, params Params, metrics ...string) ([]Record, error)
	Headline(ctx context.Context, params Params, metric string) (Record, error)
}

// MetricQuery narrows a metric catalogue request on the server side.
type MetricQuery struct {
	Search            string
	Category          string
	Tags              []string
	IncludeDeprecated bool
}
