package coviddash

import (
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/raykavin/coviddash/pkg/page"
	"github.com/raykavin/coviddash/pkg/plot"
)

// Option is a functional option for configuring a Dashboard instance
type Option func(*Dashboard)

// WithLogger replaces DefaultLog
func WithLogger(log logger.Logger) Option {
	return func(d *Dashboard) {
		d.log = log
	}
}

// WithCatalogue serves metric searches from a stored catalogue snapshot and
// lets Sync refresh it
func WithCatalogue(catalogue core.Catalogue) Option {
	return func(d *Dashboard) {
		d.catalogue = catalogue
	}
}

// WithDataSource reads layouts and series from source instead of the API client
func WithDataSource(source core.DataSource) Option {
	return func(d *Dashboard) {
		d.source = source
	}
}

// WithMetricSource lists metrics from source instead of the API client
func WithMetricSource(source core.MetricSource) Option {
	return func(d *Dashboard) {
		d.metrics = source
	}
}

// WithPage registers an extra page
func WithPage(p page.Page) Option {
	return func(d *Dashboard) {
		d.pages.Register(p)
	}
}

// WithLayoutBase reads the builtin page layouts from base, a URL or a directory
func WithLayoutBase(base string) Option {
	return func(d *Dashboard) {
		for name, p := range page.Builtin(base) {
			d.pages[name] = p
		}
	}
}

// WithMapSource sets the basemap and boundary files of map figures
func WithMapSource(src plot.MapSource) Option {
	return func(d *Dashboard) {
		d.rendererOptions = append(d.rendererOptions, page.WithMapSource(src))
	}
}
