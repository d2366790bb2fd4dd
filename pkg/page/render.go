package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/indicator"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/raykavin/coviddash/pkg/plot"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// View is a rendered page. Loading is set when the layout could not be
// fetched, in which case nothing else is filled.
type View struct {
	Name      string         `json:"name"`
	Title     string         `json:"title"`
	Loading   bool           `json:"loading"`
	Params    core.Params    `json:"params"`
	Headlines []HeadlineView `json:"headlines"`
	Cards     []CardView     `json:"cards"`
}

// HeadlineView is a formatted headline number.
type HeadlineView struct {
	Heading string `json:"heading"`
	Metric  string `json:"metric"`
	Tooltip string `json:"tooltip,omitempty"`
	Value   string `json:"value"`
	Date    string `json:"date,omitempty"`
}

// CardView is a rendered card; Loading marks a card whose data failed.
type CardView struct {
	Heading   string       `json:"heading"`
	CardType  string       `json:"cardType"`
	FullWidth bool         `json:"fullWidth"`
	Loading   bool         `json:"loading"`
	Error     string       `json:"error,omitempty"`
	Figure    *plot.Figure `json:"figure,omitempty"`
}

// Placeholder is shown for headline values that could not be fetched.
const Placeholder = "N/A"

// Renderer draws pages from a data source.
type Renderer struct {
	source  core.DataSource
	log     logger.Logger
	printer *message.Printer

	mapSource plot.MapSource

	mu         sync.Mutex
	maxWorkers int
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithLanguage sets the locale of the headline numbers
func WithLanguage(tag language.Tag) RendererOption {
	return func(r *Renderer) {
		r.printer = message.NewPrinter(tag)
	}
}

// WithMapSource sets the basemap and boundary files of map figures
func WithMapSource(src plot.MapSource) RendererOption {
	return func(r *Renderer) {
		r.mapSource = src
	}
}

// WithMaxWorkers bounds the number of cards fetched at once
func WithMaxWorkers(n int) RendererOption {
	return func(r *Renderer) {
		r.maxWorkers = n
	}
}

// NewRenderer creates a renderer reading from source
func NewRenderer(source core.DataSource, log logger.Logger, options ...RendererOption) *Renderer {
	renderer := &Renderer{
		source:     source,
		log:        log,
		printer:    message.NewPrinter(language.BritishEnglish),
		maxWorkers: 4,
	}
	for _, option := range options {
		option(renderer)
	}
	return renderer
}

// Render fetches the layout of page and draws it for the params of rawQuery.
func (r *Renderer) Render(ctx context.Context, page Page, rawQuery string, vp plot.Viewport) View {
	params := page.Resolve(rawQuery)
	view := View{Name: page.Name, Title: page.Title, Params: params}
	log := r.log.WithFields(map[string]any{"page": page.Name, "params": params.Filters()})

	layout, err := r.source.PageLayout(ctx, page.LayoutURL)
	if err != nil {
		log.WithError(err).Warn("page layout unavailable")
		view.Loading = true
		return view
	}
	if layout.Title != "" {
		view.Title = layout.Title
	}

	view.Headlines = make([]HeadlineView, len(layout.Headlines))
	view.Cards = make([]CardView, len(layout.Cards))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.maxWorkers)

	for i, headline := range layout.Headlines {
		group.Go(func() error {
			view.Headlines[i] = r.headline(groupCtx, log, params, headline)
			return nil
		})
	}

	for i, card := range layout.Cards {
		group.Go(func() error {
			view.Cards[i] = r.card(groupCtx, log, params, card, vp)
			return nil
		})
	}

	// workers never fail; errors are reported inside the views
	_ = group.Wait()

	return view
}

func (r *Renderer) headline(ctx context.Context, log logger.Logger, params core.Params, headline core.Headline) HeadlineView {
	out := HeadlineView{
		Heading: headline.Heading,
		Metric:  headline.Metric,
		Tooltip: headline.Tooltip,
		Value:   Placeholder,
	}

	record, err := r.source.Headline(ctx, params, headline.Metric)
	if err != nil {
		log.WithError(err).WithField("metric", headline.Metric).Warn("headline unavailable")
		return out
	}

	value, ok := record.Values[headline.Metric]
	if !ok || value == nil {
		return out
	}

	out.Value = r.FormatNumber(*value)
	out.Date = record.Date.Format(core.DateLayout)
	return out
}

// FormatNumber writes value with thousands separators.
func (r *Renderer) FormatNumber(value float64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.printer.Sprint(number.Decimal(value, number.MaxFractionDigits(1)))
}

func (r *Renderer) card(ctx context.Context, log logger.Logger, params core.Params, card core.Card, vp plot.Viewport) CardView {
	out := CardView{
		Heading:   card.Heading,
		CardType:  card.CardType,
		FullWidth: card.FullWidth,
	}

	figure, err := r.cardFigure(ctx, params.With(card.Params...), card, vp)
	if err != nil {
		log.WithError(err).WithField("card", card.Heading).Warn("card unavailable")
		out.Loading = true
		out.Error = err.Error()
		return out
	}

	out.Figure = &figure
	return out
}

func (r *Renderer) cardFigure(ctx context.Context, params core.Params, card core.Card, vp plot.Viewport) (plot.Figure, error) {
	switch card.CardType {
	case "", "chart":
	default:
		return plot.Figure{}, fmt.Errorf("%w: %s", core.ErrUnsupportedKind, card.CardType)
	}

	if len(card.Fields) == 0 {
		return plot.Figure{}, fmt.Errorf("card %q: %w", card.Heading, core.ErrNoData)
	}

	records, err := r.source.Series(ctx, params, card.Metrics()...)
	if err != nil {
		return plot.Figure{}, err
	}

	return plot.Plotter(Traces(records, card.Fields), plot.Options{
		Layout:   plot.Map(card.Layout),
		Viewport: vp,
	}), nil
}

// Traces turns records into one trace per field, plus a dashed 7-day
// average for fields that ask for it.
func Traces(records []core.Record, fields []core.Field) []plot.Trace {
	traces := make([]plot.Trace, 0, len(fields))
	for _, field := range fields {
		column := core.ColumnOf(records, field.Metric)
		colour := plot.ColourAt(field.Colour)
		label := field.Label
		if label == "" {
			label = field.Metric
		}

		dates := column.DateStrings(core.DateLayout)
		values := column.Values.Values()
		if field.Type == "line" {
			traces = append(traces, plot.LineTrace(label, dates, values, colour, ""))
		} else {
			traces = append(traces, plot.BarTrace(label, dates, values, colour))
		}

		if !field.RollingAverage {
			continue
		}

		average := indicator.RollingAverage(column, indicator.RollingWindow, indicator.TypeSMA)
		if average.Values.Length() == 0 {
			continue
		}
		traces = append(traces, plot.LineTrace(
			label+" (7-day average)",
			average.DateStrings(core.DateLayout),
			average.Values.Values(),
			colour,
			"dash",
		))
	}
	return traces
}
