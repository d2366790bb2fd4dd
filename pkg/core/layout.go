package core

// PageLayout is the card arrangement of a dashboard page.
type PageLayout struct {
	Title     string     `json:"title" yaml:"title"`
	Headlines []Headline `json:"headlineNumbers" yaml:"headlineNumbers"`
	Cards     []Card     `json:"cards" yaml:"cards"`
}

// Headline is a big number shown at the top of a page.
type Headline struct {
	Heading string `json:"heading" yaml:"heading"`
	Metric  string `json:"value" yaml:"value"`
	Tooltip string `json:"tooltip" yaml:"tooltip"`
}

// Card is a chart card. Params override the page params for this card only.
type Card struct {
	Heading   string         `json:"heading" yaml:"heading"`
	CardType  string         `json:"cardType" yaml:"cardType"`
	FullWidth bool           `json:"fullWidth" yaml:"fullWidth"`
	Params    []Param        `json:"params" yaml:"params"`
	Layout    map[string]any `json:"layout" yaml:"layout"`
	Fields    []Field        `json:"fields" yaml:"fields"`
}

// Field maps a metric to a trace of a card chart.
type Field struct {
	Metric         string `json:"value" yaml:"value"`
	Label          string `json:"label" yaml:"label"`
	Colour         int    `json:"colour" yaml:"colour"`
	Type           string `json:"type" yaml:"type"`
	RollingAverage bool   `json:"rollingAverage" yaml:"rollingAverage"`
}

// Metrics lists the metric names used by the card.
func (c Card) Metrics() []string {
	out := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		out = append(out, f.Metric)
	}
	return out
}
