// Package metricdoc implements the metric documentation browser: filtering
// the metric catalogue and presenting the matches.
package metricdoc

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/StudioSol/set"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/samber/lo"
)

// Criteria select metrics of the catalogue. Empty fields match everything.
type Criteria struct {
	Search            string
	Category          string
	Tags              []string
	IncludeDeprecated bool
}

// Match reports whether metric satisfies every criterion. Search matches the
// API name or the display name, ignoring case.
func (c Criteria) Match(metric core.Metric) bool {
	if metric.Deprecated && !c.IncludeDeprecated {
		return false
	}

	if c.Category != "" && !strings.EqualFold(metric.Category, c.Category) {
		return false
	}

	if !lo.EveryBy(c.Tags, metric.HasTag) {
		return false
	}

	if c.Search == "" {
		return true
	}

	needle := strings.ToLower(c.Search)
	return strings.Contains(strings.ToLower(metric.Metric), needle) ||
		strings.Contains(strings.ToLower(metric.Name), needle)
}

// Narrowed reports whether criteria other than the search text are set.
func (c Criteria) Narrowed() bool {
	return c.Category != "" || len(c.Tags) > 0
}

// Query converts the criteria to a server side catalogue query.
func (c Criteria) Query() core.MetricQuery {
	return core.MetricQuery{
		Search:            c.Search,
		Category:          c.Category,
		Tags:              c.Tags,
		IncludeDeprecated: c.IncludeDeprecated,
	}
}

// Filter returns the metrics matching c, in their original order.
func Filter(metrics []core.Metric, c Criteria) []core.Metric {
	return lo.Filter(metrics, func(metric core.Metric, _ int) bool {
		return c.Match(metric)
	})
}

// Highlight escapes content and wraps every case-insensitive occurrence of
// filter in <mark>. The filter is matched literally against the raw content.
func Highlight(content, filter string) template.HTML {
	if filter == "" {
		return template.HTML(html.EscapeString(content))
	}

	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(filter))

	var out strings.Builder
	last := 0
	for _, match := range pattern.FindAllStringIndex(content, -1) {
		out.WriteString(html.EscapeString(content[last:match[0]]))
		out.WriteString("<mark>")
		out.WriteString(html.EscapeString(content[match[0]:match[1]]))
		out.WriteString("</mark>")
		last = match[1]
	}
	out.WriteString(html.EscapeString(content[last:]))

	return template.HTML(out.String())
}

// Categories returns the distinct categories of metrics in first seen order.
func Categories(metrics []core.Metric) []string {
	categories := set.NewLinkedHashSetString()
	for _, metric := range metrics {
		if metric.Category != "" {
			categories.Add(metric.Category)
		}
	}

	out := make([]string, 0)
	for category := range categories.Iter() {
		out = append(out, category)
	}
	return out
}

// Tags returns the distinct tags of metrics in first seen order.
func Tags(metrics []core.Metric) []string {
	return lo.Uniq(lo.FlatMap(metrics, func(metric core.Metric, _ int) []string {
		return metric.Tags
	}))
}
