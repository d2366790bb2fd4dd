package metricdoc

import (
	"bytes"
	"encoding/json"
	"html/template"
	"testing"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogue = []core.Metric{
	{Metric: "newCasesByPublishDate", Name: "New cases by publish date", Category: "Cases", Tags: []string{"cases", "publish"}},
	{Metric: "newCasesBySpecimenDate", Name: "New cases by specimen date", Category: "Cases", Tags: []string{"cases"}},
	{Metric: "newDeaths28DaysByPublishDate", Name: "New deaths within 28 days", Category: "Deaths", Tags: []string{"deaths", "publish"}},
	{Metric: "maleCases", Name: "Male cases", Category: "Cases", Deprecated: true, Tags: []string{"demographics"}},
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{"everything but deprecated", Criteria{}, []string{"newCasesByPublishDate", "newCasesBySpecimenDate", "newDeaths28DaysByPublishDate"}},
		{"search is case insensitive", Criteria{Search: "PUBLISH"}, []string{"newCasesByPublishDate", "newDeaths28DaysByPublishDate"}},
		{"search by display name", Criteria{Search: "within 28"}, []string{"newDeaths28DaysByPublishDate"}},
		{"category", Criteria{Category: "deaths"}, []string{"newDeaths28DaysByPublishDate"}},
		{"tags must all match", Criteria{Tags: []string{"cases", "publish"}}, []string{"newCasesByPublishDate"}},
		{"deprecated included", Criteria{Search: "male", IncludeDeprecated: true}, []string{"maleCases"}},
		{"no match", Criteria{Search: "vaccine"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, 0)
			for _, m := range Filter(catalogue, tt.criteria) {
				names = append(names, m.Metric)
			}
			require.Equal(t, tt.expected, names)
		})
	}
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, template.HTML("New <mark>cases</mark> by publish date"), Highlight("New cases by publish date", "cases"))
	assert.Equal(t, template.HTML("<mark>New</mark> cases, <mark>new</mark> deaths"), Highlight("New cases, new deaths", "new"))
	assert.Equal(t, template.HTML("rate (per 100k)"), Highlight("rate (per 100k)", ""))
	assert.Equal(t, template.HTML("rate <mark>(per</mark> 100k)"), Highlight("rate (per 100k)", "(per"))
	assert.Equal(t, template.HTML("&lt;b&gt;<mark>x</mark>"), Highlight("<b>x", "x"))
}

func TestHighlight_Entities(t *testing.T) {
	require.Equal(t, template.HTML("R&amp;D"), Highlight("R&D", "amp"))
	require.Equal(t, template.HTML("cases &lt;5"), Highlight("cases <5", "lt"))
	require.Equal(t, template.HTML("R<mark>&amp;</mark>D"), Highlight("R&D", "&"))
	require.Equal(t, template.HTML("<mark>&lt;b&gt;</mark> and <mark>&lt;B&gt;</mark>"), Highlight("<b> and <B>", "<b>"))
	require.Equal(t, template.HTML("it&#39;s <mark>39</mark>"), Highlight("it's 39", "39"))
}

func TestSearch(t *testing.T) {
	results := Search(catalogue, Criteria{Search: "specimen"}, "/api/metrics?format=json")

	require.Equal(t, 1, results.Count)
	require.Empty(t, results.Empty)
	item := results.Items[0]
	assert.Equal(t, "/metrics/doc/newCasesBySpecimenDate", item.DocPath)
	assert.Equal(t, template.HTML("New cases by <mark>specimen</mark> date"), item.NameHTML)
	assert.Equal(t, template.HTML("newCasesBy<mark>Specimen</mark>Date"), item.APIName)
}

func TestSearch_NoMatch(t *testing.T) {
	results := Search(catalogue, Criteria{Search: "vaccine"}, "")
	require.Zero(t, results.Count)
	require.Equal(t, "No metrics to match vaccine and / or the defined criteria.", results.Empty)

	results = Search(catalogue, Criteria{Search: "vaccine", Category: "Cases"}, "")
	require.Equal(t, "No metrics to match vaccine.", results.Empty)
}

func TestCategoriesAndTags(t *testing.T) {
	require.Equal(t, []string{"Cases", "Deaths"}, Categories(catalogue))
	require.Equal(t, []string{"cases", "publish", "deaths", "demographics"}, Tags(catalogue))
}

func TestResults_Export(t *testing.T) {
	results := Search(catalogue, Criteria{Category: "Deaths"}, "")

	buffer := bytes.NewBuffer(nil)
	require.NoError(t, results.WriteJSON(buffer))

	var exported []core.Metric
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &exported))
	require.Equal(t, results.Metrics(), exported)

	table := bytes.NewBuffer(nil)
	results.WriteTable(table)
	assert.Contains(t, table.String(), "newDeaths28DaysByPublishDate")
	assert.Contains(t, table.String(), "COUNT")
}
