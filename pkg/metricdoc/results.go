package metricdoc

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/coviddash/pkg/core"
	"github.com/samber/lo"
)

// Result is a single matched metric ready for display.
type Result struct {
	Metric     core.Metric   `json:"metric"`
	NameHTML   template.HTML `json:"name_html"`
	APIName    template.HTML `json:"api_name_html"`
	DocPath    string        `json:"doc_path"`
	Deprecated bool          `json:"deprecated"`
}

// Results is a filtered view of the catalogue.
type Results struct {
	Count        int      `json:"count"`
	Items        []Result `json:"items"`
	Download     string   `json:"download,omitempty"`
	DownloadName string   `json:"download_name,omitempty"`
	Empty        string   `json:"empty,omitempty"`
}

// Search filters metrics with c and prepares the highlighted results.
// download is the export link offered next to the count.
func Search(metrics []core.Metric, c Criteria, download string) Results {
	matched := Filter(metrics, c)

	results := Results{
		Count:        len(matched),
		Download:     download,
		DownloadName: "metrics.json",
		Items: lo.Map(matched, func(metric core.Metric, _ int) Result {
			return Result{
				Metric:     metric,
				NameHTML:   Highlight(metric.Name, c.Search),
				APIName:    Highlight(metric.Metric, c.Search),
				DocPath:    metric.DocPath(),
				Deprecated: metric.Deprecated,
			}
		}),
	}

	if results.Count == 0 {
		results.Empty = NoMatch(c)
	}

	return results
}

// NoMatch is the message shown when nothing matches c.
func NoMatch(c Criteria) string {
	if c.Narrowed() {
		return fmt.Sprintf("No metrics to match %s.", c.Search)
	}
	return fmt.Sprintf("No metrics to match %s and / or the defined criteria.", c.Search)
}

// Metrics returns the plain metrics of the results.
func (r Results) Metrics() []core.Metric {
	return lo.Map(r.Items, func(item Result, _ int) core.Metric {
		return item.Metric
	})
}

// WriteJSON writes the matched metrics as a JSON array, the export format.
func (r Results) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.Metrics())
}

// WriteTable renders the results as a text table.
func (r Results) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"API name", "Name", "Category", "Deprecated", "Tags"})
	table.SetAutoWrapText(false)

	for _, item := range r.Items {
		table.Append([]string{
			item.Metric.Metric,
			item.Metric.Name,
			item.Metric.Category,
			strconv.FormatBool(item.Metric.Deprecated),
			strings.Join(item.Metric.Tags, ", "),
		})
	}

	table.SetFooter([]string{"", "", "", "Count", strconv.Itoa(r.Count)})
	table.Render()
}
