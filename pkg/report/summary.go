// Package report prints metric series in the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/coviddash/pkg/core"
	"gonum.org/v1/gonum/floats"
)

// Summary describes a metric column.
type Summary struct {
	Metric string
	Count  int
	From   time.Time
	To     time.Time
	Min    float64
	Max    float64
	Mean   float64
	Total  float64
	Latest float64

	// Recent is the 95% interval of the mean of the last RecentDays values
	Recent Interval
}

// RecentDays is the window of Summary.Recent.
const RecentDays = 28

// Summarise computes the summary of column. An empty column gives a summary
// with only the metric set.
func Summarise(column core.Column) Summary {
	summary := Summary{Metric: column.Metric, Count: column.Values.Length()}
	if summary.Count == 0 {
		return summary
	}

	values := column.Values.Values()
	summary.From = column.Dates[0]
	summary.To, summary.Latest, _ = column.Latest()
	summary.Min = floats.Min(values)
	summary.Max = floats.Max(values)
	summary.Total = floats.Sum(values)
	summary.Mean = Mean(values)
	summary.Recent = Bootstrap(column.Values.LastValues(RecentDays), Mean, 2000, 0.95)

	return summary
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// WriteSummaries renders summaries as a table.
func WriteSummaries(w io.Writer, summaries []Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Days", "From", "To", "Min", "Max", "Mean", "Latest", "Recent mean (95%)"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	days := 0
	for _, summary := range summaries {
		days += summary.Count
		if summary.Count == 0 {
			table.Append([]string{summary.Metric, "0", "-", "-", "-", "-", "-", "-", "-"})
			continue
		}

		table.Append([]string{
			summary.Metric,
			strconv.Itoa(summary.Count),
			summary.From.Format(core.DateLayout),
			summary.To.Format(core.DateLayout),
			formatFloat(summary.Min),
			formatFloat(summary.Max),
			formatFloat(summary.Mean),
			formatFloat(summary.Latest),
			fmt.Sprintf("%s (%s ~ %s)",
				formatFloat(summary.Recent.Mean), formatFloat(summary.Recent.Lower), formatFloat(summary.Recent.Upper)),
		})
	}

	table.SetFooter([]string{"TOTAL", strconv.Itoa(days), "", "", "", "", "", "", ""})
	table.Render()
}

// WriteHistogram draws the distribution of the column values in bins.
func WriteHistogram(w io.Writer, column core.Column, bins int) error {
	if column.Values.Length() == 0 {
		return fmt.Errorf("histogram %s: %w", column.Metric, core.ErrNoData)
	}

	if _, err := fmt.Fprintf(w, "------ %s -------\n", column.Metric); err != nil {
		return err
	}

	hist := histogram.Hist(bins, column.Values.Values())
	return histogram.Fprint(w, hist, histogram.Linear(10))
}
