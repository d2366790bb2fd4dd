package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/xhit/go-str2duration/v2"
)

// batchSize is the number of metrics requested at once
const batchSize = 5

// CSV header names preceding the metric columns
var csvHeaders = []string{"date", "areaType", "areaCode", "areaName"}

// Downloader writes metric series of an area to CSV files
type Downloader struct {
	source   core.DataSource
	log      logger.Logger
	progress io.Writer
}

// NewDownloader creates a new downloader reading from source. Progress is
// drawn on progress, os.Stderr when nil.
func NewDownloader(source core.DataSource, log logger.Logger, progress io.Writer) Downloader {
	if progress == nil {
		progress = os.Stderr
	}
	return Downloader{
		source:   source,
		log:      log,
		progress: progress,
	}
}

// Parameters defines the date range kept in the export; zero bounds are open
type Parameters struct {
	Start time.Time
	End   time.Time
}

// Option is a function type for configuring download parameters
type Option func(*Parameters)

// WithInterval keeps only the dates between start and end, inclusive
func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

// WithPeriod keeps the dates of the last period, eg. "30d", before now
func WithPeriod(period string, now time.Time) (Option, error) {
	d, err := str2duration.ParseDuration(period)
	if err != nil {
		return nil, fmt.Errorf("%w: period %q", core.ErrInvalidParam, period)
	}
	return WithInterval(now.Add(-d), now), nil
}

// Download fetches metrics for params and saves them to outputPath
func (d Downloader) Download(ctx context.Context, params core.Params, metrics []string, outputPath string, options ...Option) error {
	if len(metrics) == 0 {
		return fmt.Errorf("%w: no metrics to export", core.ErrInvalidParam)
	}

	parameters := &Parameters{}
	for _, option := range options {
		option(parameters)
	}

	batches := slices.Collect(slices.Chunk(metrics, batchSize))
	d.log.Infof("Downloading %d metrics in %d requests for %s", len(metrics), len(batches), params.Filters())

	progressBar := progressbar.NewOptions(len(batches),
		progressbar.OptionSetWriter(d.progress),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowCount(),
	)

	records := make([]core.Record, 0)
	for _, batch := range batches {
		batchRecords, err := d.source.Series(ctx, params, batch...)
		if err != nil {
			return fmt.Errorf("failed to download %v: %w", batch, err)
		}
		records = append(records, batchRecords...)

		if err := progressBar.Add(1); err != nil {
			d.log.Warnf("Failed to update progress bar: %s", err.Error())
		}
	}

	if err := progressBar.Close(); err != nil {
		d.log.Warnf("Failed to close progress bar: %s", err.Error())
	}

	records = InRange(records, parameters.Start, parameters.End)
	if len(records) == 0 {
		return fmt.Errorf("export %s: %w", params.Filters(), core.ErrNoData)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, records, metrics); err != nil {
		return err
	}

	d.log.WithField("path", outputPath).Info("Done!")
	return nil
}

// InRange keeps the records dated between start and end; zero bounds are open
func InRange(records []core.Record, start, end time.Time) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, record := range records {
		if !start.IsZero() && record.Date.Before(truncateDay(start)) {
			continue
		}
		if !end.IsZero() && record.Date.After(end) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type rowKey struct {
	date time.Time
	area string
}

// WriteCSV writes one row per date and area, newest first. Rows of different
// requests for the same date and area are joined.
func WriteCSV(w io.Writer, records []core.Record, metrics []string) error {
	rows := make(map[rowKey]core.Record)
	keys := make([]rowKey, 0)

	for _, record := range records {
		key := rowKey{date: record.Date, area: record.AreaType + "|" + record.AreaCode + "|" + record.AreaName}
		row, ok := rows[key]
		if !ok {
			row = core.Record{
				Date:     record.Date,
				AreaName: record.AreaName,
				AreaCode: record.AreaCode,
				AreaType: record.AreaType,
				Values:   make(map[string]*float64),
			}
			keys = append(keys, key)
		}
		for metric, value := range record.Values {
			if value != nil || row.Values[metric] == nil {
				row.Values[metric] = value
			}
		}
		rows[key] = row
	}

	slices.SortStableFunc(keys, func(a, b rowKey) int {
		return b.date.Compare(a.date)
	})

	writer := csv.NewWriter(w)
	if err := writer.Write(append(slices.Clone(csvHeaders), metrics...)); err != nil {
		return err
	}

	for _, key := range keys {
		row := rows[key]
		line := []string{row.Date.Format(core.DateLayout), row.AreaType, row.AreaCode, row.AreaName}
		for _, metric := range metrics {
			line = append(line, formatValue(row.Values[metric]))
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatValue(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
