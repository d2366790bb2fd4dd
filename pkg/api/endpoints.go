package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raykavin/coviddash/pkg/core"
	"gopkg.in/yaml.v3"
)

// Export formats accepted by the data endpoint
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Metrics lists the metric catalogue matching query
func (c *Client) Metrics(ctx context.Context, query core.MetricQuery) ([]core.Metric, error) {
	values := url.Values{}
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Category != "" {
		values.Set("category", query.Category)
	}
	if len(query.Tags) > 0 {
		values.Set("tags", strings.Join(query.Tags, ","))
	}
	values.Set("deprecated", strconv.FormatBool(query.IncludeDeprecated))

	content, err := c.get(ctx, c.baseURL+"/generic/metrics?"+values.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}

	metrics := make([]core.Metric, 0)
	if err := json.Unmarshal(content, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}

	return metrics, nil
}

// PageLayout loads the card layout of a page. Locations without an http(s)
// scheme are read from disk.
func (c *Client) PageLayout(ctx context.Context, location string) (core.PageLayout, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return LoadLayoutFile(location)
	}

	content, err := c.get(ctx, location)
	if err != nil {
		return core.PageLayout{}, fmt.Errorf("failed to fetch page layout: %w", err)
	}

	var layout core.PageLayout
	if err := json.Unmarshal(content, &layout); err != nil {
		return core.PageLayout{}, fmt.Errorf("failed to decode page layout: %w", err)
	}

	return layout, nil
}

// LoadLayoutFile reads a page layout from a YAML or JSON file
func LoadLayoutFile(path string) (core.PageLayout, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return core.PageLayout{}, fmt.Errorf("failed to read page layout: %w", err)
	}

	var layout core.PageLayout
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(content, &layout)
	default:
		// YAML is a superset of JSON
		err = yaml.Unmarshal(content, &layout)
	}
	if err != nil {
		return core.PageLayout{}, fmt.Errorf("failed to decode page layout %s: %w", path, err)
	}

	return layout, nil
}

type seriesResponse struct {
	Length int           `json:"length"`
	Data   []core.Record `json:"data"`
}

// Series fetches the records of metrics for the area selected by params
func (c *Client) Series(ctx context.Context, params core.Params, metrics ...string) ([]core.Record, error) {
	target, err := c.dataURL(params, metrics, url.Values{})
	if err != nil {
		return nil, err
	}
	return c.records(ctx, target)
}

// Headline fetches the latest record holding a value for metric
func (c *Client) Headline(ctx context.Context, params core.Params, metric string) (core.Record, error) {
	target, err := c.dataURL(params, []string{metric}, url.Values{"latestBy": {metric}})
	if err != nil {
		return core.Record{}, err
	}

	records, err := c.records(ctx, target)
	if err != nil {
		return core.Record{}, err
	}
	if len(records) == 0 {
		return core.Record{}, fmt.Errorf("headline %s: %w", metric, core.ErrNoData)
	}

	return records[0], nil
}

// DownloadURL builds the export link of metrics for format json or csv
func (c *Client) DownloadURL(params core.Params, format string, metrics ...string) (string, error) {
	if format != FormatJSON && format != FormatCSV {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return c.dataURL(params, metrics, url.Values{"format": {format}})
}

func (c *Client) records(ctx context.Context, target string) ([]core.Record, error) {
	content, err := c.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series: %w", err)
	}

	var response seriesResponse
	if err := json.Unmarshal(content, &response); err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}
	if response.Data == nil {
		response.Data = []core.Record{}
	}

	return response.Data, nil
}

func (c *Client) dataURL(params core.Params, metrics []string, extra url.Values) (string, error) {
	if len(metrics) == 0 {
		return "", fmt.Errorf("%w: no metrics requested", core.ErrInvalidParam)
	}
	for _, param := range params {
		if err := param.Validate(); err != nil {
			return "", err
		}
	}

	structure := map[string]string{
		"date":     "date",
		"areaName": "areaName",
		"areaCode": "areaCode",
		"areaType": "areaType",
	}
	for _, metric := range metrics {
		structure[metric] = metric
	}

	encoded, err := json.Marshal(structure)
	if err != nil {
		return "", fmt.Errorf("failed to encode structure: %w", err)
	}

	extra.Set("filters", params.Filters())
	extra.Set("structure", string(encoded))

	return c.baseURL + "/v1/data?" + extra.Encode(), nil
}
