package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Metric describes a statistic published by the dashboard API.
type Metric struct {
	Metric     string   `json:"metric" gorm:"primaryKey"`
	Name       string   `json:"metric_name"`
	Category   string   `json:"category" gorm:"index"`
	Deprecated bool     `json:"deprecated"`
	Tags       []string `json:"tags" gorm:"serializer:json"`
}

// metricPayload is the wire shape of a metric. Older responses carry the
// tag list under "tag" and the deprecation as a date string or null.
type metricPayload struct {
	Metric     string          `json:"metric"`
	Name       string          `json:"metric_name"`
	Category   string          `json:"category"`
	Deprecated json.RawMessage `json:"deprecated"`
	Tag        []string        `json:"tag"`
	Tags       []string        `json:"tags"`
}

// UnmarshalJSON normalises the tag and deprecation fields.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var payload metricPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	deprecated, err := parseDeprecated(payload.Deprecated)
	if err != nil {
		return fmt.Errorf("metric %q: %w", payload.Metric, err)
	}

	tags := payload.Tags
	if len(tags) == 0 {
		tags = payload.Tag
	}
	if tags == nil {
		tags = []string{}
	}

	*m = Metric{
		Metric:     payload.Metric,
		Name:       payload.Name,
		Category:   payload.Category,
		Deprecated: deprecated,
		Tags:       tags,
	}
	return nil
}

func parseDeprecated(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}

	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag, nil
	}

	var date string
	if err := json.Unmarshal(raw, &date); err != nil {
		return false, fmt.Errorf("invalid deprecated field %s", raw)
	}
	return strings.TrimSpace(date) != "", nil
}

// DocPath is the documentation route of the metric.
func (m Metric) DocPath() string {
	return "/metrics/doc/" + url.PathEscape(m.Metric)
}

// HasTag reports whether the metric carries tag.
func (m Metric) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
