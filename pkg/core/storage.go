package core

import (
	"context"
	"strings"
	"time"
)

// Cache stores raw API responses.
type Cache interface {
	// Get returns the cached value and whether it was present
	Get(key string) ([]byte, bool, error)

	// Set stores value under key; a zero ttl keeps it forever
	Set(key string, value []byte, ttl time.Duration) error
}

// Catalogue persists a snapshot of the metric catalogue.
type Catalogue interface {
	// SaveMetrics inserts or replaces metrics
	SaveMetrics(ctx context.Context, metrics []Metric) error

	// Metrics retrieves metrics passing every filter
	Metrics(ctx context.Context, filters ...MetricFilter) ([]Metric, error)
}

// MetricFilter selects metrics of a catalogue.
type MetricFilter func(metric Metric) bool

func WithCategory(category string) MetricFilter {
	return func(metric Metric) bool {
		return strings.EqualFold(metric.Category, category)
	}
}

func WithoutDeprecated() MetricFilter {
	return func(metric Metric) bool {
		return !metric.Deprecated
	}
}

func WithTag(tag string) MetricFilter {
	return func(metric Metric) bool {
		return metric.HasTag(tag)
	}
}
