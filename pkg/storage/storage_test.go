package storage

import (
	"context"
	"testing"
	"time"

	"github.com/raykavin/coviddash/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestBuntCache(t *testing.T) {
	cache, err := CacheFromMemory()
	require.NoError(t, err)
	defer cache.Close()

	_, ok, err := cache.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set("/v1/data?filters=areaType=overview", []byte(`{"data":[]}`), 0))
	value, ok, err := cache.Get("/v1/data?filters=areaType=overview")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"data":[]}`, string(value))

	count, err := cache.Len()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, cache.Delete("/v1/data?filters=areaType=overview"))
	require.NoError(t, cache.Delete("missing"))
	_, ok, err = cache.Get("/v1/data?filters=areaType=overview")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBuntCache_Expiry(t *testing.T) {
	cache, err := CacheFromMemory()
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Set("key", []byte("value"), 50*time.Millisecond))
	_, ok, err := cache.Get("key")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok, err := cache.Get("key")
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSQLCatalogue(t *testing.T) {
	catalogue, err := CatalogueFromSQLite(":memory:", Config{MaxIdleConns: 1, MaxOpenConns: 1})
	require.NoError(t, err)
	defer catalogue.Close()

	ctx := context.Background()
	require.NoError(t, catalogue.SaveMetrics(ctx, nil))
	require.NoError(t, catalogue.SaveMetrics(ctx, []core.Metric{
		{Metric: "newCasesByPublishDate", Name: "New cases", Category: "Cases", Tags: []string{"cases"}},
		{Metric: "maleCases", Name: "Male cases", Category: "Cases", Deprecated: true, Tags: []string{}},
		{Metric: "newDeaths28DaysByPublishDate", Name: "New deaths", Category: "Deaths", Tags: []string{"deaths"}},
	}))

	// saving again replaces the stored row
	require.NoError(t, catalogue.SaveMetrics(ctx, []core.Metric{
		{Metric: "newCasesByPublishDate", Name: "New cases by publish date", Category: "Cases", Tags: []string{"cases", "publish"}},
	}))

	count, err := catalogue.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	metrics, err := catalogue.Metrics(ctx, core.WithCategory("Cases"), core.WithoutDeprecated())
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	require.Equal(t, "New cases by publish date", metrics[0].Name)
	require.Equal(t, []string{"cases", "publish"}, metrics[0].Tags)

	metrics, err = catalogue.Metrics(ctx, core.WithTag("DEATHS"))
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	require.Equal(t, "newDeaths28DaysByPublishDate", metrics[0].Metric)
}
