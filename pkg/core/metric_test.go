package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetric_UnmarshalJSON(t *testing.T) {
	t.Run("tags field", func(t *testing.T) {
		var m Metric
		err := json.Unmarshal([]byte(`{"metric":"newCasesByPublishDate","metric_name":"New cases by publish date","category":"Cases","deprecated":false,"tags":["cases","publish"]}`), &m)
		require.NoError(t, err)
		require.Equal(t, "newCasesByPublishDate", m.Metric)
		require.Equal(t, "New cases by publish date", m.Name)
		require.Equal(t, []string{"cases", "publish"}, m.Tags)
		require.False(t, m.Deprecated)
	})

	t.Run("legacy tag field and dated deprecation", func(t *testing.T) {
		var m Metric
		err := json.Unmarshal([]byte(`{"metric":"maleCases","category":"Cases","deprecated":"2021-06-01","tag":["demographics"]}`), &m)
		require.NoError(t, err)
		require.Equal(t, []string{"demographics"}, m.Tags)
		require.True(t, m.Deprecated)
	})

	t.Run("null deprecation and missing tags", func(t *testing.T) {
		var m Metric
		err := json.Unmarshal([]byte(`{"metric":"newDeaths28DaysByPublishDate","deprecated":null}`), &m)
		require.NoError(t, err)
		require.False(t, m.Deprecated)
		require.NotNil(t, m.Tags)
		require.Empty(t, m.Tags)
	})

	t.Run("invalid deprecation", func(t *testing.T) {
		var m Metric
		err := json.Unmarshal([]byte(`{"metric":"x","deprecated":12}`), &m)
		require.Error(t, err)
	})
}

func TestMetric_DocPath(t *testing.T) {
	require.Equal(t, "/metrics/doc/newCasesByPublishDate", Metric{Metric: "newCasesByPublishDate"}.DocPath())
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var records []Record
	err := json.Unmarshal([]byte(`[
		{"date":"2020-10-02","areaName":"United Kingdom","areaType":"overview","newCases":6968,"newDeaths":null},
		{"date":"2020-10-01","areaName":"United Kingdom","areaType":"overview","newCases":6914,"newDeaths":59}
	]`), &records)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "United Kingdom", records[0].AreaName)
	require.Nil(t, records[0].Values["newDeaths"])
	require.InDelta(t, 6968, *records[0].Values["newCases"], 1e-9)

	column := ColumnOf(records, "newDeaths")
	require.Len(t, column.Values, 1)
	require.Equal(t, time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC), column.Dates[0])

	cases := ColumnOf(records, "newCases")
	require.Equal(t, Series[float64]{6914, 6968}, cases.Values)
	require.Equal(t, []string{"2020-10-01", "2020-10-02"}, cases.DateStrings(DateLayout))

	date, latest, ok := cases.Latest()
	require.True(t, ok)
	require.Equal(t, 6968.0, latest)
	require.Equal(t, "2020-10-02", date.Format(DateLayout))
}

func TestRecord_UnmarshalJSON_BadDate(t *testing.T) {
	var r Record
	require.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &r))
}
