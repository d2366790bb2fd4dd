package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{
			name:  "equality pairs",
			query: "?areaType=nation&areaName=England",
			expected: Params{
				{Key: "areaType", Sign: "=", Value: "nation"},
				{Key: "areaName", Sign: "=", Value: "England"},
			},
		},
		{
			name:  "two character signs",
			query: "date>=2020-03-01&areaCode!=E92000001",
			expected: Params{
				{Key: "date", Sign: ">=", Value: "2020-03-01"},
				{Key: "areaCode", Sign: "!=", Value: "E92000001"},
			},
		},
		{
			name:     "encoded values",
			query:    "areaName=United%20Kingdom",
			expected: Params{{Key: "areaName", Sign: "=", Value: "United Kingdom"}},
		},
		{
			name:     "skips pairs without key or sign",
			query:    "=nation&flag&&areaType<ltla",
			expected: Params{{Key: "areaType", Sign: "<", Value: "ltla"}},
		},
		{
			name:     "empty",
			query:    "",
			expected: Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseParams(tt.query))
		})
	}
}

func TestParams_Filters(t *testing.T) {
	params := Params{
		{Key: "areaType", Sign: "=", Value: "nation"},
		{Key: "areaName", Sign: "=", Value: "england"},
	}
	require.Equal(t, "areaType=nation;areaName=england", params.Filters())
	require.Equal(t, "areaType=nation&areaName=england", params.Query())
}

func TestParams_With(t *testing.T) {
	params := Params{
		{Key: "areaType", Sign: "=", Value: "overview"},
		{Key: "areaName", Sign: "=", Value: "United Kingdom"},
	}

	out := params.With(Param{Key: "areaType", Sign: "=", Value: "nation"})

	value, ok := out.Get("areaType")
	require.True(t, ok)
	require.Equal(t, "nation", value)
	require.Len(t, out, 2)

	value, _ = params.Get("areaType")
	require.Equal(t, "overview", value)
}

func TestParam_Validate(t *testing.T) {
	require.NoError(t, Param{Key: "areaType", Sign: "=", Value: "nation"}.Validate())
	require.ErrorIs(t, Param{Sign: "=", Value: "x"}.Validate(), ErrInvalidParam)
	require.ErrorIs(t, Param{Key: "k", Sign: "~", Value: "x"}.Validate(), ErrInvalidParam)
}
