package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// DateLayout is the date format used by the data API.
const DateLayout = "2006-01-02"

// Record is one row of the data endpoint. Metric values are nil when the API
// reports null.
type Record struct {
	Date     time.Time
	AreaName string
	AreaCode string
	AreaType string
	Values   map[string]*float64
}

var recordKeys = map[string]struct{}{
	"date": {}, "areaName": {}, "areaCode": {}, "areaType": {},
}

// UnmarshalJSON decodes a flat API row.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var date string
	if v, ok := raw["date"]; ok {
		if err := json.Unmarshal(v, &date); err != nil {
			return fmt.Errorf("record date: %w", err)
		}
	}

	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("record date %q: %w", date, err)
	}

	out := Record{Date: parsed, Values: make(map[string]*float64)}
	for key, target := range map[string]*string{
		"areaName": &out.AreaName,
		"areaCode": &out.AreaCode,
		"areaType": &out.AreaType,
	} {
		if v, ok := raw[key]; ok {
			_ = json.Unmarshal(v, target)
		}
	}

	for key, value := range raw {
		if _, ok := recordKeys[key]; ok {
			continue
		}
		var number *float64
		if err := json.Unmarshal(value, &number); err != nil {
			return fmt.Errorf("record %s value: %w", key, err)
		}
		out.Values[key] = number
	}

	*r = out
	return nil
}

// MarshalJSON writes the record back in the flat API shape.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+4)
	for k, v := range r.Values {
		out[k] = v
	}
	out["date"] = r.Date.Format(DateLayout)
	out["areaName"] = r.AreaName
	out["areaCode"] = r.AreaCode
	out["areaType"] = r.AreaType
	return json.Marshal(out)
}

// ColumnOf extracts metric from records in date order. Rows where the metric
// is null or absent are skipped.
func ColumnOf(records []Record, metric string) Column {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})

	column := Column{Metric: metric}
	for _, record := range sorted {
		value, ok := record.Values[metric]
		if !ok || value == nil {
			continue
		}
		column.Dates = append(column.Dates, record.Date)
		column.Values = append(column.Values, *value)
	}
	return column
}
