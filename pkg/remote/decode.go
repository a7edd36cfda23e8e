package remote

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// timeLayouts are tried in order when a row carries a timestamp as text
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

var timeType = reflect.TypeOf(time.Time{})

// toTimeHook converts RFC3339 / date strings and epoch seconds into time.Time
func toTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return epoch(secs), nil
		}
		return nil, fmt.Errorf("unrecognized timestamp %q", v)
	case float64:
		return epoch(v), nil
	case int:
		return epoch(float64(v)), nil
	case int64:
		return epoch(float64(v)), nil
	}
	return data, nil
}

func epoch(secs float64) time.Time {
	whole := int64(secs)
	return time.Unix(whole, int64((secs-float64(whole))*float64(time.Second))).UTC()
}

// decodeRow maps one result row onto out using the records' json names.
// Rows carry every value as text, so decoding is weakly typed.
func decodeRow(row map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			toTimeHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(row)
}

// decodeRows decodes every row into a T. The first malformed row aborts.
func decodeRows[T any](op string, rows []map[string]any) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var item T
		if err := decodeRow(row, &item); err != nil {
			return nil, &QueryError{Op: op, Err: fmt.Errorf("row %d: %w", i, err)}
		}
		out = append(out, item)
	}
	return out, nil
}
