package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Layouts the API uses for timestamps. Values without a zone are UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var timeType = reflect.TypeOf(time.Time{})

// decode unmarshals a JSON body into target through mapstructure so that
// fractional numbers, numeric strings and naive timestamps are accepted.
func decode(data []byte, target any) error {
	if target == nil {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTimeHook,
			roundToIntHook,
		),
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}

	return parseTime(data.(string))
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}

// roundToIntHook rounds floats and numeric strings half away from zero when
// the target is an integer.
func roundToIntHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}

	switch from.Kind() {
	case reflect.Float64, reflect.Float32:
		return int(math.Round(reflect.ValueOf(data).Float())), nil
	case reflect.String:
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return data, nil
		}
		return int(math.Round(f)), nil
	default:
		return data, nil
	}
}
