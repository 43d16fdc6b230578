// Package sqltime parses client-supplied temporal filter values into values
// the MySQL driver can bind. Clients send dates in a handful of shapes (RFC
// 3339, date-only, time-only); the database expects a consistent one.
package sqltime

import (
	"fmt"
	"time"

	"dataquery/internal/sqltype"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
}

// Parse converts a raw filter value into a bindable temporal value for the
// given field type. time.Time values skip parsing and are only normalized
// (formatted for date and time fields, converted to UTC otherwise); strings
// are parsed against the accepted layouts.
func Parse(fieldType sqltype.FieldType, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if t, ok := value.(time.Time); ok {
		return normalize(fieldType, t), nil
	}
	raw, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot parse %T as %s", value, fieldType)
	}

	if fieldType == sqltype.TypeTime {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("15:04:05"), nil
			}
		}
		return nil, fmt.Errorf("invalid time value %q", raw)
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return normalize(fieldType, t), nil
		}
	}
	return nil, fmt.Errorf("invalid %s value %q", fieldType, raw)
}

func normalize(fieldType sqltype.FieldType, t time.Time) interface{} {
	switch fieldType {
	case sqltype.TypeDate:
		return t.Format("2006-01-02")
	case sqltype.TypeTime:
		return t.Format("15:04:05")
	default:
		return t.UTC()
	}
}
