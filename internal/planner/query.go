package planner

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Query is the declarative descriptor the compiler turns into SQL. All
// members are optional; zero values mean "not requested". A Limit of -1
// means no limit.
type Query struct {
	Filter    map[string]interface{} `mapstructure:"filter"`
	Sort      []string               `mapstructure:"sort"`
	Limit     *int                   `mapstructure:"limit"`
	Offset    *int                   `mapstructure:"offset"`
	Page      *int                   `mapstructure:"page"`
	Search    string                 `mapstructure:"search"`
	Group     []string               `mapstructure:"group"`
	Aggregate map[string][]string    `mapstructure:"aggregate"`
}

// ParseQuery decodes a JSON-shaped map into a Query and validates its
// pagination members.
func ParseQuery(raw map[string]interface{}) (Query, error) {
	var q Query
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &q,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Query{}, fmt.Errorf("failed to build query decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Query{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if err := validateQuery(q); err != nil {
		return Query{}, err
	}
	return q, nil
}

func validateQuery(q Query) error {
	if q.Limit != nil && *q.Limit < -1 {
		return fmt.Errorf("%w: limit must be -1 or non-negative", ErrInvalidQuery)
	}
	if q.Offset != nil && *q.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative", ErrInvalidQuery)
	}
	if q.Page != nil && *q.Page < 1 {
		return fmt.Errorf("%w: page is 1-based", ErrInvalidQuery)
	}
	return nil
}
