package planner

import (
	"fmt"

	"github.com/spf13/cast"

	"dataquery/internal/sqltime"
	"dataquery/internal/sqltype"
)

// coerceOperand converts a raw operand to the declared type of
// collection.field before it reaches an operator. Unknown fields and
// untyped operands pass through unchanged; arrays coerce element-wise with
// nil elements dropped.
func (s *compileState) coerceOperand(collection, field string, value interface{}) (interface{}, error) {
	fieldType, ok := s.schema.FieldType(collection, field)
	if !ok || value == nil {
		return value, nil
	}

	if list, ok := value.([]interface{}); ok {
		coerced := make([]interface{}, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			c, err := coerceScalar(fieldType, item)
			if err != nil {
				return nil, err
			}
			coerced = append(coerced, c)
		}
		return coerced, nil
	}

	return coerceScalar(fieldType, value)
}

func coerceScalar(fieldType sqltype.FieldType, value interface{}) (interface{}, error) {
	switch {
	case fieldType.IsDateTime():
		parsed, err := sqltime.Parse(fieldType, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return parsed, nil
	case fieldType.IsInteger():
		n, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot compare %v as %s", ErrInvalidQuery, value, fieldType)
		}
		return n, nil
	case fieldType.IsNumeric():
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot compare %v as %s", ErrInvalidQuery, value, fieldType)
		}
		return f, nil
	default:
		return value, nil
	}
}
