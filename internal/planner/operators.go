package planner

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/spf13/cast"
)

// operatorFunc emits the predicate for one comparison operator against a
// fully qualified column expression.
type operatorFunc func(column string, value interface{}) (sq.Sqlizer, error)

// filterOperators is the operator registry: symbolic name to predicate
// emitter. Negative operators pair with their positive forms so negation
// inversion can rewrite between them.
var filterOperators = map[string]operatorFunc{
	"_eq":  func(column string, value interface{}) (sq.Sqlizer, error) { return sq.Eq{column: value}, nil },
	"_neq": func(column string, value interface{}) (sq.Sqlizer, error) { return sq.NotEq{column: value}, nil },
	"_lt":  func(column string, value interface{}) (sq.Sqlizer, error) { return sq.Lt{column: value}, nil },
	"_lte": func(column string, value interface{}) (sq.Sqlizer, error) { return sq.LtOrEq{column: value}, nil },
	"_gt":  func(column string, value interface{}) (sq.Sqlizer, error) { return sq.Gt{column: value}, nil },
	"_gte": func(column string, value interface{}) (sq.Sqlizer, error) { return sq.GtOrEq{column: value}, nil },

	// Complementary comparison forms keep negation inversion total: the
	// negation of < is >= and so on.
	"_nlt":  func(column string, value interface{}) (sq.Sqlizer, error) { return sq.GtOrEq{column: value}, nil },
	"_nlte": func(column string, value interface{}) (sq.Sqlizer, error) { return sq.Gt{column: value}, nil },
	"_ngt":  func(column string, value interface{}) (sq.Sqlizer, error) { return sq.LtOrEq{column: value}, nil },
	"_ngte": func(column string, value interface{}) (sq.Sqlizer, error) { return sq.Lt{column: value}, nil },

	"_in": func(column string, value interface{}) (sq.Sqlizer, error) {
		list, err := operandList("_in", value)
		if err != nil {
			return nil, err
		}
		return sq.Eq{column: list}, nil
	},
	"_nin": func(column string, value interface{}) (sq.Sqlizer, error) {
		list, err := operandList("_nin", value)
		if err != nil {
			return nil, err
		}
		return sq.NotEq{column: list}, nil
	},

	"_null": func(column string, value interface{}) (sq.Sqlizer, error) {
		if operandTruthy(value) {
			return sq.Eq{column: nil}, nil
		}
		return sq.NotEq{column: nil}, nil
	},
	"_nnull": func(column string, value interface{}) (sq.Sqlizer, error) {
		if operandTruthy(value) {
			return sq.NotEq{column: nil}, nil
		}
		return sq.Eq{column: nil}, nil
	},

	"_contains": func(column string, value interface{}) (sq.Sqlizer, error) {
		pattern, err := likePattern("_contains", value, true, true)
		if err != nil {
			return nil, err
		}
		return sq.Like{column: pattern}, nil
	},
	"_ncontains": func(column string, value interface{}) (sq.Sqlizer, error) {
		pattern, err := likePattern("_ncontains", value, true, true)
		if err != nil {
			return nil, err
		}
		return sq.NotLike{column: pattern}, nil
	},
	"_starts_with": func(column string, value interface{}) (sq.Sqlizer, error) {
		pattern, err := likePattern("_starts_with", value, false, true)
		if err != nil {
			return nil, err
		}
		return sq.Like{column: pattern}, nil
	},
	"_nstarts_with": func(column string, value interface{}) (sq.Sqlizer, error) {
		pattern, err := likePattern("_nstarts_with", value, false, true)
		if err != nil {
			return nil, err
		}
		return sq.NotLike{column: pattern}, nil
	},
	"_ends_with": func(column string, value interface{}) (sq.Sqlizer, error) {
		pattern, err := likePattern("_ends_with", value, true, false)
		if err != nil {
			return nil, err
		}
		return sq.Like{column: pattern}, nil
	},
	"_nends_with": func(column string, value interface{}) (sq.Sqlizer, error) {
		pattern, err := likePattern("_nends_with", value, true, false)
		if err != nil {
			return nil, err
		}
		return sq.NotLike{column: pattern}, nil
	},

	"_between": func(column string, value interface{}) (sq.Sqlizer, error) {
		low, high, err := operandPair("_between", value)
		if err != nil {
			return nil, err
		}
		return sq.Expr(column+" BETWEEN ? AND ?", low, high), nil
	},
	"_nbetween": func(column string, value interface{}) (sq.Sqlizer, error) {
		low, high, err := operandPair("_nbetween", value)
		if err != nil {
			return nil, err
		}
		return sq.Expr(column+" NOT BETWEEN ? AND ?", low, high), nil
	},

	"_empty": func(column string, value interface{}) (sq.Sqlizer, error) {
		if operandTruthy(value) {
			return sq.Or{sq.Eq{column: nil}, sq.Eq{column: ""}}, nil
		}
		return sq.And{sq.NotEq{column: nil}, sq.NotEq{column: ""}}, nil
	},
	"_nempty": func(column string, value interface{}) (sq.Sqlizer, error) {
		if operandTruthy(value) {
			return sq.And{sq.NotEq{column: nil}, sq.NotEq{column: ""}}, nil
		}
		return sq.Or{sq.Eq{column: nil}, sq.Eq{column: ""}}, nil
	},
}

// operatorCondition dispatches an operator through the registry.
func operatorCondition(column, operator string, value interface{}) (sq.Sqlizer, error) {
	fn, ok := filterOperators[operator]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, operator)
	}
	return fn(column, value)
}

// isNegativeOperator reports whether an operator is the negated form of a
// registered operator. The prefix check alone would misread _null, whose
// positive form is itself; pairing against the registry keeps _null/_nnull
// inverting as a pair.
func isNegativeOperator(operator string) bool {
	if !strings.HasPrefix(operator, "_n") || len(operator) < 3 {
		return false
	}
	_, ok := filterOperators["_"+operator[2:]]
	return ok
}

// invertOperator flips an operator between its positive and negative forms:
// _eq <-> _neq, _null <-> _nnull, _contains <-> _ncontains.
func invertOperator(operator string) string {
	if isNegativeOperator(operator) {
		return "_" + operator[2:]
	}
	if strings.HasPrefix(operator, "_") {
		return "_n" + operator[1:]
	}
	return operator
}

func operandList(operator string, value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		list := make([]interface{}, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			list = append(list, item)
		}
		return list, nil
	case []string:
		list := make([]interface{}, len(v))
		for i, item := range v {
			list[i] = item
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: %s requires an array operand", ErrInvalidQuery, operator)
	}
}

func operandPair(operator string, value interface{}) (interface{}, interface{}, error) {
	list, err := operandList(operator, value)
	if err != nil {
		return nil, nil, err
	}
	if len(list) != 2 {
		return nil, nil, fmt.Errorf("%w: %s requires exactly two operands", ErrInvalidQuery, operator)
	}
	return list[0], list[1], nil
}

func operandTruthy(value interface{}) bool {
	if value == nil {
		return true
	}
	return cast.ToBool(value)
}

func likePattern(operator string, value interface{}, leading, trailing bool) (string, error) {
	raw, err := cast.ToStringE(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s requires a string operand", ErrInvalidQuery, operator)
	}
	pattern := raw
	if leading {
		pattern = "%" + pattern
	}
	if trailing {
		pattern += "%"
	}
	return pattern, nil
}
