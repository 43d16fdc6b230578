package planner

import "errors"

// MaxFilterDepth bounds filter tree recursion to guard against hostile input.
const MaxFilterDepth = 10

var (
	// ErrInvalidQuery indicates a query descriptor that cannot be compiled:
	// a polymorphic traversal without a scope, pagination values out of
	// range, or an operand that cannot be coerced to the field's type.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownOperator indicates a filter operator with no registry entry.
	ErrUnknownOperator = errors.New("unknown filter operator")

	// ErrFilterTooDeep indicates filter nesting beyond MaxFilterDepth.
	ErrFilterTooDeep = errors.New("filter exceeds maximum nesting depth")
)
