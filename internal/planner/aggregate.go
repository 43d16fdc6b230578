package planner

import (
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"dataquery/internal/sqlutil"
)

// aggregateFunctions maps aggregate operation names to their SQL function
// and DISTINCT handling.
var aggregateFunctions = map[string]struct {
	fn       string
	distinct bool
}{
	"count":         {fn: "COUNT"},
	"countDistinct": {fn: "COUNT", distinct: true},
	"sum":           {fn: "SUM"},
	"sumDistinct":   {fn: "SUM", distinct: true},
	"avg":           {fn: "AVG"},
	"avgDistinct":   {fn: "AVG", distinct: true},
	"min":           {fn: "MIN"},
	"max":           {fn: "MAX"},
}

// applyAggregate adds aggregate select columns. Result aliases follow the
// "<op>-><field>" pattern, with countAll for COUNT(*). Operations are
// emitted in sorted order so compilation stays deterministic.
func applyAggregate(b sq.SelectBuilder, aggregate map[string][]string, collection string) (sq.SelectBuilder, error) {
	ops := make([]string, 0, len(aggregate))
	for op := range aggregate {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	for _, op := range ops {
		agg, ok := aggregateFunctions[op]
		if !ok {
			return b, fmt.Errorf("%w: unknown aggregate operation %s", ErrInvalidQuery, op)
		}
		for _, field := range aggregate[op] {
			if field == "*" {
				if op != "count" {
					return b, fmt.Errorf("%w: aggregate %s cannot target *", ErrInvalidQuery, op)
				}
				b = b.Column("COUNT(*) AS " + sqlutil.QuoteIdentifier("countAll"))
				continue
			}
			column := sqlutil.QualifyColumn(collection, field)
			if agg.distinct {
				column = "DISTINCT " + column
			}
			alias := sqlutil.QuoteIdentifier(op + "->" + field)
			b = b.Column(fmt.Sprintf("%s(%s) AS %s", agg.fn, column, alias))
		}
	}
	return b, nil
}
