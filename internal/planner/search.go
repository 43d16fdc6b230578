package planner

import (
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"dataquery/internal/sqltype"
	"dataquery/internal/sqlutil"
)

// searchCondition fans a free-text query out across every scalar field of
// the collection: string fields match case-insensitively, numeric fields
// compare for equality when the query parses as a number, and uuid fields
// when it parses as a UUID. All disjuncts form one OR group that the driver
// ANDs onto the outer WHERE. Returns nil when no field can match.
func (s *compileState) searchCondition(collection, query string) sq.Sqlizer {
	col, ok := s.schema.CollectionByName(collection)
	if !ok {
		return nil
	}

	number, numberErr := strconv.ParseFloat(query, 64)
	_, uuidErr := uuid.Parse(query)
	pattern := "%" + strings.ToLower(query) + "%"

	fieldNames := make([]string, 0, len(col.Fields))
	for name := range col.Fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	var disjuncts []sq.Sqlizer
	for _, name := range fieldNames {
		field := col.Fields[name]
		column := sqlutil.QualifyColumn(collection, name)
		switch {
		case field.Type.IsString():
			disjuncts = append(disjuncts, sq.Expr("LOWER("+column+") LIKE ?", pattern))
		case field.Type.IsNumeric() && numberErr == nil:
			disjuncts = append(disjuncts, sq.Eq{column: number})
		case field.Type == sqltype.TypeUUID && uuidErr == nil:
			disjuncts = append(disjuncts, sq.Eq{column: query})
		}
	}

	if len(disjuncts) == 0 {
		return nil
	}
	return sq.Or(disjuncts)
}
