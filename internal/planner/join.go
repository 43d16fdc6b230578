package planner

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"dataquery/internal/schema"
	"dataquery/internal/sqlutil"
)

// polymorphicCast bridges polymorphic joins: primary keys may be integers
// while the discriminator/FK storage is a string.
func polymorphicCast(column string) string {
	return fmt.Sprintf("CAST(%s AS CHAR(255))", column)
}

// addJoin plans a LEFT JOIN for every relational hop of path (the final
// segment is a column, not a hop) and records the chosen aliases in the alias
// map. Hops that resolve to nothing end the walk silently so that later
// column lookups drop the predicate. Repeated requests for a path reuse the
// recorded alias, which keeps shared sort/filter paths on a single join; a2o
// scopes are part of the path key, so differing scopes never share a join.
func (s *compileState) addJoin(b sq.SelectBuilder, path []string, collection string, inSubquery bool) (sq.SelectBuilder, error) {
	return s.joinHop(b, nil, path, collection, "", inSubquery)
}

func (s *compileState) joinHop(
	b sq.SelectBuilder,
	prefix []string,
	rest []string,
	parentCollection string,
	parentAlias string,
	inSubquery bool,
) (sq.SelectBuilder, error) {
	if len(rest) <= 1 {
		return b, nil
	}

	segment := rest[0]
	field, scope := splitPathSegment(segment)
	rel, kind := schema.RelationInfo(s.schema.Relations, parentCollection, field)
	if kind == schema.RelationNone {
		return b, nil
	}

	hopPath := append(append([]string(nil), prefix...), segment)
	if entry, ok := s.aliases.get(hopPath); ok {
		return s.joinHop(b, hopPath, rest[1:], entry.collection, entry.alias, inSubquery)
	}

	parentExpr := parentCollection
	if parentAlias != "" {
		parentExpr = parentAlias
	}

	var target string
	switch kind {
	case schema.RelationManyToOne:
		target = rel.RelatedCollection
		alias := s.recordAlias(hopPath, target)
		b = b.LeftJoin(fmt.Sprintf(
			"%s AS %s ON %s = %s",
			sqlutil.QuoteIdentifier(target),
			sqlutil.QuoteIdentifier(alias),
			sqlutil.QualifyColumn(parentExpr, rel.Field),
			sqlutil.QualifyColumn(alias, s.schema.PrimaryKey(target)),
		))
		return s.joinHop(b, hopPath, rest[1:], target, alias, inSubquery)

	case schema.RelationAnyToOne:
		if scope == "" {
			return b, fmt.Errorf("%w: polymorphic field %s.%s requires a :scope", ErrInvalidQuery, parentCollection, field)
		}
		if !allowedScope(rel, scope) {
			return b, fmt.Errorf("%w: collection %s is not an allowed target of %s.%s", ErrInvalidQuery, scope, parentCollection, field)
		}
		target = scope
		alias := s.recordAlias(hopPath, target)
		b = b.LeftJoin(fmt.Sprintf(
			"%s AS %s ON %s = %s AND %s = %s",
			sqlutil.QuoteIdentifier(target),
			sqlutil.QuoteIdentifier(alias),
			sqlutil.QualifyColumn(parentExpr, rel.OneCollectionField),
			sqlutil.QuoteString(scope),
			sqlutil.QualifyColumn(parentExpr, rel.Field),
			polymorphicCast(sqlutil.QualifyColumn(alias, s.schema.PrimaryKey(target))),
		))
		return s.joinHop(b, hopPath, rest[1:], target, alias, inSubquery)

	case schema.RelationOneToAny:
		// Same root rule as o2m: the filter compiler owns root-level
		// polymorphic inverses and realizes them as subqueries.
		if !inSubquery && parentAlias == "" {
			return b, nil
		}
		target = rel.Collection
		alias := s.recordAlias(hopPath, target)
		b = b.LeftJoin(fmt.Sprintf(
			"%s AS %s ON %s = %s AND %s = %s",
			sqlutil.QuoteIdentifier(target),
			sqlutil.QuoteIdentifier(alias),
			sqlutil.QualifyColumn(alias, rel.OneCollectionField),
			sqlutil.QuoteString(parentCollection),
			sqlutil.QualifyColumn(alias, rel.Field),
			polymorphicCast(sqlutil.QualifyColumn(parentExpr, s.schema.PrimaryKey(parentCollection))),
		))
		return s.joinHop(b, hopPath, rest[1:], target, alias, inSubquery)

	case schema.RelationOneToMany:
		// A root-level o2m in a top-level filter context would multiply rows;
		// the filter compiler realizes it as a subquery instead, so the walk
		// stops here.
		if !inSubquery && parentAlias == "" {
			return b, nil
		}
		target = rel.Collection
		alias := s.recordAlias(hopPath, target)
		b = b.LeftJoin(fmt.Sprintf(
			"%s AS %s ON %s = %s",
			sqlutil.QuoteIdentifier(target),
			sqlutil.QuoteIdentifier(alias),
			sqlutil.QualifyColumn(parentExpr, s.schema.PrimaryKey(parentCollection)),
			sqlutil.QualifyColumn(alias, rel.Field),
		))
		return s.joinHop(b, hopPath, rest[1:], target, alias, inSubquery)
	}

	return b, nil
}

func allowedScope(rel *schema.Relation, scope string) bool {
	if len(rel.OneAllowedCollections) == 0 {
		return true
	}
	for _, allowed := range rel.OneAllowedCollections {
		if allowed == scope {
			return true
		}
	}
	return false
}
