package planner

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"dataquery/internal/schema"
	"dataquery/internal/sqlutil"
)

// applyFilter compiles a filter tree onto the builder in two passes sharing
// the state's alias map: the first plans joins, the second emits predicates.
func (s *compileState) applyFilter(b sq.SelectBuilder, filter map[string]interface{}, collection string, inSubquery bool) (sq.SelectBuilder, error) {
	b, err := s.collectFilterJoins(b, filter, collection, inSubquery, 0)
	if err != nil {
		return b, err
	}
	cond, err := s.filterCondition(filter, collection, inSubquery, 0)
	if err != nil {
		return b, err
	}
	if cond != nil {
		b = b.Where(cond)
	}
	return b, nil
}

// collectFilterJoins is the first pass: it visits every branch and plans the
// joins relational leaf paths need. _or branches containing a match-all arm
// are skipped entirely, here and again at predicate emission, through the
// same orShortCircuits check.
func (s *compileState) collectFilterJoins(b sq.SelectBuilder, node map[string]interface{}, collection string, inSubquery bool, depth int) (sq.SelectBuilder, error) {
	if s.depth+depth > MaxFilterDepth {
		return b, ErrFilterTooDeep
	}

	var err error
	for _, key := range sortedKeys(node) {
		value := node[key]
		switch key {
		case "_and", "_or":
			arms, armsErr := filterArms(key, value)
			if armsErr != nil {
				return b, armsErr
			}
			if key == "_or" && orShortCircuits(arms) {
				continue
			}
			for _, arm := range arms {
				b, err = s.collectFilterJoins(b, arm, collection, inSubquery, depth+1)
				if err != nil {
					return b, err
				}
			}
		default:
			path, _, _ := filterLeaf(key, value)
			if s.depth+depth+len(path) > MaxFilterDepth {
				return b, ErrFilterTooDeep
			}
			if len(path) > 1 {
				rootField, _ := splitPathSegment(path[0])
				if _, kind := schema.RelationInfo(s.schema.Relations, collection, rootField); kind == schema.RelationOneToMany || kind == schema.RelationOneToAny {
					// Realized as an existence subquery carrying its own
					// joins; planning a join here would leave it orphaned.
					continue
				}
				b, err = s.addJoin(b, path, collection, inSubquery)
				if err != nil {
					return b, err
				}
			}
		}
	}
	return b, nil
}

// filterCondition is the second pass: it walks the same tree and builds the
// predicate, grouping _and/_or arms into connective groups. Sibling keys at
// one level combine with AND.
func (s *compileState) filterCondition(node map[string]interface{}, collection string, inSubquery bool, depth int) (sq.Sqlizer, error) {
	if s.depth+depth > MaxFilterDepth {
		return nil, ErrFilterTooDeep
	}

	var conditions []sq.Sqlizer
	for _, key := range sortedKeys(node) {
		value := node[key]
		switch key {
		case "_and", "_or":
			arms, err := filterArms(key, value)
			if err != nil {
				return nil, err
			}
			if key == "_or" && orShortCircuits(arms) {
				continue
			}
			var group []sq.Sqlizer
			for _, arm := range arms {
				cond, err := s.filterCondition(arm, collection, inSubquery, depth+1)
				if err != nil {
					return nil, err
				}
				if cond != nil {
					group = append(group, cond)
				}
			}
			if len(group) == 0 {
				continue
			}
			if key == "_and" {
				conditions = append(conditions, sq.And(group))
			} else {
				conditions = append(conditions, sq.Or(group))
			}
		default:
			cond, err := s.leafCondition(key, value, collection, inSubquery, depth)
			if err != nil {
				return nil, err
			}
			if cond != nil {
				conditions = append(conditions, cond)
			}
		}
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return sq.And(conditions), nil
}

// leafCondition emits the predicate for one field key. Scalar columns and
// m2o/a2o traversals become inline predicates against joined aliases;
// o2m/o2a traversals become existence subqueries, except inside a subquery
// at depth one, where the join was already planned.
func (s *compileState) leafCondition(key string, value interface{}, collection string, inSubquery bool, depth int) (sq.Sqlizer, error) {
	path, operator, operand := filterLeaf(key, value)
	if s.depth+depth+len(path) > MaxFilterDepth {
		return nil, ErrFilterTooDeep
	}

	rootField, rootScope := splitPathSegment(path[0])
	rel, kind := schema.RelationInfo(s.schema.Relations, collection, rootField)

	switch kind {
	case schema.RelationOneToMany, schema.RelationOneToAny:
		if inSubquery && len(path) == 1 {
			break
		}
		return s.existenceCondition(collection, rel, kind, operator, operand, value)
	case schema.RelationAnyToOne:
		if rootScope == "" && len(path) > 1 {
			return nil, fmt.Errorf("%w: polymorphic field %s.%s requires a :scope", ErrInvalidQuery, collection, rootField)
		}
	case schema.RelationNone:
		if len(path) == 1 && !s.schema.HasField(collection, rootField) {
			return nil, nil
		}
	}

	return s.inlineCondition(path, operator, operand, collection)
}

// inlineCondition qualifies the final column, coerces the operand to the
// field's declared type, and dispatches through the operator registry. A
// path whose alias was never allocated is dropped silently; permission-layer
// filters may reference relations the request cannot see.
func (s *compileState) inlineCondition(path []string, operator string, operand interface{}, collection string) (sq.Sqlizer, error) {
	if len(path) == 1 {
		field, _ := splitPathSegment(path[0])
		coerced, err := s.coerceOperand(collection, field, operand)
		if err != nil {
			return nil, err
		}
		return operatorCondition(sqlutil.QualifyColumn(collection, field), operator, coerced)
	}

	entry, ok := s.aliases.get(path[:len(path)-1])
	if !ok {
		return nil, nil
	}
	field, _ := splitPathSegment(path[len(path)-1])
	if !s.schema.HasField(entry.collection, field) {
		return nil, nil
	}
	coerced, err := s.coerceOperand(entry.collection, field, operand)
	if err != nil {
		return nil, err
	}
	return operatorCondition(sqlutil.QualifyColumn(entry.alias, field), operator, coerced)
}

// existenceCondition realizes an o2m/o2a predicate without multiplying rows
// at the outer level. Plain and _some predicates membership-test the parent
// key against a projection of the child foreign key; _none negates the
// membership; negative operators invert every nested leaf and wrap a
// correlated subquery in NOT EXISTS, preserving DeMorgan semantics through a
// single negation.
func (s *compileState) existenceCondition(
	collection string,
	rel *schema.Relation,
	kind schema.RelationKind,
	operator string,
	operand interface{},
	rawValue interface{},
) (sq.Sqlizer, error) {
	child := rel.Collection
	fkColumn := sqlutil.QualifyColumn(child, rel.Field)
	pkExpr := sqlutil.QualifyColumn(collection, s.schema.PrimaryKey(collection))
	if kind == schema.RelationOneToAny {
		pkExpr = polymorphicCast(pkExpr)
	}

	nestedFrom := func(v interface{}) (map[string]interface{}, error) {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s filter on %s must be an object", ErrInvalidQuery, operator, rel.Field)
		}
		return m, nil
	}

	switch {
	case operator == "_none" || operator == "_some":
		nested, err := nestedFrom(operand)
		if err != nil {
			return nil, err
		}
		return s.membershipCondition(pkExpr, collection, rel, kind, nested, operator == "_none")

	case isNegativeOperator(operator):
		nested, err := nestedFrom(rawValue)
		if err != nil {
			return nil, err
		}
		sub := sq.Select("1").
			From(sqlutil.QuoteIdentifier(child)).
			Where(sq.Expr(fkColumn + " = " + pkExpr))
		if kind == schema.RelationOneToAny {
			sub = sub.Where(sq.Eq{sqlutil.QualifyColumn(child, rel.OneCollectionField): collection})
		}
		sub, err = s.subState().applyQuery(sub, child, Query{Filter: invertFilter(nested)}, true)
		if err != nil {
			return nil, err
		}
		sql, args, err := sub.PlaceholderFormat(sq.Question).ToSql()
		if err != nil {
			return nil, err
		}
		return sq.Expr("NOT EXISTS ("+sql+")", args...), nil

	default:
		nested, ok := rawValue.(map[string]interface{})
		if !ok {
			nested = map[string]interface{}{operator: operand}
		}
		return s.membershipCondition(pkExpr, collection, rel, kind, nested, false)
	}
}

// membershipCondition builds the projection-based subquery form:
// pk [NOT] IN (SELECT fk FROM child WHERE fk IS NOT NULL ...).
func (s *compileState) membershipCondition(
	pkExpr, collection string,
	rel *schema.Relation,
	kind schema.RelationKind,
	nested map[string]interface{},
	negate bool,
) (sq.Sqlizer, error) {
	child := rel.Collection
	fkColumn := sqlutil.QualifyColumn(child, rel.Field)

	sub := sq.Select(fkColumn).
		From(sqlutil.QuoteIdentifier(child)).
		Where(sq.NotEq{fkColumn: nil})
	if kind == schema.RelationOneToAny {
		sub = sub.Where(sq.Eq{sqlutil.QualifyColumn(child, rel.OneCollectionField): collection})
	}
	sub, err := s.subState().applyQuery(sub, child, Query{Filter: nested}, true)
	if err != nil {
		return nil, err
	}
	sql, args, err := sub.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, err
	}

	verb := " IN ("
	if negate {
		verb = " NOT IN ("
	}
	return sq.Expr(pkExpr+verb+sql+")", args...), nil
}

// invertFilter rewrites every leaf operator of a filter tree between its
// positive and negative forms. Connectives and relational nesting recurse;
// scalar shorthand values become explicit _neq leaves.
func invertFilter(node map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(node))
	for key, value := range node {
		switch {
		case key == "_and" || key == "_or":
			if arms, err := filterArms(key, value); err == nil {
				inverted := make([]interface{}, len(arms))
				for i, arm := range arms {
					inverted[i] = invertFilter(arm)
				}
				out[key] = inverted
			} else {
				out[key] = value
			}
		case key == "_some" || key == "_none":
			if m, ok := value.(map[string]interface{}); ok {
				out[key] = invertFilter(m)
			} else {
				out[key] = value
			}
		case strings.HasPrefix(key, "_"):
			out[invertOperator(key)] = value
		default:
			if m, ok := value.(map[string]interface{}); ok {
				out[key] = invertFilter(m)
			} else {
				out[key] = map[string]interface{}{"_neq": value}
			}
		}
	}
	return out
}

// filterArms validates the array shape of an _and/_or value.
func filterArms(key string, value interface{}) ([]map[string]interface{}, error) {
	switch v := value.(type) {
	case []map[string]interface{}:
		return v, nil
	case []interface{}:
		arms := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			arm, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s arms must be objects", ErrInvalidQuery, key)
			}
			arms = append(arms, arm)
		}
		return arms, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an array", ErrInvalidQuery, key)
	}
}

// orShortCircuits reports whether an _or branch contains a match-all arm
// (an object with no keys). Such branches model permission unions where one
// branch grants full access, so the whole disjunction is a no-op.
func orShortCircuits(arms []map[string]interface{}) bool {
	for _, arm := range arms {
		if len(arm) == 0 {
			return true
		}
	}
	return false
}
