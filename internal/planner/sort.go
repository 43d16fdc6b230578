package planner

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"dataquery/internal/sqlutil"
)

// applySort emits ORDER BY entries in input order, planning joins for
// relational sort keys. Unknown fields and unresolved paths are dropped
// silently. Stable tie-breaking is the database's responsibility.
func (s *compileState) applySort(b sq.SelectBuilder, sortKeys []string, collection string, inSubquery bool) (sq.SelectBuilder, error) {
	var err error
	for _, key := range sortKeys {
		direction := "ASC"
		if strings.HasPrefix(key, "-") {
			direction = "DESC"
			key = key[1:]
		}
		path := strings.Split(key, ".")

		if len(path) == 1 {
			field, _ := splitPathSegment(path[0])
			if !s.schema.HasField(collection, field) {
				continue
			}
			b = b.OrderBy(sqlutil.QualifyColumn(collection, field) + " " + direction)
			continue
		}

		b, err = s.addJoin(b, path, collection, inSubquery)
		if err != nil {
			return b, err
		}
		entry, ok := s.aliases.get(path[:len(path)-1])
		if !ok {
			continue
		}
		field, _ := splitPathSegment(path[len(path)-1])
		if !s.schema.HasField(entry.collection, field) {
			continue
		}
		b = b.OrderBy(sqlutil.QualifyColumn(entry.alias, field) + " " + direction)
	}
	return b, nil
}

// applyGroup emits GROUP BY entries, planning joins for relational paths the
// same way sorting does.
func (s *compileState) applyGroup(b sq.SelectBuilder, groupKeys []string, collection string, inSubquery bool) (sq.SelectBuilder, error) {
	var err error
	for _, key := range groupKeys {
		path := strings.Split(key, ".")

		if len(path) == 1 {
			field, _ := splitPathSegment(path[0])
			if !s.schema.HasField(collection, field) {
				continue
			}
			b = b.GroupBy(sqlutil.QualifyColumn(collection, field))
			continue
		}

		b, err = s.addJoin(b, path, collection, inSubquery)
		if err != nil {
			return b, err
		}
		entry, ok := s.aliases.get(path[:len(path)-1])
		if !ok {
			continue
		}
		field, _ := splitPathSegment(path[len(path)-1])
		b = b.GroupBy(sqlutil.QualifyColumn(entry.alias, field))
	}
	return b, nil
}
