package planner

import (
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func searchSQL(t *testing.T, query string) (string, []interface{}) {
	t.Helper()
	s := testState(cmsSchema())
	cond := s.searchCondition("pages", query)
	if cond == nil {
		return "", nil
	}
	sql, args, err := sq.Select("`pages`.*").From("`pages`").Where(cond).PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		t.Fatalf("failed to build SQL: %v", err)
	}
	return sql, args
}

func TestSearch_StringFieldsMatchCaseInsensitively(t *testing.T) {
	sql, args := searchSQL(t, "Welcome")

	if !strings.Contains(sql, "LOWER(`pages`.`title`) LIKE ?") {
		t.Errorf("string fields should match with LOWER ... LIKE, got %q", sql)
	}
	found := false
	for _, arg := range args {
		if arg == "%welcome%" {
			found = true
		}
	}
	if !found {
		t.Errorf("search term should be lowercased and wrapped in wildcards: %v", args)
	}
	if strings.Contains(sql, "`pages`.`price`") {
		t.Errorf("non-numeric query must not compare numeric fields, got %q", sql)
	}
}

func TestSearch_NumericQueryAddsEqualityDisjuncts(t *testing.T) {
	sql, args := searchSQL(t, "42")

	if !strings.Contains(sql, "`pages`.`price` = ?") {
		t.Errorf("numeric query should compare numeric fields, got %q", sql)
	}
	found := false
	for _, arg := range args {
		if f, ok := arg.(float64); ok && f == 42 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected parsed number among args: %v", args)
	}
}

func TestSearch_UUIDQueryMatchesUUIDFields(t *testing.T) {
	id := "9a1f4b52-0c1d-4c26-a62e-2e1c3a6d1f00"
	sql, args := searchSQL(t, id)

	if !strings.Contains(sql, "`pages`.`external` = ?") {
		t.Errorf("uuid query should compare uuid fields, got %q", sql)
	}
	found := false
	for _, arg := range args {
		if arg == id {
			found = true
		}
	}
	if !found {
		t.Errorf("expected raw uuid among args: %v", args)
	}
}

func TestSearch_DisjunctsFormSingleOrGroup(t *testing.T) {
	sql, _ := searchSQL(t, "x")

	whereClause := sql[strings.Index(sql, "WHERE"):]
	if !strings.HasPrefix(whereClause, "WHERE (") {
		t.Errorf("search disjuncts should be one grouped OR clause, got %q", whereClause)
	}
	if strings.Contains(whereClause, ") AND (") {
		t.Errorf("search must contribute a single group, got %q", whereClause)
	}
}

func TestSearch_NoMatchableFieldsReturnsNil(t *testing.T) {
	s := testState(cmsSchema())
	if cond := s.searchCondition("unknown_collection", "x"); cond != nil {
		t.Errorf("unknown collection should produce no condition")
	}
}
