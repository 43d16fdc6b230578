package planner

import (
	"errors"
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func TestApplyAggregate_CountAllAndSumWithGroup(t *testing.T) {
	q := Query{
		Aggregate: map[string][]string{
			"count": {"*"},
			"sum":   {"price"},
		},
		Group: []string{"category"},
	}

	b, err := ApplyQuery(cmsSchema(), "pages", sq.Select().From("`pages`"), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, _, err := ToSQL(b)
	if err != nil {
		t.Fatalf("failed to build SQL: %v", err)
	}

	want := "SELECT COUNT(*) AS `countAll`, SUM(`pages`.`price`) AS `sum->price` " +
		"FROM `pages` GROUP BY `pages`.`category`"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestApplyAggregate_DistinctVariants(t *testing.T) {
	q := Query{
		Aggregate: map[string][]string{
			"countDistinct": {"author"},
			"avgDistinct":   {"price"},
			"sumDistinct":   {"price"},
		},
	}

	b, err := ApplyQuery(cmsSchema(), "pages", sq.Select().From("`pages`"), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, _, err := ToSQL(b)
	if err != nil {
		t.Fatalf("failed to build SQL: %v", err)
	}

	for _, fragment := range []string{
		"COUNT(DISTINCT `pages`.`author`) AS `countDistinct->author`",
		"AVG(DISTINCT `pages`.`price`) AS `avgDistinct->price`",
		"SUM(DISTINCT `pages`.`price`) AS `sumDistinct->price`",
	} {
		if !strings.Contains(sql, fragment) {
			t.Errorf("missing %q in %q", fragment, sql)
		}
	}
}

func TestApplyAggregate_MinMax(t *testing.T) {
	q := Query{
		Aggregate: map[string][]string{
			"min": {"price"},
			"max": {"price"},
		},
	}

	b, err := ApplyQuery(cmsSchema(), "pages", sq.Select().From("`pages`"), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, _, err := ToSQL(b)
	if err != nil {
		t.Fatalf("failed to build SQL: %v", err)
	}

	if !strings.Contains(sql, "MIN(`pages`.`price`) AS `min->price`") ||
		!strings.Contains(sql, "MAX(`pages`.`price`) AS `max->price`") {
		t.Errorf("missing min/max clauses in %q", sql)
	}
}

func TestApplyAggregate_UnknownOperationFails(t *testing.T) {
	q := Query{Aggregate: map[string][]string{"median": {"price"}}}
	_, err := ApplyQuery(cmsSchema(), "pages", sq.Select().From("`pages`"), q)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestApplyAggregate_StarOnlyForCount(t *testing.T) {
	q := Query{Aggregate: map[string][]string{"sum": {"*"}}}
	_, err := ApplyQuery(cmsSchema(), "pages", sq.Select().From("`pages`"), q)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestApplyGroup_RelationalPathJoins(t *testing.T) {
	s := testState(cmsSchema())
	b, err := s.applyGroup(pagesBuilder(), []string{"author.name"}, "pages", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, _, err := ToSQL(b)
	if err != nil {
		t.Fatalf("failed to build SQL: %v", err)
	}

	want := "SELECT `pages`.* FROM `pages` " +
		"LEFT JOIN `authors` AS `alias1` ON `pages`.`author` = `alias1`.`id` " +
		"GROUP BY `alias1`.`name`"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}
