package planner

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"dataquery/internal/schema"
	"dataquery/internal/sqltype"
)

// cmsSchema models a small CMS: pages with o2m articles, articles with m2o
// authors, a polymorphic "item" block on pages, and self-referential
// categories.
func cmsSchema() *schema.Schema {
	return &schema.Schema{
		Collections: map[string]schema.Collection{
			"pages": {
				Name:    "pages",
				Primary: "id",
				Fields: map[string]schema.Field{
					"id":         {Name: "id", Type: sqltype.TypeInteger},
					"status":     {Name: "status", Type: sqltype.TypeString},
					"title":      {Name: "title", Type: sqltype.TypeString},
					"secret":     {Name: "secret", Type: sqltype.TypeBoolean},
					"price":      {Name: "price", Type: sqltype.TypeFloat},
					"category":   {Name: "category", Type: sqltype.TypeString},
					"author":     {Name: "author", Type: sqltype.TypeInteger},
					"item":       {Name: "item", Type: sqltype.TypeString},
					"collection": {Name: "collection", Type: sqltype.TypeString},
					"external":   {Name: "external", Type: sqltype.TypeUUID},
					"created_at": {Name: "created_at", Type: sqltype.TypeDateTime},
				},
			},
			"articles": {
				Name:    "articles",
				Primary: "id",
				Fields: map[string]schema.Field{
					"id":        {Name: "id", Type: sqltype.TypeInteger},
					"page_id":   {Name: "page_id", Type: sqltype.TypeInteger},
					"author":    {Name: "author", Type: sqltype.TypeInteger},
					"title":     {Name: "title", Type: sqltype.TypeString},
					"published": {Name: "published", Type: sqltype.TypeBoolean},
				},
			},
			"authors": {
				Name:    "authors",
				Primary: "id",
				Fields: map[string]schema.Field{
					"id":   {Name: "id", Type: sqltype.TypeInteger},
					"name": {Name: "name", Type: sqltype.TypeString},
				},
			},
			"headings": {
				Name:    "headings",
				Primary: "id",
				Fields: map[string]schema.Field{
					"id":    {Name: "id", Type: sqltype.TypeInteger},
					"title": {Name: "title", Type: sqltype.TypeString},
				},
			},
			"paragraphs": {
				Name:    "paragraphs",
				Primary: "id",
				Fields: map[string]schema.Field{
					"id":   {Name: "id", Type: sqltype.TypeInteger},
					"body": {Name: "body", Type: sqltype.TypeText},
				},
			},
			"categories": {
				Name:    "categories",
				Primary: "id",
				Fields: map[string]schema.Field{
					"id":     {Name: "id", Type: sqltype.TypeInteger},
					"name":   {Name: "name", Type: sqltype.TypeString},
					"parent": {Name: "parent", Type: sqltype.TypeInteger},
				},
			},
		},
		Relations: []schema.Relation{
			{Collection: "articles", Field: "page_id", RelatedCollection: "pages", OneField: "articles"},
			{Collection: "articles", Field: "author", RelatedCollection: "authors", OneField: "articles"},
			{Collection: "pages", Field: "author", RelatedCollection: "authors", OneField: "pages"},
			{
				Collection:            "pages",
				Field:                 "item",
				OneField:              "pages",
				OneCollectionField:    "collection",
				OneAllowedCollections: []string{"headings", "paragraphs"},
			},
			{Collection: "categories", Field: "parent", RelatedCollection: "categories", OneField: "children"},
		},
	}
}

// testState returns a compile state whose alias allocator hands out
// predictable sequential tokens.
func testState(sch *schema.Schema) *compileState {
	s := newCompileState(sch)
	n := 0
	s.allocator.gen = func() string {
		n++
		return fmt.Sprintf("alias%d", n)
	}
	return s
}

func pagesBuilder() sq.SelectBuilder {
	return sq.Select("`pages`.*").From("`pages`")
}

func intPtr(v int) *int {
	return &v
}
