// Package schema defines the relational schema model the compiler plans
// against: collections, their fields, and the relations between them.
// The schema is read-only input; it may be shared across compilations.
package schema

import "dataquery/internal/sqltype"

// Field represents a scalar column on a collection.
type Field struct {
	Name string
	Type sqltype.FieldType
}

// Collection represents a named table of rows.
type Collection struct {
	Name    string
	Primary string
	Fields  map[string]Field
}

// Relation describes a directed edge between two collections. Collection is
// the "many" side holding the foreign key; RelatedCollection is the "one"
// side and is empty for polymorphic relations, where OneAllowedCollections
// lists the permitted targets and OneCollectionField names the discriminator
// column on the many side.
type Relation struct {
	Collection            string
	Field                 string
	RelatedCollection     string
	OneField              string
	OneCollectionField    string
	OneAllowedCollections []string
}

// Schema is the full relational model: collections by name plus a flat
// sequence of relations.
type Schema struct {
	Collections map[string]Collection
	Relations   []Relation
}

// CollectionByName returns the named collection, if present.
func (s *Schema) CollectionByName(name string) (Collection, bool) {
	c, ok := s.Collections[name]
	return c, ok
}

// PrimaryKey returns the primary key field name of a collection, or "" when
// the collection is unknown.
func (s *Schema) PrimaryKey(collection string) string {
	c, ok := s.Collections[collection]
	if !ok {
		return ""
	}
	return c.Primary
}

// FieldType looks up the declared type of collection.field.
func (s *Schema) FieldType(collection, field string) (sqltype.FieldType, bool) {
	c, ok := s.Collections[collection]
	if !ok {
		return "", false
	}
	f, ok := c.Fields[field]
	if !ok {
		return "", false
	}
	return f.Type, true
}

// HasField reports whether collection.field is a known scalar column.
func (s *Schema) HasField(collection, field string) bool {
	_, ok := s.FieldType(collection, field)
	return ok
}
