package schema

// RelationKind classifies how a field on a collection relates to another
// collection. The kind is derived from the relation record, never stored.
type RelationKind int

const (
	// RelationNone means the field is a scalar column, not a relation.
	RelationNone RelationKind = iota
	// RelationManyToOne means the row references a single related row via a
	// scalar foreign key stored locally.
	RelationManyToOne
	// RelationOneToMany means the row is referenced by many child rows via a
	// foreign key stored on the child.
	RelationOneToMany
	// RelationAnyToOne means the row carries a polymorphic foreign key: a
	// scalar id plus a discriminator column naming the target collection.
	RelationAnyToOne
	// RelationOneToAny is the inverse of RelationAnyToOne: the row is
	// referenced by many polymorphic parents.
	RelationOneToAny
)

func (k RelationKind) String() string {
	switch k {
	case RelationManyToOne:
		return "m2o"
	case RelationOneToMany:
		return "o2m"
	case RelationAnyToOne:
		return "a2o"
	case RelationOneToAny:
		return "o2a"
	default:
		return "none"
	}
}

// RelationInfo resolves the relation reachable from collection via field and
// classifies it. A relation matches in the forward orientation when it holds
// the foreign key (collection, field), and in the inverse orientation when
// field is its declared inverse field on the one side. Checking the forward
// orientation first disambiguates self-referential collections, where both
// orientations name the same collection.
func RelationInfo(relations []Relation, collection, field string) (*Relation, RelationKind) {
	for i := range relations {
		r := &relations[i]
		if r.Collection == collection && r.Field == field {
			if r.RelatedCollection != "" {
				return r, RelationManyToOne
			}
			return r, RelationAnyToOne
		}
	}
	for i := range relations {
		r := &relations[i]
		if r.OneField == "" || r.OneField != field {
			continue
		}
		if r.RelatedCollection == collection {
			return r, RelationOneToMany
		}
		if r.RelatedCollection == "" && containsString(r.OneAllowedCollections, collection) {
			return r, RelationOneToAny
		}
	}
	return nil, RelationNone
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
