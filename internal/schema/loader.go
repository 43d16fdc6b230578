package schema

import (
	"fmt"
	"os"
	"sort"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"

	"dataquery/internal/sqltype"
)

type fileSchema struct {
	Collections map[string]fileCollection `yaml:"collections"`
	Relations   []fileRelation            `yaml:"relations"`
}

type fileCollection struct {
	Primary string            `yaml:"primary"`
	Fields  map[string]string `yaml:"fields"`
}

type fileRelation struct {
	Collection            string   `yaml:"collection"`
	Field                 string   `yaml:"field"`
	RelatedCollection     string   `yaml:"related_collection"`
	OneField              string   `yaml:"one_field"`
	OneCollectionField    string   `yaml:"one_collection_field"`
	OneAllowedCollections []string `yaml:"one_allowed_collections"`
}

// LoadFile reads a schema definition from a YAML file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %q: %w", path, err)
	}
	return Load(data)
}

// Load parses a YAML schema definition. Relations that omit one_field get a
// default inverse field name: the pluralized name of the collection holding
// the foreign key. Polymorphic relations keep one_field as authored, since
// their inverse is ambiguous without an explicit name.
func Load(data []byte) (*Schema, error) {
	var raw fileSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if len(raw.Collections) == 0 {
		return nil, fmt.Errorf("schema defines no collections")
	}

	collections := make(map[string]Collection, len(raw.Collections))
	for name, rc := range raw.Collections {
		if rc.Primary == "" {
			return nil, fmt.Errorf("collection %s has no primary key", name)
		}
		fields := make(map[string]Field, len(rc.Fields))
		for fieldName, fieldType := range rc.Fields {
			fields[fieldName] = Field{Name: fieldName, Type: sqltype.FieldType(fieldType)}
		}
		if _, ok := fields[rc.Primary]; !ok {
			fields[rc.Primary] = Field{Name: rc.Primary, Type: sqltype.TypeInteger}
		}
		collections[name] = Collection{Name: name, Primary: rc.Primary, Fields: fields}
	}

	relations := make([]Relation, 0, len(raw.Relations))
	for _, rr := range raw.Relations {
		if rr.Collection == "" || rr.Field == "" {
			return nil, fmt.Errorf("relation is missing collection or field")
		}
		if _, ok := collections[rr.Collection]; !ok {
			return nil, fmt.Errorf("relation references unknown collection %s", rr.Collection)
		}
		if rr.RelatedCollection != "" {
			if _, ok := collections[rr.RelatedCollection]; !ok {
				return nil, fmt.Errorf("relation references unknown collection %s", rr.RelatedCollection)
			}
			if rr.OneField == "" {
				rr.OneField = inflection.Plural(rr.Collection)
			}
		}
		relations = append(relations, Relation{
			Collection:            rr.Collection,
			Field:                 rr.Field,
			RelatedCollection:     rr.RelatedCollection,
			OneField:              rr.OneField,
			OneCollectionField:    rr.OneCollectionField,
			OneAllowedCollections: append([]string(nil), rr.OneAllowedCollections...),
		})
	}

	return &Schema{Collections: collections, Relations: relations}, nil
}

// CollectionNames returns the sorted collection names, mainly for
// deterministic diagnostics.
func (s *Schema) CollectionNames() []string {
	names := make([]string, 0, len(s.Collections))
	for name := range s.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
