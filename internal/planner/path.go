package planner

import (
	"sort"
	"strings"
)

// splitPathSegment splits a path segment of the form "field" or
// "field:scope". The scope selects a target collection and is only
// meaningful on polymorphic fields.
func splitPathSegment(segment string) (field, scope string) {
	field, scope, _ = strings.Cut(segment, ":")
	return field, scope
}

// filterLeaf walks a nested single-key filter chain down to its operator
// leaf. The terminal key starting with "_" is the operator and its value the
// operand; a non-map value at any depth is shorthand for {_eq: value}. Maps
// with several keys follow their first key in sorted order, matching the
// deterministic iteration used everywhere else in the compiler.
func filterLeaf(key string, value interface{}) (path []string, operator string, operand interface{}) {
	path = []string{key}
	current := value
	for {
		node, ok := current.(map[string]interface{})
		if !ok || len(node) == 0 {
			return path, "_eq", current
		}
		childKey := sortedKeys(node)[0]
		childValue := node[childKey]
		if strings.HasPrefix(childKey, "_") {
			return path, childKey, childValue
		}
		path = append(path, childKey)
		current = childValue
	}
}

func sortedKeys(node map[string]interface{}) []string {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
