package planner

import "strings"

// aliasEntry records the alias chosen for one relation instance along a path,
// together with the collection that alias stands for.
type aliasEntry struct {
	alias      string
	collection string
}

// aliasMap mirrors the resolved join graph: each joined path maps to the
// alias of its final hop. One alias map is shared across sort and filter
// compilation of a single query so identical paths reuse a single join;
// subqueries get a fresh map because their joins live in a nested scope.
type aliasMap map[string]aliasEntry

func (m aliasMap) key(path []string) string {
	return strings.Join(path, ".")
}

func (m aliasMap) set(path []string, alias, collection string) {
	m[m.key(path)] = aliasEntry{alias: alias, collection: collection}
}

func (m aliasMap) get(path []string) (aliasEntry, bool) {
	entry, ok := m[m.key(path)]
	return entry, ok
}
