package planner

import (
	"regexp"
	"testing"
)

var identifierPattern = regexp.MustCompile(`^[a-z]{5}$`)

func TestRandomAlias(t *testing.T) {
	for i := 0; i < 100; i++ {
		alias := randomAlias()
		if !identifierPattern.MatchString(alias) {
			t.Fatalf("alias %q is not a five-char lowercase identifier", alias)
		}
	}
}

func TestAliasAllocatorSkipsCollectionNames(t *testing.T) {
	a := newAliasAllocator([]string{"pages", "posts"})
	calls := 0
	a.gen = func() string {
		calls++
		if calls == 1 {
			return "pages"
		}
		return "fresh"
	}
	if alias := a.next(); alias != "fresh" {
		t.Errorf("allocator returned a collection name: %q", alias)
	}
}

func TestAliasAllocatorNeverRepeats(t *testing.T) {
	a := newAliasAllocator(nil)
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		alias := a.next()
		if _, dup := seen[alias]; dup {
			t.Fatalf("alias %q allocated twice", alias)
		}
		seen[alias] = struct{}{}
	}
}

func TestAliasMapPathsAreIndependent(t *testing.T) {
	m := aliasMap{}
	m.set([]string{"author"}, "aaaaa", "authors")
	m.set([]string{"author", "company"}, "bbbbb", "companies")

	entry, ok := m.get([]string{"author"})
	if !ok || entry.alias != "aaaaa" {
		t.Errorf("lookup failed: %v %v", entry, ok)
	}
	entry, ok = m.get([]string{"author", "company"})
	if !ok || entry.alias != "bbbbb" || entry.collection != "companies" {
		t.Errorf("lookup failed: %v %v", entry, ok)
	}
	if _, ok := m.get([]string{"company"}); ok {
		t.Errorf("unexpected hit for unknown path")
	}
}
