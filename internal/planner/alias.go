package planner

import (
	"math/rand/v2"
	"strings"
)

const aliasLength = 5

// aliasAllocator hands out short table aliases that are unique within one
// compilation and never collide with a collection name. Subquery compilations
// share the allocator of their parent so the uniqueness guarantee spans the
// whole statement.
type aliasAllocator struct {
	used map[string]struct{}
	gen  func() string
}

func newAliasAllocator(collectionNames []string) *aliasAllocator {
	used := make(map[string]struct{}, len(collectionNames))
	for _, name := range collectionNames {
		used[strings.ToLower(name)] = struct{}{}
	}
	return &aliasAllocator{used: used, gen: randomAlias}
}

// next returns a fresh alias. Collisions are statistically negligible but
// retried anyway; the loop also skips collection names.
func (a *aliasAllocator) next() string {
	for {
		alias := a.gen()
		if _, taken := a.used[alias]; taken {
			continue
		}
		a.used[alias] = struct{}{}
		return alias
	}
}

// randomAlias draws a five-character lowercase token. The top-level
// math/rand/v2 functions are safe for concurrent use, so parallel
// compilations need no coordination.
func randomAlias() string {
	b := make([]byte, aliasLength)
	for i := range b {
		b[i] = byte('a' + rand.IntN(26))
	}
	return string(b)
}
