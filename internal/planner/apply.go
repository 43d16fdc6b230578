package planner

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"dataquery/internal/observability"
	"dataquery/internal/schema"
)

// compileState carries the per-compilation mutable pieces: the shared alias
// map and the alias allocator. Subquery compilations get a fresh alias map
// (their joins live in a nested scope) but share the allocator, keeping
// aliases unique across the whole statement. depth tracks how many subquery
// layers deep this state sits so the filter depth limit spans them.
type compileState struct {
	schema    *schema.Schema
	aliases   aliasMap
	allocator *aliasAllocator
	metrics   *observability.CompileMetrics
	depth     int
}

func newCompileState(sch *schema.Schema) *compileState {
	return &compileState{
		schema:    sch,
		aliases:   aliasMap{},
		allocator: newAliasAllocator(sch.CollectionNames()),
	}
}

func (s *compileState) subState() *compileState {
	return &compileState{
		schema:    s.schema,
		aliases:   aliasMap{},
		allocator: s.allocator,
		metrics:   s.metrics,
		depth:     s.depth + 1,
	}
}

// recordAlias allocates a fresh alias for a join hop and records it in the
// alias map.
func (s *compileState) recordAlias(path []string, collection string) string {
	alias := s.allocator.next()
	s.aliases.set(path, alias, collection)
	s.metrics.RecordJoinPlanned(context.Background(), collection)
	return alias
}

type applyOptions struct {
	subQuery bool
	metrics  *observability.CompileMetrics
}

// ApplyOption customizes compilation for non-root contexts.
type ApplyOption func(*applyOptions)

// AsSubQuery marks the compilation as running inside a correlated subquery,
// which changes how one-to-many traversals at the path root are realized.
func AsSubQuery() ApplyOption {
	return func(o *applyOptions) {
		o.subQuery = true
	}
}

// WithMetrics attaches compile metrics so planned joins are counted,
// including those inside subquery compilations.
func WithMetrics(m *observability.CompileMetrics) ApplyOption {
	return func(o *applyOptions) {
		o.metrics = m
	}
}

// ApplyQuery decorates the supplied SELECT builder with the query's sort,
// pagination, search, grouping, aggregation, and filter, in that order. The
// builder is decorated, never executed; the returned builder carries every
// clause. All per-compilation state is discarded when ApplyQuery returns.
func ApplyQuery(sch *schema.Schema, collection string, b sq.SelectBuilder, q Query, opts ...ApplyOption) (sq.SelectBuilder, error) {
	if sch == nil {
		return b, fmt.Errorf("%w: schema is required", ErrInvalidQuery)
	}
	if _, ok := sch.CollectionByName(collection); !ok {
		return b, fmt.Errorf("%w: unknown collection %s", ErrInvalidQuery, collection)
	}

	options := applyOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	s := newCompileState(sch)
	s.metrics = options.metrics
	return s.applyQuery(b, collection, q, options.subQuery)
}

// applyQuery runs the fixed decoration order: sort, limit, offset, page,
// search, group, aggregate, filter. Filter runs last so subquery builders
// see a builder without pagination baggage; the resulting SQL semantics are
// order-independent.
func (s *compileState) applyQuery(b sq.SelectBuilder, collection string, q Query, inSubquery bool) (sq.SelectBuilder, error) {
	if err := validateQuery(q); err != nil {
		return b, err
	}

	var err error
	if len(q.Sort) > 0 {
		b, err = s.applySort(b, q.Sort, collection, inSubquery)
		if err != nil {
			return b, err
		}
	}

	if q.Limit != nil && *q.Limit != -1 {
		b = b.Limit(uint64(*q.Limit))
	}
	if q.Offset != nil && *q.Offset > 0 {
		b = b.Offset(uint64(*q.Offset))
	}
	// page overrides any explicit offset when a positive limit is also set.
	if q.Page != nil && q.Limit != nil && *q.Limit > 0 {
		b = b.Offset(uint64(*q.Limit * (*q.Page - 1)))
	}

	if q.Search != "" {
		if cond := s.searchCondition(collection, q.Search); cond != nil {
			b = b.Where(cond)
		}
	}

	if len(q.Group) > 0 {
		b, err = s.applyGroup(b, q.Group, collection, inSubquery)
		if err != nil {
			return b, err
		}
	}

	if len(q.Aggregate) > 0 {
		b, err = applyAggregate(b, q.Aggregate, collection)
		if err != nil {
			return b, err
		}
	}

	if len(q.Filter) > 0 {
		b, err = s.applyFilter(b, q.Filter, collection, inSubquery)
		if err != nil {
			return b, err
		}
	}

	return b, nil
}

// ToSQL renders a decorated builder with MySQL placeholders.
func ToSQL(b sq.SelectBuilder) (string, []interface{}, error) {
	return b.PlaceholderFormat(sq.Question).ToSql()
}
