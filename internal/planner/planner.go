// Package planner compiles declarative query descriptors (filter trees, sort
// lists, pagination, search, grouping, aggregation) over a known schema into
// decorations on a squirrel SELECT builder.
package planner
