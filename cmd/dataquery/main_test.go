package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataquery/internal/config"
)

func TestCompile_GoldenOutput(t *testing.T) {
	cfg := &config.Config{
		SchemaPath: "testdata/schema.yaml",
		QueryPath:  "testdata/query.json",
		Collection: "pages",
	}

	result, err := compile(context.Background(), cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	printResult(&buf, false, result)

	g := goldie.New(t)
	g.Assert(t, "compile_output", buf.Bytes())
}

func TestCompile_AggregateGoldenOutput(t *testing.T) {
	cfg := &config.Config{
		SchemaPath: "testdata/schema.yaml",
		QueryPath:  "testdata/aggregate_query.json",
		Collection: "pages",
	}

	result, err := compile(context.Background(), cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	printResult(&buf, false, result)

	g := goldie.New(t)
	g.Assert(t, "aggregate_output", buf.Bytes())
}

func TestCompile_MissingSchemaFile(t *testing.T) {
	cfg := &config.Config{
		SchemaPath: "testdata/nope.yaml",
		QueryPath:  "testdata/query.json",
		Collection: "pages",
	}
	_, err := compile(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCompile_InvalidQueryJSON(t *testing.T) {
	cfg := &config.Config{
		SchemaPath: "testdata/schema.yaml",
		QueryPath:  "testdata/schema.yaml", // YAML is not valid JSON
		Collection: "pages",
	}
	_, err := compile(context.Background(), cfg)
	assert.Error(t, err)
}
