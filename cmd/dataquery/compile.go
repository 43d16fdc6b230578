package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fatih/color"

	"dataquery/internal/config"
	"dataquery/internal/dbexec"
	"dataquery/internal/logging"
	"dataquery/internal/observability"
	"dataquery/internal/planner"
	"dataquery/internal/schema"
	"dataquery/internal/sqlutil"
)

// compiled is the result of one CLI compilation.
type compiled struct {
	SQL  string
	Args []interface{}
}

// compile loads the schema and query descriptor and compiles them to SQL.
func compile(ctx context.Context, cfg *config.Config) (compiled, error) {
	logger := logging.FromContext(ctx)

	sch, err := schema.LoadFile(cfg.SchemaPath)
	if err != nil {
		return compiled{}, err
	}

	rawQuery, err := readQuery(cfg.QueryPath)
	if err != nil {
		return compiled{}, err
	}
	q, err := planner.ParseQuery(rawQuery)
	if err != nil {
		return compiled{}, err
	}

	builder := sq.Select().From(sqlutil.QuoteIdentifier(cfg.Collection))
	if len(q.Aggregate) == 0 {
		builder = builder.Columns(sqlutil.QuoteIdentifier(cfg.Collection) + ".*")
	}

	metrics, err := observability.InitCompileMetrics()
	if err != nil {
		logger.Warn("metrics unavailable", slog.String("error", err.Error()))
	}

	start := time.Now()
	builder, err = planner.ApplyQuery(sch, cfg.Collection, builder, q, planner.WithMetrics(metrics))
	metrics.RecordCompilation(ctx, cfg.Collection, time.Since(start), err)
	if err != nil {
		return compiled{}, err
	}

	sqlText, args, err := planner.ToSQL(builder)
	if err != nil {
		return compiled{}, fmt.Errorf("failed to render SQL: %w", err)
	}

	logger.Debug("compiled query",
		slog.String("collection", cfg.Collection),
		slog.Duration("took", time.Since(start)),
	)
	return compiled{SQL: sqlText, Args: args}, nil
}

// readQuery reads the JSON query descriptor from a file, or stdin when no
// path is configured. An empty descriptor is valid and compiles to a bare
// SELECT.
func readQuery(path string) (map[string]interface{}, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read query: %w", err)
	}
	if len(data) == 0 {
		return map[string]interface{}{}, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse query JSON: %w", err)
	}
	return raw, nil
}

// printResult writes the compiled SQL and its bound arguments.
func printResult(out io.Writer, useColor bool, result compiled) {
	heading := color.New(color.FgCyan, color.Bold)
	value := color.New(color.FgGreen)
	if !useColor {
		heading.DisableColor()
		value.DisableColor()
	}

	heading.Fprintln(out, "SQL:")
	fmt.Fprintln(out, result.SQL)
	heading.Fprintln(out, "Args:")
	if len(result.Args) == 0 {
		fmt.Fprintln(out, "(none)")
		return
	}
	for i, arg := range result.Args {
		value.Fprintf(out, "  $%d = %v\n", i+1, arg)
	}
}

// execute runs the compiled query against the configured database and prints
// each row as a JSON object.
func execute(ctx context.Context, cfg *config.Config, result compiled) error {
	db, err := dbexec.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := dbexec.RunSelect(ctx, dbexec.NewStandardExecutor(db), result.SQL, result.Args)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
