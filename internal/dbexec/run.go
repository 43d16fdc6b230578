package dbexec

import (
	"context"
	"fmt"
	"log/slog"

	"dataquery/internal/logging"
)

// RunSelect executes a compiled SELECT and scans every row into a generic
// column-to-value map. Byte slices are converted to strings since the MySQL
// driver returns text columns as []byte.
func RunSelect(ctx context.Context, exec SelectExecutor, query string, args []any) ([]map[string]any, error) {
	logger := logging.FromContext(ctx)
	logger.Debug("executing query", slog.String("sql", query), slog.Int("args", len(args)))

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	logger.Debug("query complete", slog.Int("rows", len(results)))
	return results, nil
}
