// Package observability holds custom metrics for query compilation, built
// on the OpenTelemetry metric API so callers can plug in
// whatever exporter their deployment uses.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CompileMetrics holds custom metrics for query compilation.
type CompileMetrics struct {
	compileDuration metric.Float64Histogram
	compileCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	joinsPlanned    metric.Int64Counter
}

// InitCompileMetrics initializes compilation metrics.
func InitCompileMetrics() (*CompileMetrics, error) {
	meter := otel.Meter("dataquery")

	compileDuration, err := meter.Float64Histogram(
		"dataquery.compile.duration",
		metric.WithDescription("Duration of query compilations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compile duration histogram: %w", err)
	}

	compileCounter, err := meter.Int64Counter(
		"dataquery.compilations.total",
		metric.WithDescription("Total number of query compilations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compilation counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"dataquery.compile.errors.total",
		metric.WithDescription("Total number of failed query compilations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	joinsPlanned, err := meter.Int64Counter(
		"dataquery.compile.joins.total",
		metric.WithDescription("Total number of LEFT JOINs planned during compilation"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create joins counter: %w", err)
	}

	return &CompileMetrics{
		compileDuration: compileDuration,
		compileCounter:  compileCounter,
		errorCounter:    errorCounter,
		joinsPlanned:    joinsPlanned,
	}, nil
}

// RecordCompilation records one compilation attempt against a collection.
func (m *CompileMetrics) RecordCompilation(ctx context.Context, collection string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("collection", collection))
	m.compileCounter.Add(ctx, 1, attrs)
	m.compileDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.errorCounter.Add(ctx, 1, attrs)
	}
}

// RecordJoinPlanned counts one LEFT JOIN planned against a collection.
func (m *CompileMetrics) RecordJoinPlanned(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.joinsPlanned.Add(ctx, 1, metric.WithAttributes(attribute.String("collection", collection)))
}
