// Package config loads CLI configuration from flags, environment variables,
// and an optional config file.
package config

// Config holds the full CLI configuration.
type Config struct {
	// SchemaPath is the YAML schema definition to compile against.
	SchemaPath string
	// QueryPath is a JSON file holding the query descriptor.
	QueryPath string
	// Collection is the root collection the query targets.
	Collection string
	// Database connection for --execute runs; empty means compile-only.
	DatabaseDSN string
	Execute     bool
	Color       bool
	Logging     LoggingConfig
}

// LoggingConfig mirrors the logging package's knobs.
type LoggingConfig struct {
	Level  string
	Format string
}
