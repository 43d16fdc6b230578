package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"dataquery/internal/config"
	"dataquery/internal/logging"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dataquery error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	pflag.Bool("version", false, "Print version and exit")

	// config.Load defines the remaining flags and parses the command line.
	cfg, err := config.Load()
	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("dataquery %s (%s)\n", Version, Commit)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	ctx := logging.WithLogger(context.Background(), logger)

	result, err := compile(ctx, cfg)
	if err != nil {
		return err
	}
	printResult(os.Stdout, cfg.Color, result)

	if cfg.Execute {
		return execute(ctx, cfg, result)
	}
	return nil
}
