package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var defineFlagsOnce sync.Once

// Load loads configuration with the following precedence:
// 1. Command line flags
// 2. Environment variables (DQRY_*)
// 3. Config file
// 4. Default values
// A .env file in the working directory is folded into the environment first.
func Load() (*Config, error) {
	// Missing .env is fine; only load errors for a present file matter.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	defineFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}

	cfgPath, _ := pflag.CommandLine.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("dataquery")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.dataquery")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Canonical keys: dot + snake_case. Env vars: DQRY_LOG_LEVEL.
	v.SetEnvPrefix("DQRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindChangedFlagsToViper(v)

	cfg := &Config{
		SchemaPath:  v.GetString("schema"),
		QueryPath:   v.GetString("query"),
		Collection:  v.GetString("collection"),
		DatabaseDSN: v.GetString("database.dsn"),
		Execute:     v.GetBool("execute"),
		Color:       v.GetBool("color"),
		Logging: LoggingConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.SchemaPath == "" {
		return nil, fmt.Errorf("schema path is required (--schema)")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection is required (--collection)")
	}
	if cfg.Execute && cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("--execute requires database.dsn")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("query", "")
	v.SetDefault("collection", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("execute", false)
	v.SetDefault("color", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func defineFlags() {
	defineFlagsOnce.Do(func() {
		pflag.String("config", "", "Path to config file")
		pflag.String("schema", "", "Path to YAML schema definition")
		pflag.String("query", "", "Path to JSON query descriptor (defaults to stdin)")
		pflag.String("collection", "", "Root collection to query")
		pflag.String("database.dsn", "", "MySQL DSN for --execute")
		pflag.Bool("execute", false, "Execute the compiled query and print rows")
		pflag.Bool("color", true, "Colorize output")
		pflag.String("log.level", "info", "Log level (debug, info, warn, error)")
		pflag.String("log.format", "text", "Log format (text, json)")
	})
}

// bindChangedFlagsToViper binds only flags the user actually set, so unset
// flags don't shadow env vars or config file values with their defaults.
func bindChangedFlagsToViper(v *viper.Viper) {
	pflag.CommandLine.Visit(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}
