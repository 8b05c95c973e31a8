// Package config defines process configuration and its loading order:
// defaults, then an optional YAML file, then RANKPIPE_-prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address for the serve command.
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database location.
	DBPath string `koanf:"db_path"`

	// LogDir is the base directory the blobstore serves log files from.
	LogDir string `koanf:"log_dir"`

	// WorkerCount sets the number of concurrent ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the pending-job queue.
	QueueSize int `koanf:"queue_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":8080",
		DBPath:      "rankpipe.db",
		LogDir:      ".",
		WorkerCount: 4,
		QueueSize:   256,
	}
}

// Load layers an optional YAML file and RANKPIPE_ env vars over the
// defaults. path may be empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// RANKPIPE_WORKER_COUNT -> worker_count, etc.
	envProvider := env.Provider("RANKPIPE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "RANKPIPE_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.WorkerCount <= 0 {
		return nil, errors.New("worker_count must be positive")
	}
	return &cfg, nil
}
