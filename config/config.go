// Package config loads monitor configuration from TOML files.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config carries the runtime settings of the pdmon binary.
type Config struct {
	NumPorts   int
	QueueDepth int
	LogLevel   string
	ListenAddr string
	TraceFile  string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		NumPorts:   1,
		QueueDepth: 16,
		LogLevel:   "info",
		ListenAddr: ":9060",
	}
}

type fileConfig struct {
	NumPorts   int    `toml:"num_ports"`
	QueueDepth int    `toml:"queue_depth"`
	LogLevel   string `toml:"log_level"`
	ListenAddr string `toml:"listen_addr"`
	TraceFile  string `toml:"trace_file"`
}

var (
	errPortCount  = errors.New("config: num_ports must be between 1 and 8")
	errQueueDepth = errors.New("config: queue_depth must be positive")
	errTraceFile  = errors.New("config: trace_file is required")
)

// Load reads path and returns the defaults overridden by whatever the
// file defines.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("num_ports") {
		cfg.NumPorts = raw.NumPorts
	}
	if meta.IsDefined("queue_depth") {
		cfg.QueueDepth = raw.QueueDepth
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("trace_file") {
		cfg.TraceFile = strings.TrimSpace(raw.TraceFile)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.NumPorts < 1 || c.NumPorts > 8 {
		return errPortCount
	}
	if c.QueueDepth < 1 {
		return errQueueDepth
	}
	if c.TraceFile == "" {
		return errTraceFile
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: parse log_level: %w", err)
	}
	return nil
}
