package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete mpsc configuration
type Config struct {
	Channel ChannelConfig `mapstructure:"channel" yaml:"channel"`
	Bench   BenchConfig   `mapstructure:"bench" yaml:"bench"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ChannelConfig controls how channels opened by the CLI behave
type ChannelConfig struct {
	// StrictReceiver refuses a second live receiver instead of warning
	StrictReceiver bool `mapstructure:"strict_receiver" yaml:"strict_receiver"`
	// FreelistLimit bounds how many retired nodes each channel keeps (0 disables reuse)
	FreelistLimit int `mapstructure:"freelist_limit" yaml:"freelist_limit"`
}

// BenchConfig controls the throughput benchmark
type BenchConfig struct {
	// Producers is the number of concurrent sender goroutines
	Producers int `mapstructure:"producers" yaml:"producers"`
	// Messages is the number of messages each producer sends
	Messages int `mapstructure:"messages" yaml:"messages"`
	// PayloadSize is the fixed message size in bytes (minimum 16)
	PayloadSize int `mapstructure:"payload_size" yaml:"payload_size"`
	// RecvTimeoutMs bounds how long the consumer waits for any single message
	RecvTimeoutMs int `mapstructure:"recv_timeout_ms" yaml:"recv_timeout_ms"`
	// TUI shows a live progress view when stdout is a terminal
	TUI bool `mapstructure:"tui" yaml:"tui"`
}

// WatchConfig controls filesystem fan-in
type WatchConfig struct {
	// Include limits reported changes to paths matching any of these globs (empty matches all)
	Include []string `mapstructure:"include" yaml:"include"`
	// Exclude drops changes to paths matching any of these globs
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// DebounceMs coalesces repeated events for the same path within this window
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log destination; empty logs to stderr
	File string `mapstructure:"file" yaml:"file"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Enabled serves /metrics while a command runs
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Addr is the listen address for the metrics server
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// MinPayloadSize is the smallest bench payload: a producer id and a sequence number.
const MinPayloadSize = 16

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Channel: ChannelConfig{
			StrictReceiver: false,
			FreelistLimit:  256,
		},
		Bench: BenchConfig{
			Producers:     8,
			Messages:      10000,
			PayloadSize:   64,
			RecvTimeoutMs: 5000,
			TUI:           true,
		},
		Watch: WatchConfig{
			Include:    []string{},
			Exclude:    []string{".git", "*.swp", "*~"},
			DebounceMs: 50,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// RecvTimeout returns the per-message receive timeout as a time.Duration
func (c *BenchConfig) RecvTimeout() time.Duration {
	return time.Duration(c.RecvTimeoutMs) * time.Millisecond
}

// Debounce returns the debounce window as a time.Duration (0 means disabled)
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("channel.strict_receiver", defaults.Channel.StrictReceiver)
	viper.SetDefault("channel.freelist_limit", defaults.Channel.FreelistLimit)

	viper.SetDefault("bench.producers", defaults.Bench.Producers)
	viper.SetDefault("bench.messages", defaults.Bench.Messages)
	viper.SetDefault("bench.payload_size", defaults.Bench.PayloadSize)
	viper.SetDefault("bench.recv_timeout_ms", defaults.Bench.RecvTimeoutMs)
	viper.SetDefault("bench.tui", defaults.Bench.TUI)

	viper.SetDefault("watch.include", defaults.Watch.Include)
	viper.SetDefault("watch.exclude", defaults.Watch.Exclude)
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.addr", defaults.Metrics.Addr)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// YAML renders the configuration in config file form
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteFile writes the configuration to path, creating parent directories.
// It refuses to overwrite an existing file unless force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	data, err := c.YAML()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ReadFile parses a YAML config file on top of the defaults without
// consulting viper. Missing keys keep their default values.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mpsc")
	}
	// Fall back to ~/.config/mpsc
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mpsc"
	}
	return filepath.Join(home, ".config", "mpsc")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
