// Package config holds the YAML configuration of the paygraph binary.
// Flags given on the command line override values loaded from the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chenzhangda16/paygraph/internal/paygraph/retry"
)

const (
	MedianIncremental = "incremental"
	MedianRecompute   = "recompute"
)

type Config struct {
	WindowSec       int64  `yaml:"window_sec"`
	Median          string `yaml:"median"`
	CheckInvariants bool   `yaml:"check_invariants"`
	LogEvery        int64  `yaml:"log_every"`

	Inputs    []string `yaml:"inputs"`
	Output    string   `yaml:"output"`
	OutputDir string   `yaml:"output_dir"`

	MetricsAddr string `yaml:"metrics_addr"`
	ArchivePath string `yaml:"archive_path"`

	Kafka KafkaConfig `yaml:"kafka"`
	SQL   SQLConfig   `yaml:"sql"`
	Retry RetryConfig `yaml:"retry"`
}

type KafkaConfig struct {
	Brokers  string `yaml:"brokers"` // comma separated
	Group    string `yaml:"group"`
	Topic    string `yaml:"topic"`
	OutTopic string `yaml:"out_topic"` // empty disables the kafka sink
}

type SQLConfig struct {
	Driver string `yaml:"driver"` // "pgx" or "sqlite"; empty disables
	DSN    string `yaml:"dsn"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Jitter      time.Duration `yaml:"jitter"`
}

func Default() Config {
	return Config{
		WindowSec: 60,
		Median:    MedianIncremental,
		LogEvery:  10000,

		Inputs: []string{"./venmo_input/venmo-trans.txt"},
		Output: "./venmo_output/output.txt",

		Kafka: KafkaConfig{
			Brokers:  "127.0.0.1:9092",
			Group:    "paygraph",
			Topic:    "venmo.payments",
			OutTopic: "paygraph.medians",
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   100 * time.Millisecond,
			MaxDelay:    5 * time.Second,
			Jitter:      50 * time.Millisecond,
		},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
// Unknown keys are rejected so a typo does not silently fall back to a default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.WindowSec <= 0 {
		return fmt.Errorf("config: window_sec must be > 0, got %d", c.WindowSec)
	}
	switch c.Median {
	case MedianIncremental, MedianRecompute:
	default:
		return fmt.Errorf("config: unknown median strategy %q", c.Median)
	}
	switch c.SQL.Driver {
	case "", "pgx", "sqlite":
	default:
		return fmt.Errorf("config: unknown sql driver %q", c.SQL.Driver)
	}
	if c.SQL.Driver != "" && c.SQL.DSN == "" {
		return errors.New("config: sql.dsn is required when sql.driver is set")
	}
	return nil
}

func (c Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
		MaxDelay:    c.Retry.MaxDelay,
		Jitter:      c.Retry.Jitter,
	}
}
