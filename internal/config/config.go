package config

import (
	"errors"
	"time"
)

// Config is the application configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Serve   ServeConfig   `mapstructure:"serve"`
	Import  ImportConfig  `mapstructure:"import"`
	Publish PublishConfig `mapstructure:"publish"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

// DBConfig locates the SQLite cache
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig selects the log encoding
type LogConfig struct {
	Format string `mapstructure:"format"`
}

// ServeConfig controls the MCP server. Port 0 selects stdio.
type ServeConfig struct {
	Port    int  `mapstructure:"port"`
	Metrics bool `mapstructure:"metrics"`
}

// ImportConfig controls the inbox watcher. An empty inbox disables it.
type ImportConfig struct {
	Inbox    string        `mapstructure:"inbox"`
	Interval time.Duration `mapstructure:"interval"`
}

// PublishConfig controls summary events. No brokers disables publishing.
type PublishConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// EngineConfig points at an optional thresholds and catalogue override
type EngineConfig struct {
	File string `mapstructure:"file"`
}

// Defaults
const (
	DefaultDBPath         = "fitness_wrapped.db"
	DefaultLogFormat      = "console"
	DefaultServePort      = 8080
	DefaultServeMetrics   = true
	DefaultImportInterval = time.Minute
	DefaultPublishTopic   = "fitness-wrapped.year-summaries"
)

// minImportInterval keeps the inbox watcher from spinning
const minImportInterval = time.Second

// Sentinel errors for configuration validation.
var (
	// ErrInvalidDBPath indicates an empty database path.
	ErrInvalidDBPath = errors.New("db.path must not be empty")
	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("log.format must be console or json")
	// ErrInvalidPort indicates a port outside 0-65535.
	ErrInvalidPort = errors.New("serve.port must be between 0 and 65535")
	// ErrInvalidImportInterval indicates an interval below one second.
	ErrInvalidImportInterval = errors.New("import.interval must be at least 1s")
	// ErrInvalidPublishTopic indicates brokers without a topic.
	ErrInvalidPublishTopic = errors.New("publish.topic is required when brokers are set")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.DB.Path == "" {
		return ErrInvalidDBPath
	}

	if c.Log.Format != "console" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return ErrInvalidPort
	}

	if c.Import.Inbox != "" && c.Import.Interval < minImportInterval {
		return ErrInvalidImportInterval
	}

	if len(c.Publish.Brokers) > 0 && c.Publish.Topic == "" {
		return ErrInvalidPublishTopic
	}

	return nil
}
