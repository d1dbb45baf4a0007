package config

import "time"

// Config holds runtime settings for one export or import run.
type Config struct {
	DatabaseDSN      string
	BackupPath       string
	LogLevel         string
	LogFormat        string
	OperationTimeout time.Duration
}

// LoadDefaults populates c with defaults suitable for a local run.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "file:messages.db"
	c.BackupPath = "messages.backup"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.OperationTimeout = 10 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
