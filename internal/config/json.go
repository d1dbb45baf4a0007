package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/chatbackup/internal/flagx"
	"github.com/dmitrijs2005/chatbackup/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	DatabaseDSN      string         `json:"database_dsn"`
	BackupPath       string         `json:"backup_path"`
	LogLevel         string         `json:"log_level"`
	LogFormat        string         `json:"log_format"`
	OperationTimeout timex.Duration `json:"operation_timeout"`
}

// parseJson overlays cfg with the JSON file named by -c / -config.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.BackupPath != "" {
		cfg.BackupPath = jc.BackupPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.OperationTimeout.Duration != 0 {
		cfg.OperationTimeout = jc.OperationTimeout.Duration
	}
}
