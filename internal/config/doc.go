// Package config loads runtime configuration for the chatbackup CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   SQLite DSN of the local message store
//	-f string   path of the backup file to write or read
//	-l string   log level (debug, info, warn, error)
//	-t int      timeout for one export/import operation (seconds)
//
// # JSON schema
//
//	{
//	  "database_dsn": "file:messages.db",
//	  "backup_path": "messages.backup",
//	  "log_level": "info",
//	  "log_format": "json",
//	  "operation_timeout": "10m"
//	}
package config
