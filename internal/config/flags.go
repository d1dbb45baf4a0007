package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/chatbackup/internal/flagx"
)

// ValueFlags lists the flags owned by this package that consume a value.
var ValueFlags = []string{"-d", "-f", "-l", "-t", "-c", "-config"}

// parseFlags overlays cfg with command-line flags. Only the flags owned by
// this package are parsed, so subcommand names and foreign flags pass through.
// A malformed value panics, matching the JSON loader.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-f", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite DSN of the message store")
	fs.StringVar(&cfg.BackupPath, "f", cfg.BackupPath, "backup file path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.OperationTimeout.Seconds()), "operation timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OperationTimeout = time.Duration(*timeout) * time.Second
}
