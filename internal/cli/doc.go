// Package cli implements the chatbackup command line: one-shot subcommands
// that set up the local account and export or import a backup file.
//
// Commands:
//   - init: store the account service id and master key
//   - export: write the message store to the configured backup file
//   - import: restore the configured backup file into the message store
//
// Secrets are read from the terminal without echo.
package cli
