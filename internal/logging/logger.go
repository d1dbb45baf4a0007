// Package logging defines the structured-logging interface used by the backup
// driver and the CLI. Converters never log; they return diagnostics that the
// driver reports through this interface.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn(ctx, "chat item dropped", "chat_item_id", id, "kind", kind)
type Logger interface {
	// Debug logs verbose diagnostics, typically per frame.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a recoverable problem, e.g. a frame that restored partially.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
