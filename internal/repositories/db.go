// Package repositories wires the SQLite repositories of the local message
// store and applies its migrations.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/migrations"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/attachments"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/interactions"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/metadata"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/payments"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/reactions"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/recipients"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/threads"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Metadata     metadata.Repository
	Recipients   recipients.Repository
	Threads      threads.Repository
	Interactions interactions.Repository
	Payments     payments.Repository
	Reactions    reactions.Repository
	Attachments  attachments.Repository
}

func New() *Repositories {
	return &Repositories{
		Metadata:     metadata.NewSQLiteRepository(),
		Recipients:   recipients.NewSQLiteRepository(),
		Threads:      threads.NewSQLiteRepository(),
		Interactions: interactions.NewSQLiteRepository(),
		Payments:     payments.NewSQLiteRepository(),
		Reactions:    reactions.NewSQLiteRepository(),
		Attachments:  attachments.NewSQLiteRepository(),
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// OpenDatabase opens the SQLite store at dsn and migrates it. A single
// connection is used so that in-memory databases are shared by every
// transaction.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
