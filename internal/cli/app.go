package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/chatbackup/internal/backup"
	"github.com/dmitrijs2005/chatbackup/internal/config"
	"github.com/dmitrijs2005/chatbackup/internal/logging"
	"github.com/dmitrijs2005/chatbackup/internal/repositories"
)

// ErrUsage is returned for a missing or unknown subcommand.
var ErrUsage = errors.New("usage: chatbackup [-c config] [-d dsn] [-f file] [-l level] [-t seconds] init|export|import")

type App struct {
	config   *config.Config
	db       *sql.DB
	repos    *repositories.Repositories
	log      logging.Logger
	exporter backup.Exporter
	importer backup.Importer
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := repositories.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	return newApp(c, db, logging.New(c.LogLevel, c.LogFormat), bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, db *sql.DB, log logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	repos := repositories.New()
	return &App{
		config:   c,
		db:       db,
		repos:    repos,
		log:      log,
		exporter: backup.NewExporter(db, repos, log),
		importer: backup.NewImporter(db, repos, log),
		reader:   reader,
		out:      out,
	}
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run executes the subcommand named by args[0] under the configured timeout.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.OperationTimeout)
	defer cancel()

	switch args[0] {
	case "init":
		return a.initAccount(ctx)
	case "export":
		return a.export(ctx)
	case "import":
		return a.importBackup(ctx)
	case "help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}
