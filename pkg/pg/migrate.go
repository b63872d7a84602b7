package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrations is a set of goose SQL migrations stored in FS under Dir.
type Migrations struct {
	FS  fs.FS
	Dir string
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, m Migrations, log *slog.Logger) error {
	return runGoose(ctx, pool, cfg, m, log, "up")
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, pool *pgxpool.Pool, cfg Config, m Migrations, log *slog.Logger) error {
	return runGoose(ctx, pool, cfg, m, log, "down")
}

// MigrationStatus logs the state of every migration.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool, cfg Config, m Migrations, log *slog.Logger) error {
	return runGoose(ctx, pool, cfg, m, log, "status")
}

func runGoose(ctx context.Context, pool *pgxpool.Pool, cfg Config, m Migrations, log *slog.Logger, command string) error {
	if m.FS == nil {
		return errors.Join(ErrFailedToApplyMigrations, errors.New("no migrations filesystem"))
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	// goose needs database/sql; the handle shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(m.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log})
	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.RunContext(ctx, command, db, m.Dir); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}
