// Package migrations holds the schema of the locale catalog and of the
// articles demo, per dialect, applied with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*/*.sql
var files embed.FS

var ErrDialectUnsupported = errors.New("migrations: dialect has no migrations")

// goose keeps its base filesystem and dialect in package state.
var gooseMu sync.Mutex

// Dir returns the migration directory and goose dialect for a storage driver
// or dialect name.
func Dir(dialect string) (dir, gooseDialect string, err error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "sqlite", "sqlite3":
		return "sql/sqlite", "sqlite3", nil
	case "postgres", "pgx", "pg":
		return "sql/postgres", "postgres", nil
	case "mysql":
		return "sql/mysql", "mysql", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrDialectUnsupported, dialect)
	}
}

// Up applies every pending migration for dialect.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	dir, gooseDialect, err := Dir(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down rolls back every applied migration for dialect.
func Down(ctx context.Context, db *sql.DB, dialect string) error {
	dir, gooseDialect, err := Dir(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}
	if err := goose.ResetContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations: reset: %w", err)
	}
	return nil
}
