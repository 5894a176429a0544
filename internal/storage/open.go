// Package storage opens bun connections for the supported drivers and
// inspects table columns per dialect.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-translatable/internal/runtimeconfig"
)

var (
	ErrDriverUnknown = errors.New("storage: driver is not supported")
	ErrDSNRequired   = errors.New("storage: dsn is required")
)

type driver struct {
	sqlName    string
	family     string
	newDialect func() schema.Dialect
}

var drivers = map[string]driver{
	"sqlite3":  {sqlName: "sqlite3", family: "sqlite", newDialect: func() schema.Dialect { return sqlitedialect.New() }},
	"sqlite":   {sqlName: "sqlite", family: "sqlite", newDialect: func() schema.Dialect { return sqlitedialect.New() }},
	"postgres": {sqlName: "pgx", family: "postgres", newDialect: func() schema.Dialect { return pgdialect.New() }},
	"pgx":      {sqlName: "pgx", family: "postgres", newDialect: func() schema.Dialect { return pgdialect.New() }},
	"mysql":    {sqlName: "mysql", family: "mysql", newDialect: func() schema.Dialect { return mysqldialect.New() }},
}

// Drivers lists the accepted driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Family returns the dialect family of a driver name: sqlite, postgres or
// mysql. Migrations are organised by family.
func Family(driverName string) (string, error) {
	d, ok := drivers[strings.ToLower(strings.TrimSpace(driverName))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrDriverUnknown, driverName)
	}
	return d.family, nil
}

// Open connects to the configured database and verifies the connection.
// SQLite connections default to a single open connection so in-memory
// databases are shared by every query.
func Open(ctx context.Context, cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Driver))
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDriverUnknown, cfg.Driver)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrDSNRequired
	}

	sqlDB, err := sql.Open(d.sqlName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", name, err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 && d.family == "sqlite" {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	db := bun.NewDB(sqlDB, d.newDialect())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", name, err)
	}
	return db, nil
}
