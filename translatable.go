// Package translatable persists relational entities whose attributes are split
// between a base table and a per-locale translation table. Reads resolve the
// current locale with an optional fallback; writes route every attribute to
// the right table.
package translatable

import (
	"context"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/locales"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/logging/gologger"
	"github.com/goliatone/go-translatable/internal/runtimeconfig"
	"github.com/goliatone/go-translatable/internal/storage"
	core "github.com/goliatone/go-translatable/internal/translatable"
	"github.com/goliatone/go-translatable/internal/writer"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

type (
	Module            = core.Module
	Repository        = core.Repository
	Query             = core.Query
	Option            = core.Option
	Definition        = entity.Definition
	Entity            = entity.Entity
	Translations      = writer.Translations
	NotFoundError     = core.NotFoundError
	PartialWriteError = writer.PartialWriteError
	Locale            = locales.Locale
)

var (
	ErrAlreadyRegistered  = core.ErrAlreadyRegistered
	ErrNotRegistered      = core.ErrNotRegistered
	ErrTranslatableColumn = writer.ErrTranslatableColumn
	ErrNotPersisted       = writer.ErrNotPersisted
	ErrUnknownLocale      = locales.ErrUnknownLocale
)

var (
	WithLogger        = core.WithLogger
	WithInspector     = core.WithInspector
	WithLocaleCatalog = core.WithLocaleCatalog
	WithClock         = core.WithClock
	IsNotFound        = core.IsNotFound
)

const localesTable = "locales"

// New returns a module bound to an existing connection.
func New(db *bun.DB, cfg Config, opts ...Option) (*Module, error) {
	return core.NewModule(db, cfg, opts...)
}

// Open connects to cfg.Storage and returns a module over it. Logging follows
// cfg.Logging. When the database holds a locales table and cfg.Locales.Validate
// is set, writes are checked against it. Options given by the caller override
// the derived ones. Closing the connection is left to the caller through
// Module.DB.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	derived, err := derivedOptions(ctx, db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	module, err := core.NewModule(db, cfg, append(derived, opts...)...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return module, nil
}

func derivedOptions(ctx context.Context, db *bun.DB, cfg Config) ([]Option, error) {
	var opts []Option

	provider, err := LoggerProvider(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		opts = append(opts, core.WithLogger(provider))
	}

	if !cfg.Locales.Validate {
		return opts, nil
	}
	columns, err := storage.NewInspector(db).Columns(ctx, localesTable)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return opts, nil
	}
	catalog, err := NewCatalog(db, cfg.Cache, provider)
	if err != nil {
		return nil, err
	}
	return append(opts, core.WithLocaleCatalog(catalog)), nil
}

// LoggerProvider builds the provider selected by cfg.Provider. The "none"
// provider yields nil, which every component treats as the no-op logger.
func LoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// NewCatalog returns a locale catalog over the locales table of db, read
// through a cache when cfg.Enabled.
func NewCatalog(db *bun.DB, cfg CacheConfig, provider interfaces.LoggerProvider) (*locales.Catalog, error) {
	repo := locales.NewBunRepository(db)
	if cfg.Enabled {
		cacheCfg := repocache.DefaultConfig()
		if cfg.TTL > 0 {
			cacheCfg.TTL = cfg.TTL
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("translatable: locale cache: %w", err)
		}
		repo = locales.NewBunRepositoryWithCache(db, service, repocache.NewDefaultKeySerializer())
	}
	return locales.NewCatalog(repo, locales.WithLogger(logging.LocalesLogger(provider))), nil
}
