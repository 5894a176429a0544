// Package translatable wires the locale context, the attribute registry, the
// query composer and the write orchestrator into one repository per entity
// type.
package translatable

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/locales"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/metadata"
	"github.com/goliatone/go-translatable/internal/runtimeconfig"
	"github.com/goliatone/go-translatable/internal/storage"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Module owns the process-wide translatable state for one database: the
// global locale defaults, the attribute registry and the registered
// repositories.
type Module struct {
	db        *bun.DB
	cfg       runtimeconfig.Config
	state     *locale.State
	registry  *metadata.Registry
	inspector metadata.Inspector
	catalog   *locales.Catalog
	provider  interfaces.LoggerProvider
	logger    interfaces.Logger
	now       func() time.Time

	mu    sync.RWMutex
	repos map[string]*Repository
}

// Option mutates the module before it is finalised.
type Option func(*Module)

// WithLogger sets the logger provider used by every component.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithInspector overrides the schema inspector used to discover translatable
// attributes.
func WithInspector(inspector metadata.Inspector) Option {
	return func(m *Module) {
		m.inspector = inspector
	}
}

// WithLocaleCatalog enables locale checks on writes when the configuration
// asks for them.
func WithLocaleCatalog(catalog *locales.Catalog) Option {
	return func(m *Module) {
		m.catalog = catalog
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Module) {
		m.now = now
	}
}

// NewModule validates cfg and returns a module bound to db.
func NewModule(db *bun.DB, cfg runtimeconfig.Config, opts ...Option) (*Module, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		db:  db,
		cfg: cfg,
		state: locale.NewState(locale.Defaults{
			Locale:         cfg.DefaultLocale,
			FallbackLocale: cfg.FallbackLocale,
			WithFallback:   cfg.WithFallback,
			OnlyTranslated: cfg.OnlyTranslated,
		}),
		now:   time.Now,
		repos: make(map[string]*Repository),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.inspector == nil {
		m.inspector = storage.NewInspector(db)
	}
	m.logger = logging.RootLogger(m.provider)
	m.registry = metadata.NewRegistry(m.inspector, metadata.WithLogger(logging.MetadataLogger(m.provider)))
	return m, nil
}

// Register resolves the definition into a descriptor and returns the
// repository for it. Translatable attributes are read from the definition or
// discovered from the translation table.
func (m *Module) Register(ctx context.Context, def entity.Definition) (*Repository, error) {
	def = def.Normalize()
	if err := def.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.repos[def.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, def.Name)
	}

	naming := entity.Naming{TableSuffix: m.cfg.TableSuffix, LocaleColumn: m.cfg.LocaleColumn}
	names, err := m.registry.Resolve(ctx, metadata.Source{
		Table:        entity.TranslationTableFor(def.Table, naming),
		ForeignKey:   def.ForeignKey,
		LocaleColumn: naming.LocaleColumn,
		Reserved:     baseOwnedColumns(def),
		Explicit:     def.Translatable,
	})
	if err != nil {
		return nil, err
	}

	repo := newRepository(m, entity.NewDescriptor(def, naming, names))
	m.repos[def.Name] = repo
	m.logger.Info("translatable.registered",
		"entity", def.Name,
		"table", def.Table,
		"translation_table", repo.desc.TranslationTable,
		"attributes", len(names),
	)
	return repo, nil
}

func baseOwnedColumns(def entity.Definition) []string {
	reserved := []string{def.KeyColumn}
	for _, col := range []string{def.CreatedAtColumn, def.UpdatedAtColumn} {
		if col != "" {
			reserved = append(reserved, col)
		}
	}
	return reserved
}

// MustRegister is Register that panics on error.
func (m *Module) MustRegister(ctx context.Context, def entity.Definition) *Repository {
	repo, err := m.Register(ctx, def)
	if err != nil {
		panic(err)
	}
	return repo
}

// Repository returns the repository registered under name.
func (m *Module) Repository(name string) (*Repository, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	repo, ok := m.repos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return repo, nil
}

// Names returns the registered entity names, sorted.
func (m *Module) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.repos))
	for name := range m.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetLocale switches the global locale used by instances without an
// override.
func (m *Module) SetLocale(code string) error {
	if err := runtimeconfig.ValidateLocale(code); err != nil {
		return err
	}
	m.state.SetLocale(code)
	return nil
}

// Locale returns the global locale.
func (m *Module) Locale() string { return m.state.Load().Locale }

// SetFallbackLocale switches the global fallback locale. An empty code
// disables fallback globally.
func (m *Module) SetFallbackLocale(code string) error {
	if code != "" {
		if err := runtimeconfig.ValidateLocale(code); err != nil {
			return err
		}
	}
	m.state.SetFallbackLocale(code)
	return nil
}

// Registry exposes the translatable attribute registry.
func (m *Module) Registry() *metadata.Registry { return m.registry }

// State exposes the global locale state.
func (m *Module) State() *locale.State { return m.state }

// Config returns the module configuration.
func (m *Module) Config() runtimeconfig.Config { return m.cfg }

// DB returns the database handle.
func (m *Module) DB() *bun.DB { return m.db }

// Catalog returns the locale catalog, nil when none is configured.
func (m *Module) Catalog() *locales.Catalog { return m.catalog }

func (m *Module) validateLocale(ctx context.Context, code string) error {
	if m.catalog == nil || !m.cfg.Locales.Validate {
		return nil
	}
	return m.catalog.Validate(ctx, code)
}

// runWrite executes fn inside a transaction when transactions are enabled,
// otherwise directly on the database.
func (m *Module) runWrite(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if !m.cfg.Transactions {
		return fn(ctx, m.db)
	}
	return m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
