// Package metadata keeps the process-wide list of translatable attributes per
// translation table.
//
// Entries are written once, at entity registration, and never invalidated: a
// schema change made after the first registration is not observed until the
// process restarts.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	codeTableMissing      = "TRANSLATION_TABLE_MISSING"
	codeForeignKeyMissing = "FOREIGN_KEY_COLUMN_MISSING"
	codeLocaleMissing     = "LOCALE_COLUMN_MISSING"
	codeReservedAttribute = "RESERVED_TRANSLATABLE_ATTRIBUTE"
)

var (
	ErrTranslationTableMissing = errors.New("metadata: translation table not found")
	ErrForeignKeyColumnMissing = errors.New("metadata: foreign key column missing from translation table")
	ErrLocaleColumnMissing     = errors.New("metadata: locale column missing from translation table")
	ErrInspectorRequired       = errors.New("metadata: schema inspector required to discover translatable attributes")
	ErrReservedAttribute       = errors.New("metadata: attribute is owned by the base table and cannot be translatable")
)

// Inspector lists the columns of a table in declaration order. An unknown
// table yields no columns and no error.
type Inspector interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// InspectorFunc adapts a function to Inspector.
type InspectorFunc func(ctx context.Context, table string) ([]string, error)

// Columns implements Inspector.
func (f InspectorFunc) Columns(ctx context.Context, table string) ([]string, error) {
	return f(ctx, table)
}

// Source describes the translation table of one entity type.
type Source struct {
	Table        string
	ForeignKey   string
	LocaleColumn string
	// Reserved columns belong to the base table: the primary key and the
	// timestamp columns. Introspection skips them and explicit names may not
	// list them.
	Reserved []string
	// Explicit names skip introspection when non empty.
	Explicit []string
}

// Registry caches translatable attribute names by translation table.
type Registry struct {
	mu        sync.Mutex
	tables    map[string][]string
	inspector Inspector
	logger    interfaces.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns an empty registry. inspector may be nil when every
// entity type declares its attributes explicitly.
func NewRegistry(inspector Inspector, opts ...Option) *Registry {
	r := &Registry{
		tables:    make(map[string][]string),
		inspector: inspector,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the translatable attributes of src.Table, populating the
// cache on first use from src.Explicit or from the schema.
func (r *Registry) Resolve(ctx context.Context, src Source) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.tables[src.Table]; ok {
		return slices.Clone(cached), nil
	}

	origin := "explicit"
	names := trimNames(src.Explicit)
	for _, name := range names {
		if slices.Contains(src.Reserved, name) {
			return nil, configError(ErrReservedAttribute, src.Table, codeReservedAttribute).
				WithMetadata(map[string]any{"attribute": name})
		}
	}
	if len(names) == 0 {
		discovered, err := r.introspect(ctx, src)
		if err != nil {
			return nil, err
		}
		names = discovered
		origin = "schema"
	}

	r.tables[src.Table] = names
	r.logger.Info("metadata.translatable.registered",
		"table", src.Table,
		"origin", origin,
		"attributes", strings.Join(names, ","),
	)
	return slices.Clone(names), nil
}

// Names returns the cached names for table.
func (r *Registry) Names(table string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names, ok := r.tables[table]
	return slices.Clone(names), ok
}

// Tables returns the cached table names, sorted.
func (r *Registry) Tables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.tables))
	for table := range r.tables {
		out = append(out, table)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) introspect(ctx context.Context, src Source) ([]string, error) {
	if r.inspector == nil {
		return nil, configError(ErrInspectorRequired, src.Table, codeTableMissing)
	}
	columns, err := r.inspector.Columns(ctx, src.Table)
	if err != nil {
		return nil, fmt.Errorf("metadata: list columns of %s: %w", src.Table, err)
	}
	if len(columns) == 0 {
		return nil, configError(ErrTranslationTableMissing, src.Table, codeTableMissing)
	}
	if !slices.Contains(columns, src.ForeignKey) {
		return nil, configError(ErrForeignKeyColumnMissing, src.Table, codeForeignKeyMissing)
	}
	if !slices.Contains(columns, src.LocaleColumn) {
		return nil, configError(ErrLocaleColumnMissing, src.Table, codeLocaleMissing)
	}

	names := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == src.ForeignKey || column == src.LocaleColumn || slices.Contains(src.Reserved, column) {
			continue
		}
		names = append(names, column)
	}
	return names, nil
}

func configError(sentinel error, table, code string) *goerrors.Error {
	return goerrors.Wrap(sentinel, goerrors.CategoryValidation, fmt.Sprintf("translation table %q is not usable", table)).
		WithTextCode(code).
		WithMetadata(map[string]any{"table": table})
}

func trimNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
