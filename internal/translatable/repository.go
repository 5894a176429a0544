package translatable

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/query"
	"github.com/goliatone/go-translatable/internal/store"
	"github.com/goliatone/go-translatable/internal/writer"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Repository reads and writes entities of one registered type.
type Repository struct {
	module *Module
	desc   *entity.Descriptor
	store  *store.Store
	writer *writer.Orchestrator
	logger interfaces.Logger
}

func newRepository(m *Module, desc *entity.Descriptor) *Repository {
	st := store.New(store.TargetFor(desc), store.WithLogger(logging.StoreLogger(m.provider)))
	return &Repository{
		module: m,
		desc:   desc,
		store:  st,
		writer: writer.New(desc, st,
			writer.WithLogger(logging.WriterLogger(m.provider)),
			writer.WithClock(m.now),
			writer.WithPartialWrites(!m.cfg.Transactions),
		),
		logger: logging.QueryLogger(m.provider),
	}
}

// Descriptor returns the resolved entity type.
func (r *Repository) Descriptor() *entity.Descriptor { return r.desc }

// New returns a non persisted entity in the default locale.
func (r *Repository) New(attrs map[string]any) *entity.Entity {
	return entity.New(r.desc, r.newContext(), attrs)
}

// NewInLocale returns a non persisted entity that will be written at code.
func (r *Repository) NewInLocale(code string, attrs map[string]any) *entity.Entity {
	e := r.New(attrs)
	e.SetLocale(code)
	return e
}

// Query starts a read scoped to the type defaults.
func (r *Repository) Query() *Query {
	return newQuery(r, r.newContext())
}

// Find loads the entity with key in the default scope. A missing base row,
// or one filtered out by the only-translated rule, yields *NotFoundError.
func (r *Repository) Find(ctx context.Context, key any) (*entity.Entity, error) {
	return r.findIn(ctx, r.Query(), key)
}

// FindInLocale loads the entity with key at code.
func (r *Repository) FindInLocale(ctx context.Context, key any, code string) (*entity.Entity, error) {
	return r.findIn(ctx, r.Query().InLocale(code), key)
}

func (r *Repository) findIn(ctx context.Context, q *Query, key any) (*entity.Entity, error) {
	e, err := q.WhereKey(key).First(ctx)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &NotFoundError{Resource: r.desc.Name, Key: key}
	}
	return e, nil
}

// First returns the first entity in the default scope, nil when there is none.
func (r *Repository) First(ctx context.Context) (*entity.Entity, error) {
	return r.Query().First(ctx)
}

// All returns every entity in the default scope.
func (r *Repository) All(ctx context.Context) ([]*entity.Entity, error) {
	return r.Query().Get(ctx)
}

// Fresh reloads e from the database under its own locale scope, fallback
// included. It returns nil for entities that are not persisted.
func (r *Repository) Fresh(ctx context.Context, e *entity.Entity) (*entity.Entity, error) {
	if !e.Exists() {
		return nil, nil
	}
	return newQuery(r, e.LocaleContext().Clone()).WhereKey(e.Key()).First(ctx)
}

// Create stores a new entity built from attrs at the default locale, then
// the extra translations, in one write.
func (r *Repository) Create(ctx context.Context, attrs map[string]any, translations writer.Translations) (*entity.Entity, error) {
	e := r.New(attrs)
	return e, r.create(ctx, e, translations)
}

// CreateInLocale is Create with the entity written at code.
func (r *Repository) CreateInLocale(ctx context.Context, code string, attrs map[string]any, translations writer.Translations) (*entity.Entity, error) {
	e := r.NewInLocale(code, attrs)
	return e, r.create(ctx, e, translations)
}

func (r *Repository) create(ctx context.Context, e *entity.Entity, translations writer.Translations) error {
	if err := r.checkLocales(ctx, e, translations); err != nil {
		return err
	}
	return r.write(ctx, e, func(ctx context.Context, db bun.IDB) error {
		if err := r.writer.Save(ctx, db, e); err != nil {
			return err
		}
		if len(translations) == 0 {
			return nil
		}
		return r.writer.SaveTranslations(ctx, db, e, translations, r.loader())
	})
}

// Save inserts or updates e at its current locale.
func (r *Repository) Save(ctx context.Context, e *entity.Entity) error {
	if err := r.checkLocales(ctx, e, nil); err != nil {
		return err
	}
	return r.write(ctx, e, func(ctx context.Context, db bun.IDB) error {
		return r.writer.Save(ctx, db, e)
	})
}

// SaveTranslations writes several locales of e. A nil value deletes that
// locale. e keeps its locale.
func (r *Repository) SaveTranslations(ctx context.Context, e *entity.Entity, translations writer.Translations) error {
	if err := r.checkLocales(ctx, nil, translations); err != nil {
		return err
	}
	return r.write(ctx, e, func(ctx context.Context, db bun.IDB) error {
		return r.writer.SaveTranslations(ctx, db, e, translations, r.loader())
	})
}

// SaveTranslation writes a single locale of e.
func (r *Repository) SaveTranslation(ctx context.Context, e *entity.Entity, code string, values map[string]any) error {
	return r.SaveTranslations(ctx, e, writer.Translations{code: values})
}

// Delete removes e and all of its translations.
func (r *Repository) Delete(ctx context.Context, e *entity.Entity) error {
	return r.write(ctx, e, func(ctx context.Context, db bun.IDB) error {
		_, err := r.writer.Delete(ctx, db, e)
		return err
	})
}

// Translations lists every translation row of e.
func (r *Repository) Translations(ctx context.Context, e *entity.Entity) ([]store.Row, error) {
	if !e.Exists() {
		return []store.Row{}, nil
	}
	return r.store.List(ctx, r.module.db, e.Key())
}

// Translate returns the translation of e at code, retrying once at the
// fallback locale when fallback applies. An empty code means the current
// locale. Nil means no translation was found.
func (r *Repository) Translate(ctx context.Context, e *entity.Entity, code string) (*store.Row, error) {
	if !e.Exists() {
		return nil, nil
	}
	lc := e.LocaleContext()
	if code == "" {
		code = lc.Locale()
	}
	row, err := r.store.Find(ctx, r.module.db, e.Key(), code)
	if err != nil || row != nil {
		return row, err
	}
	if !lc.ShouldFallback(code) {
		return nil, nil
	}
	return r.store.Find(ctx, r.module.db, e.Key(), lc.FallbackLocale())
}

// TranslateOrNew is Translate returning an empty row at code instead of nil.
func (r *Repository) TranslateOrNew(ctx context.Context, e *entity.Entity, code string) (*store.Row, error) {
	row, err := r.Translate(ctx, e, code)
	if err != nil || row != nil {
		return row, err
	}
	if code == "" {
		code = e.Locale()
	}
	values := make(map[string]any, r.desc.Translatable.Len())
	for _, name := range r.desc.Translatable.Names() {
		values[name] = nil
	}
	return &store.Row{Locale: code, Values: values}, nil
}

// Replicate returns a non persisted copy of e without its key, timestamps
// and translatable attributes.
func (r *Repository) Replicate(e *entity.Entity, except ...string) *entity.Entity {
	return e.Replicate(except...)
}

// CopyTranslations writes every translation of src onto dst.
func (r *Repository) CopyTranslations(ctx context.Context, dst, src *entity.Entity) error {
	return r.write(ctx, dst, func(ctx context.Context, db bun.IDB) error {
		return r.writer.CopyTranslations(ctx, db, dst, src, r.loader())
	})
}

// Increment adds amount to a base column of e.
func (r *Repository) Increment(ctx context.Context, e *entity.Entity, column string, amount int64) error {
	return r.write(ctx, e, func(ctx context.Context, db bun.IDB) error {
		_, err := r.writer.Increment(ctx, db, e, column, amount)
		return err
	})
}

// Decrement subtracts amount from a base column of e.
func (r *Repository) Decrement(ctx context.Context, e *entity.Entity, column string, amount int64) error {
	return r.Increment(ctx, e, column, -amount)
}

func (r *Repository) newContext() *locale.Context {
	return locale.NewContext(r.module.state, r.desc.Defaults)
}

// write runs fn on the module write path. Inside a transaction a failure
// also reverts the in-memory changes made to e.
func (r *Repository) write(ctx context.Context, e *entity.Entity, fn func(ctx context.Context, db bun.IDB) error) error {
	if !r.module.cfg.Transactions || e == nil {
		return r.module.runWrite(ctx, fn)
	}
	restore := e.Checkpoint()
	if err := r.module.runWrite(ctx, fn); err != nil {
		restore()
		return err
	}
	return nil
}

// loader reads an entity at a locale with fallback and the only-translated
// filter disabled, for writes to a locale that may not have a row yet.
func (r *Repository) loader() writer.Loader {
	return func(ctx context.Context, db bun.IDB, key any, code string) (*entity.Entity, error) {
		found, err := r.fetch(ctx, db, query.Spec{Keys: []any{key}, Limit: 1}, locale.Scope{Locale: code})
		if err != nil || len(found) == 0 {
			return nil, err
		}
		return found[0], nil
	}
}

func (r *Repository) fetch(ctx context.Context, db bun.IDB, spec query.Spec, scope locale.Scope) ([]*entity.Entity, error) {
	plan := query.Compose(r.desc, spec, scope)
	var rows []map[string]any
	if err := plan.Select(db).Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, wrapReadError(r.desc.Table, err)
	}
	r.logger.Trace("query.select",
		"table", r.desc.Table,
		"locale", scope.Locale,
		"joins", len(plan.Joins),
		"rows", len(rows),
	)
	return query.Hydrate(r.desc, r.module.state, scope, rows), nil
}

func (r *Repository) checkLocales(ctx context.Context, e *entity.Entity, translations writer.Translations) error {
	if e != nil && r.desc.HasTranslations() {
		if err := r.module.validateLocale(ctx, e.Locale()); err != nil {
			return err
		}
	}
	for _, code := range translations.Locales() {
		if translations[code] == nil {
			continue
		}
		if err := r.module.validateLocale(ctx, code); err != nil {
			return err
		}
	}
	return nil
}
