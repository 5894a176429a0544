package translatable

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/query"
)

// Query is a read under a locale scope. It starts from the type defaults and
// is owned by the caller; builders mutate and return the same value.
type Query struct {
	repo *Repository
	lc   *locale.Context
	spec query.Spec
	err  error
}

func newQuery(repo *Repository, lc *locale.Context) *Query {
	return &Query{repo: repo, lc: lc}
}

// Where filters on a base or translatable attribute. op is one of the
// comparison operators accepted by query.ParseOp.
func (q *Query) Where(column, op string, value any) *Query {
	parsed, err := query.ParseOp(op)
	if err != nil {
		if q.err == nil {
			q.err = err
		}
		return q
	}
	q.spec.Conditions = append(q.spec.Conditions, query.Condition{Column: column, Op: parsed, Value: value})
	return q
}

// WhereExpr adds a raw condition rendered as is.
func (q *Query) WhereExpr(expr string, args ...any) *Query {
	q.spec.Conditions = append(q.spec.Conditions, query.Condition{Expr: expr, Args: args})
	return q
}

// WhereKey restricts the read to the given keys.
func (q *Query) WhereKey(keys ...any) *Query {
	q.spec.Keys = append(q.spec.Keys, keys...)
	return q
}

func (q *Query) OrderBy(column string) *Query {
	q.spec.Orders = append(q.spec.Orders, query.Order{Column: column})
	return q
}

func (q *Query) OrderByDesc(column string) *Query {
	q.spec.Orders = append(q.spec.Orders, query.Order{Column: column, Desc: true})
	return q
}

func (q *Query) Limit(n int) *Query {
	q.spec.Limit = n
	return q
}

func (q *Query) Offset(n int) *Query {
	q.spec.Offset = n
	return q
}

// InLocale reads translations at code. Entities returned carry code as their
// locale.
func (q *Query) InLocale(code string) *Query {
	q.lc.Load(code)
	return q
}

// WithFallbackLocale sets the locale used for missing translations.
func (q *Query) WithFallbackLocale(code string) *Query {
	q.lc.SetFallbackLocale(code)
	return q
}

func (q *Query) WithFallback() *Query {
	q.lc.SetWithFallback(true)
	return q
}

func (q *Query) WithoutFallback() *Query {
	q.lc.SetWithFallback(false)
	return q
}

// OnlyTranslated drops rows without a translation at the locale, or at the
// fallback locale when fallback applies.
func (q *Query) OnlyTranslated() *Query {
	q.lc.SetOnlyTranslated(true)
	return q
}

func (q *Query) WithUntranslated() *Query {
	q.lc.SetOnlyTranslated(false)
	return q
}

// Scope returns the resolved locale scope the query will run under.
func (q *Query) Scope() locale.Scope { return q.lc.Scope() }

// Get runs the query.
func (q *Query) Get(ctx context.Context) ([]*entity.Entity, error) {
	if err := q.check(); err != nil {
		return nil, err
	}
	return q.repo.fetch(ctx, q.repo.module.db, q.spec, q.lc.Scope())
}

// First runs the query with a limit of one. It returns nil when nothing
// matches.
func (q *Query) First(ctx context.Context) (*entity.Entity, error) {
	if err := q.check(); err != nil {
		return nil, err
	}
	spec := q.spec
	spec.Limit = 1
	found, err := q.repo.fetch(ctx, q.repo.module.db, spec, q.lc.Scope())
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// Count returns the number of matching rows. Limit and offset are ignored.
func (q *Query) Count(ctx context.Context) (int, error) {
	if err := q.check(); err != nil {
		return 0, err
	}
	plan := query.Compose(q.repo.desc, q.spec, q.lc.Scope())
	count, err := plan.Count(q.repo.module.db).Count(ctx)
	if err != nil {
		return 0, wrapReadError(q.repo.desc.Table, err)
	}
	return count, nil
}

// Delete removes every matching entity with its translations and returns the
// number of base rows deleted.
func (q *Query) Delete(ctx context.Context) (int64, error) {
	if err := q.check(); err != nil {
		return 0, err
	}
	var deleted int64
	err := q.repo.module.runWrite(ctx, func(ctx context.Context, db bun.IDB) error {
		ids, err := q.keys(ctx, db)
		if err != nil {
			return err
		}
		deleted, err = q.repo.writer.DeleteKeys(ctx, db, ids)
		return err
	})
	return deleted, err
}

// Update applies values to every matching entity. Translatable values are
// written at the query locale, inserting the row where missing. The result
// sums rows affected across both tables.
func (q *Query) Update(ctx context.Context, values map[string]any) (int64, error) {
	if err := q.check(); err != nil {
		return 0, err
	}
	scope := q.lc.Scope()
	_, translatable := q.repo.desc.Split(values)
	if len(translatable) > 0 {
		if err := q.repo.module.validateLocale(ctx, scope.Locale); err != nil {
			return 0, err
		}
	}
	var affected int64
	err := q.repo.module.runWrite(ctx, func(ctx context.Context, db bun.IDB) error {
		ids, err := q.keys(ctx, db)
		if err != nil {
			return err
		}
		affected, err = q.repo.writer.UpdateKeys(ctx, db, ids, scope.Locale, values)
		return err
	})
	return affected, err
}

func (q *Query) keys(ctx context.Context, db bun.IDB) ([]any, error) {
	plan := query.Compose(q.repo.desc, q.spec, q.lc.Scope())
	var rows []map[string]any
	if err := plan.KeySelect(db).Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, wrapReadError(q.repo.desc.Table, err)
	}
	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row[q.repo.desc.KeyColumn])
	}
	return ids, nil
}

func (q *Query) check() error {
	if q.err != nil {
		return q.err
	}
	return q.spec.Validate()
}
