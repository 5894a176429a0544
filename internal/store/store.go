// Package store executes the statements that touch a translation table.
//
// Every method runs on the bun.IDB it receives, so the same Store serves
// plain connections and transactions. No method opens a transaction of its
// own. Absent rows and zero affected rows are results, not errors.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/attributes"
	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

var ErrRowIncomplete = errors.New("store: translation row requires foreign key and locale")

// Target names the translation table and its key columns.
type Target struct {
	Table        string
	ForeignKey   string
	LocaleColumn string
}

// TargetFor returns the translation target of desc.
func TargetFor(desc *entity.Descriptor) Target {
	return Target{
		Table:        desc.TranslationTable,
		ForeignKey:   desc.ForeignKey,
		LocaleColumn: desc.LocaleColumn,
	}
}

// Row is one translation row without its key columns.
type Row struct {
	Locale string
	Values map[string]any
}

// Store is scoped to a single translation table.
type Store struct {
	target Target
	logger interfaces.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a store for target.
func New(target Target, opts ...Option) *Store {
	s := &Store{target: target, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Target returns the table the store is scoped to.
func (s *Store) Target() Target { return s.target }

// Exists reports whether a row exists for (fk, locale).
func (s *Store) Exists(ctx context.Context, db bun.IDB, fk any, locale string) (bool, error) {
	exists, err := s.scoped(db.NewSelect().TableExpr("?", bun.Ident(s.target.Table)), fk, locale).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("store: check %s translation: %w", s.target.Table, err)
	}
	return exists, nil
}

// Insert writes row as a new translation row. The row must carry the foreign
// key and the locale.
func (s *Store) Insert(ctx context.Context, db bun.IDB, row map[string]any) error {
	if row[s.target.ForeignKey] == nil || row[s.target.LocaleColumn] == nil || row[s.target.LocaleColumn] == "" {
		return ErrRowIncomplete
	}
	values := attributes.Clone(row)
	if _, err := db.NewInsert().Model(&values).TableExpr("?", bun.Ident(s.target.Table)).Exec(ctx); err != nil {
		return fmt.Errorf("store: insert %s translation: %w", s.target.Table, err)
	}
	s.logger.Debug("store.translation.inserted",
		"table", s.target.Table,
		"key", row[s.target.ForeignKey],
		"locale", row[s.target.LocaleColumn],
	)
	return nil
}

// Update writes values to the row at (fk, locale) and returns the affected
// row count. Key columns in values are ignored.
func (s *Store) Update(ctx context.Context, db bun.IDB, fk any, locale string, values map[string]any) (int64, error) {
	set := attributes.Except(values, s.target.ForeignKey, s.target.LocaleColumn)
	if len(set) == 0 {
		return 0, nil
	}
	q := db.NewUpdate().Model(&set).TableExpr("?", bun.Ident(s.target.Table))
	res, err := q.Where("? = ?", bun.Ident(s.target.ForeignKey), fk).
		Where("? = ?", bun.Ident(s.target.LocaleColumn), locale).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: update %s translation: %w", s.target.Table, err)
	}
	return affected(res), nil
}

// DeleteFor removes the row at (fk, locale).
func (s *Store) DeleteFor(ctx context.Context, db bun.IDB, fk any, locale string) (int64, error) {
	q := db.NewDelete().TableExpr("?", bun.Ident(s.target.Table)).
		Where("? = ?", bun.Ident(s.target.ForeignKey), fk).
		Where("? = ?", bun.Ident(s.target.LocaleColumn), locale)
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: delete %s translation: %w", s.target.Table, err)
	}
	return affected(res), nil
}

// DeleteAll removes every row of fk.
func (s *Store) DeleteAll(ctx context.Context, db bun.IDB, fk any) (int64, error) {
	res, err := db.NewDelete().TableExpr("?", bun.Ident(s.target.Table)).
		Where("? = ?", bun.Ident(s.target.ForeignKey), fk).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: delete %s translations: %w", s.target.Table, err)
	}
	return affected(res), nil
}

// DeleteWhereForeignKeyIn removes every row whose foreign key is in ids. The
// ids must be read before the base rows they refer to are deleted.
func (s *Store) DeleteWhereForeignKeyIn(ctx context.Context, db bun.IDB, ids []any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := db.NewDelete().TableExpr("?", bun.Ident(s.target.Table)).
		Where("? IN (?)", bun.Ident(s.target.ForeignKey), bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: bulk delete %s translations: %w", s.target.Table, err)
	}
	return affected(res), nil
}

// List returns every translation row of fk ordered by locale.
func (s *Store) List(ctx context.Context, db bun.IDB, fk any) ([]Row, error) {
	var raw []map[string]any
	err := db.NewSelect().TableExpr("?", bun.Ident(s.target.Table)).
		Where("? = ?", bun.Ident(s.target.ForeignKey), fk).
		OrderExpr("? ASC", bun.Ident(s.target.LocaleColumn)).
		Scan(ctx, &raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: list %s translations: %w", s.target.Table, err)
	}

	rows := make([]Row, 0, len(raw))
	for _, values := range raw {
		rows = append(rows, s.toRow(values))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Locale < rows[j].Locale })
	return rows, nil
}

// Find returns the row at (fk, locale), nil when absent.
func (s *Store) Find(ctx context.Context, db bun.IDB, fk any, locale string) (*Row, error) {
	var raw []map[string]any
	err := s.scoped(db.NewSelect().TableExpr("?", bun.Ident(s.target.Table)), fk, locale).
		Limit(1).
		Scan(ctx, &raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: find %s translation: %w", s.target.Table, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	row := s.toRow(raw[0])
	return &row, nil
}

func (s *Store) scoped(q *bun.SelectQuery, fk any, locale string) *bun.SelectQuery {
	return q.Where("? = ?", bun.Ident(s.target.ForeignKey), fk).
		Where("? = ?", bun.Ident(s.target.LocaleColumn), locale)
}

func (s *Store) toRow(values map[string]any) Row {
	attributes.Normalize(values)
	locale, _ := values[s.target.LocaleColumn].(string)
	return Row{
		Locale: locale,
		Values: attributes.Except(values, s.target.ForeignKey, s.target.LocaleColumn),
	}
}

func affected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
