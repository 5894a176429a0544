// Package writer splits entity writes between the base table and the
// translation table.
//
// The orchestrator never opens transactions. Callers pass a bun.Tx when a
// composite write must be atomic; otherwise each statement commits on its own
// and failures after a committed statement surface as *PartialWriteError.
package writer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"

	"github.com/goliatone/go-translatable/internal/attributes"
	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/store"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Orchestrator writes entities of one type.
type Orchestrator struct {
	desc    *entity.Descriptor
	store   *store.Store
	logger  interfaces.Logger
	now     func() time.Time
	partial bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPartialWrites reports failures after committed statements as
// *PartialWriteError. Enable it when writes do not run inside a transaction.
func WithPartialWrites(enabled bool) Option {
	return func(o *Orchestrator) {
		o.partial = enabled
	}
}

// New returns an orchestrator for desc writing translations through st.
func New(desc *entity.Descriptor, st *store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		desc:   desc,
		store:  st,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store exposes the translation store used by the orchestrator.
func (o *Orchestrator) Store() *store.Store { return o.store }

// Insert stores a new entity: the base row first, then one translation row at
// the entity locale when translatable attributes are present. The key is
// taken from the entity, the key generator or the database, in that order.
func (o *Orchestrator) Insert(ctx context.Context, db bun.IDB, e *entity.Entity) (any, error) {
	if e.Key() == nil && o.desc.KeyGenerator != nil {
		e.SetKey(o.desc.KeyGenerator())
	}
	now := o.timestamp()
	o.stampIfMissing(e, o.desc.CreatedAtColumn, now)
	o.stampIfMissing(e, o.desc.UpdatedAtColumn, now)

	base, translatable := o.desc.Split(e.Attributes())
	key, err := o.insertBase(ctx, db, base)
	if err != nil {
		return nil, err
	}
	e.SetKey(key)

	if len(translatable) > 0 {
		row := o.translationRow(key, e.Locale(), translatable)
		if err := o.store.Insert(ctx, db, row); err != nil {
			return nil, o.fail("insert", key, []string{o.desc.Table}, err)
		}
	}

	e.MarkPersisted()
	logging.WithEntityContext(o.logger, o.desc.Table, key, e.Locale()).Debug("writer.insert",
		"translated", len(translatable) > 0,
	)
	return key, nil
}

// Update writes values for a persisted entity at its current locale. Base
// attributes update the unjoined base table; translatable attributes update
// the translation row or insert it when missing. The result is the sum of
// affected rows over both tables.
func (o *Orchestrator) Update(ctx context.Context, db bun.IDB, e *entity.Entity, values map[string]any) (int64, error) {
	if !e.Exists() {
		return 0, notPersisted("update")
	}
	values = attributes.Except(values, o.desc.KeyColumn)
	if len(values) == 0 {
		return 0, nil
	}
	if col := o.desc.UpdatedAtColumn; col != "" {
		if _, ok := values[col]; !ok {
			values[col] = o.timestamp()
		}
	}
	e.Fill(values)

	key := e.Key()
	base, translatable := o.desc.Split(values)

	var total int64
	var committed []string
	if len(base) > 0 {
		n, err := o.updateBase(ctx, db, []any{key}, base)
		if err != nil {
			return 0, err
		}
		total += n
		committed = append(committed, o.desc.Table)
	}

	if len(translatable) > 0 {
		n, err := o.upsertTranslation(ctx, db, key, e.Locale(), translatable, e.TranslatableValues())
		if err != nil {
			return total, o.fail("update", key, committed, err)
		}
		total += n
	}

	synced := make([]string, 0, len(values))
	for name := range values {
		synced = append(synced, name)
	}
	e.SyncKeys(synced...)
	e.LocaleContext().ResetChanged()

	logging.WithEntityContext(o.logger, o.desc.Table, key, e.Locale()).Debug("writer.update",
		"affected", total,
	)
	return total, nil
}

// Save inserts a new entity or updates the dirty attributes of a persisted
// one. The original snapshot is synced on success.
func (o *Orchestrator) Save(ctx context.Context, db bun.IDB, e *entity.Entity) error {
	if !e.Exists() {
		_, err := o.Insert(ctx, db, e)
		return err
	}
	dirty := e.Dirty()
	if len(dirty) > 0 {
		if _, err := o.Update(ctx, db, e, dirty); err != nil {
			return err
		}
	}
	e.SyncOriginal()
	return nil
}

// Delete removes the translation rows and then the base row of e.
func (o *Orchestrator) Delete(ctx context.Context, db bun.IDB, e *entity.Entity) (int64, error) {
	if !e.Exists() {
		return 0, notPersisted("delete")
	}
	n, err := o.DeleteKeys(ctx, db, []any{e.Key()})
	if err != nil {
		return 0, err
	}
	e.MarkDeleted()
	return n, nil
}

// DeleteKeys removes the translations and base rows of ids and returns the
// number of base rows deleted. ids must be materialised before the call.
func (o *Orchestrator) DeleteKeys(ctx context.Context, db bun.IDB, ids []any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := o.store.DeleteWhereForeignKeyIn(ctx, db, ids); err != nil {
		return 0, err
	}
	res, err := db.NewDelete().TableExpr("?", bun.Ident(o.desc.Table)).
		Where("? IN (?)", bun.Ident(o.desc.KeyColumn), bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, o.fail("delete", ids, []string{o.desc.TranslationTable},
			fmt.Errorf("writer: delete %s rows: %w", o.desc.Table, err))
	}
	return rowsAffected(res), nil
}

// UpdateKeys applies values to every entity in ids: base attributes in one
// statement, translatable attributes as an update-or-insert per key at
// locale.
func (o *Orchestrator) UpdateKeys(ctx context.Context, db bun.IDB, ids []any, locale string, values map[string]any) (int64, error) {
	values = attributes.Except(values, o.desc.KeyColumn)
	if len(ids) == 0 || len(values) == 0 {
		return 0, nil
	}
	if col := o.desc.UpdatedAtColumn; col != "" {
		if _, ok := values[col]; !ok {
			values[col] = o.timestamp()
		}
	}
	base, translatable := o.desc.Split(values)

	var total int64
	var committed []string
	if len(base) > 0 {
		n, err := o.updateBase(ctx, db, ids, base)
		if err != nil {
			return 0, err
		}
		total += n
		committed = append(committed, o.desc.Table)
	}
	for _, id := range ids {
		if len(translatable) == 0 {
			break
		}
		n, err := o.upsertTranslation(ctx, db, id, locale, translatable, translatable)
		if err != nil {
			return total, o.fail("update", ids, committed, err)
		}
		total += n
	}
	return total, nil
}

// Increment adds amount to a numeric base column of e, in the database and in
// memory. Translatable columns are rejected.
func (o *Orchestrator) Increment(ctx context.Context, db bun.IDB, e *entity.Entity, column string, amount int64) (int64, error) {
	if o.desc.IsTranslatable(column) {
		return 0, translatableColumn(column)
	}
	if !e.Exists() {
		return 0, notPersisted("increment")
	}

	q := db.NewUpdate().TableExpr("?", bun.Ident(o.desc.Table)).
		Set("? = ? + ?", bun.Ident(column), bun.Ident(column), amount)
	synced := []string{column}
	if col := o.desc.UpdatedAtColumn; col != "" {
		now := o.timestamp()
		q = q.Set("? = ?", bun.Ident(col), now)
		e.Set(col, now)
		synced = append(synced, col)
	}
	res, err := q.Where("? = ?", bun.Ident(o.desc.KeyColumn), e.Key()).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("writer: increment %s.%s: %w", o.desc.Table, column, err)
	}

	e.Set(column, addNumber(e.Get(column), amount))
	e.SyncKeys(synced...)
	return rowsAffected(res), nil
}

func (o *Orchestrator) insertBase(ctx context.Context, db bun.IDB, base map[string]any) (any, error) {
	table := bun.Ident(o.desc.Table)
	if key := base[o.desc.KeyColumn]; key != nil {
		if _, err := db.NewInsert().Model(&base).TableExpr("?", table).Exec(ctx); err != nil {
			return nil, fmt.Errorf("writer: insert %s row: %w", o.desc.Table, err)
		}
		return key, nil
	}
	delete(base, o.desc.KeyColumn)

	returning := db.Dialect().Features().Has(feature.InsertReturning)
	if len(base) == 0 {
		return o.insertDefaults(ctx, db, returning)
	}

	q := db.NewInsert().Model(&base).TableExpr("?", table)
	if returning {
		var id int64
		if err := q.Returning("?", bun.Ident(o.desc.KeyColumn)).Scan(ctx, &id); err != nil {
			return nil, fmt.Errorf("writer: insert %s row: %w", o.desc.Table, err)
		}
		return id, nil
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("writer: insert %s row: %w", o.desc.Table, err)
	}
	return lastInsertID(o.desc.Table, res)
}

func (o *Orchestrator) insertDefaults(ctx context.Context, db bun.IDB, returning bool) (any, error) {
	stmt := "INSERT INTO ? DEFAULT VALUES"
	if db.Dialect().Name() == dialect.MySQL {
		stmt = "INSERT INTO ? () VALUES ()"
	}
	if returning {
		var id int64
		err := db.NewRaw(stmt+" RETURNING ?", bun.Ident(o.desc.Table), bun.Ident(o.desc.KeyColumn)).Scan(ctx, &id)
		if err != nil {
			return nil, fmt.Errorf("writer: insert %s row: %w", o.desc.Table, err)
		}
		return id, nil
	}
	res, err := db.ExecContext(ctx, stmt, bun.Ident(o.desc.Table))
	if err != nil {
		return nil, fmt.Errorf("writer: insert %s row: %w", o.desc.Table, err)
	}
	return lastInsertID(o.desc.Table, res)
}

func (o *Orchestrator) updateBase(ctx context.Context, db bun.IDB, ids []any, values map[string]any) (int64, error) {
	set := attributes.Clone(values)
	res, err := db.NewUpdate().Model(&set).TableExpr("?", bun.Ident(o.desc.Table)).
		Where("? IN (?)", bun.Ident(o.desc.KeyColumn), bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("writer: update %s rows: %w", o.desc.Table, err)
	}
	return rowsAffected(res), nil
}

// upsertTranslation updates the row at (key, locale) with changes, or inserts
// full when the row does not exist yet.
func (o *Orchestrator) upsertTranslation(ctx context.Context, db bun.IDB, key any, locale string, changes, full map[string]any) (int64, error) {
	exists, err := o.store.Exists(ctx, db, key, locale)
	if err != nil {
		return 0, err
	}
	if exists {
		return o.store.Update(ctx, db, key, locale, changes)
	}
	row := o.translationRow(key, locale, attributes.Only(full, o.desc.Translatable))
	for name, value := range changes {
		row[name] = value
	}
	if err := o.store.Insert(ctx, db, row); err != nil {
		return 0, err
	}
	return 1, nil
}

func (o *Orchestrator) translationRow(key any, locale string, values map[string]any) map[string]any {
	row := attributes.Clone(values)
	row[o.desc.ForeignKey] = key
	row[o.desc.LocaleColumn] = locale
	return row
}

func (o *Orchestrator) fail(operation string, key any, committed []string, err error) error {
	if !o.partial || len(committed) == 0 {
		return err
	}
	o.logger.Warn("writer.partial_write",
		"operation", operation,
		"key", key,
		"committed", committed,
		"error", err,
	)
	return &PartialWriteError{Operation: operation, Key: key, Committed: committed, Err: err}
}

func (o *Orchestrator) timestamp() time.Time {
	return o.now().UTC()
}

func (o *Orchestrator) stampIfMissing(e *entity.Entity, column string, now time.Time) {
	if column == "" || e.Get(column) != nil {
		return
	}
	e.Set(column, now)
}

func lastInsertID(table string, res sql.Result) (any, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("writer: read %s key: %w", table, err)
	}
	return id, nil
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func addNumber(current any, amount int64) any {
	switch v := current.(type) {
	case int64:
		return v + amount
	case int:
		return int64(v) + amount
	case int32:
		return int64(v) + amount
	case float64:
		return v + float64(amount)
	case float32:
		return float64(v) + float64(amount)
	default:
		return amount
	}
}
