package writer

import (
	"context"
	"sort"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/attributes"
	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/logging"
)

// Translations maps a locale code to the attributes to store at that locale.
// A nil map deletes the translation row of the locale.
type Translations map[string]map[string]any

// Locales returns the codes of t, sorted.
func (t Translations) Locales() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Loader reads the entity with key at locale without fallback and without
// the only-translated filter, so it is found even when the locale has no row
// yet. It returns nil when the base row does not exist.
type Loader func(ctx context.Context, db bun.IDB, key any, locale string) (*entity.Entity, error)

// SaveTranslations writes several locales of e in one call. Locales are
// processed in sorted order. The current locale is written through e itself;
// other locales go through a separate instance obtained from load, so e keeps
// its attributes and its locale.
func (o *Orchestrator) SaveTranslations(ctx context.Context, db bun.IDB, e *entity.Entity, translations Translations, load Loader) error {
	if !e.Exists() {
		return notPersisted("save translations")
	}

	lc := e.LocaleContext()
	saved := lc.Snapshot()
	defer lc.Restore(saved)

	current := lc.Locale()
	key := e.Key()
	committed := make([]string, 0, len(translations))

	for _, code := range translations.Locales() {
		values := translations[code]
		if values == nil {
			n, err := o.store.DeleteFor(ctx, db, key, code)
			if err != nil {
				return o.fail("save_translations", key, committed, err)
			}
			if n > 0 && code == current {
				e.ClearTranslatable()
				e.SyncKeys(o.desc.Translatable.Names()...)
			}
			committed = append(committed, code)
			continue
		}

		values = attributes.Except(values, o.desc.KeyColumn, o.desc.ForeignKey, o.desc.LocaleColumn)
		target := e
		if code != current {
			loaded, err := load(ctx, db, key, code)
			if err != nil {
				return o.fail("save_translations", key, committed, err)
			}
			if loaded == nil {
				return o.fail("save_translations", key, committed, notPersisted("save translations"))
			}
			target = loaded
		}

		target.SetLocale(code)
		target.Fill(values)
		if err := o.Save(ctx, db, target); err != nil {
			return o.fail("save_translations", key, committed, err)
		}
		committed = append(committed, code)
	}

	logging.WithEntityContext(o.logger, o.desc.Table, key, current).Debug("writer.save_translations",
		"locales", committed,
	)
	return nil
}

// CopyTranslations writes every translation row of src onto dst, which must
// already be persisted. Used after Replicate once the copy has its own key.
func (o *Orchestrator) CopyTranslations(ctx context.Context, db bun.IDB, dst, src *entity.Entity, load Loader) error {
	if !dst.Exists() {
		return notPersisted("copy translations")
	}
	rows, err := o.store.List(ctx, db, src.Key())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	translations := make(Translations, len(rows))
	for _, row := range rows {
		translations[row.Locale] = row.Values
	}
	return o.SaveTranslations(ctx, db, dst, translations, load)
}
