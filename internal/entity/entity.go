package entity

import (
	"reflect"

	"github.com/goliatone/go-translatable/internal/attributes"
	"github.com/goliatone/go-translatable/internal/locale"
)

// Entity is one record of a translatable type: base attributes and the
// translatable attributes of a single locale, merged in one bag.
type Entity struct {
	desc     *Descriptor
	attrs    map[string]any
	original map[string]any
	exists   bool
	locale   *locale.Context
}

// New returns a non persisted entity holding a copy of attrs.
func New(desc *Descriptor, lc *locale.Context, attrs map[string]any) *Entity {
	return &Entity{
		desc:     desc,
		attrs:    attributes.Clone(attrs),
		original: map[string]any{},
		locale:   lc,
	}
}

// Hydrate returns a persisted entity built from a database row. The row
// becomes the original snapshot.
func Hydrate(desc *Descriptor, lc *locale.Context, row map[string]any) *Entity {
	e := New(desc, lc, row)
	e.exists = true
	e.original = attributes.Clone(e.attrs)
	return e
}

// Descriptor returns the entity type descriptor.
func (e *Entity) Descriptor() *Descriptor { return e.desc }

// Get returns the attribute value or nil.
func (e *Entity) Get(name string) any { return e.attrs[name] }

// Has reports whether the attribute is present, even when nil.
func (e *Entity) Has(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

// Set assigns one attribute.
func (e *Entity) Set(name string, value any) { e.attrs[name] = value }

// Fill assigns every entry of values.
func (e *Entity) Fill(values map[string]any) {
	for key, value := range values {
		e.attrs[key] = value
	}
}

// Attributes returns a copy of the current attributes.
func (e *Entity) Attributes() map[string]any { return attributes.Clone(e.attrs) }

// Original returns a copy of the last synced attributes.
func (e *Entity) Original() map[string]any { return attributes.Clone(e.original) }

// Key returns the primary key value, nil when unset.
func (e *Entity) Key() any { return e.attrs[e.desc.KeyColumn] }

// SetKey assigns the primary key.
func (e *Entity) SetKey(key any) { e.attrs[e.desc.KeyColumn] = key }

// Exists reports whether the entity is persisted.
func (e *Entity) Exists() bool { return e.exists }

// MarkPersisted flags the entity as stored and syncs the original snapshot.
func (e *Entity) MarkPersisted() {
	e.exists = true
	e.SyncOriginal()
}

// LocaleContext exposes the locale state of the instance.
func (e *Entity) LocaleContext() *locale.Context { return e.locale }

// Locale returns the effective locale.
func (e *Entity) Locale() string { return e.locale.Locale() }

// SetLocale switches the locale the entity reads and writes.
func (e *Entity) SetLocale(code string) { e.locale.SetLocale(code) }

// Dirty returns attributes changed since the last sync. After a locale change
// every non nil translatable attribute counts as changed, because it belongs
// to a different translation row even when its value is the same.
func (e *Entity) Dirty() map[string]any {
	dirty := map[string]any{}
	for key, value := range e.attrs {
		original, ok := e.original[key]
		if !ok || !reflect.DeepEqual(original, value) {
			dirty[key] = value
		}
	}
	if !e.locale.Changed() {
		return dirty
	}
	for _, key := range e.desc.Translatable.Names() {
		if value, ok := e.attrs[key]; ok && value != nil {
			dirty[key] = value
		}
	}
	return dirty
}

// SyncKeys copies the current value of names into the original snapshot,
// leaving every other pending change in place.
func (e *Entity) SyncKeys(names ...string) {
	for _, name := range names {
		if value, ok := e.attrs[name]; ok {
			e.original[name] = value
			continue
		}
		delete(e.original, name)
	}
}

// MarkDeleted flags the entity as no longer stored.
func (e *Entity) MarkDeleted() { e.exists = false }

// IsDirty reports whether Dirty is non empty.
func (e *Entity) IsDirty() bool { return len(e.Dirty()) > 0 }

// SyncOriginal snapshots the current attributes and clears the locale changed
// flag.
func (e *Entity) SyncOriginal() {
	e.locale.ResetChanged()
	e.original = attributes.Clone(e.attrs)
}

// ClearTranslatable resets every translatable attribute to nil in memory.
func (e *Entity) ClearTranslatable() {
	for _, key := range e.desc.Translatable.Names() {
		e.attrs[key] = nil
	}
}

// TranslatableValues returns the translatable attributes currently held.
func (e *Entity) TranslatableValues() map[string]any {
	return attributes.Only(e.attrs, e.desc.Translatable)
}

// Replicate clones the entity into a new, non persisted instance. The key,
// the timestamps, the except keys and every translatable attribute are
// dropped: translatable values belong to the source's translation rows.
func (e *Entity) Replicate(except ...string) *Entity {
	drop := append([]string{e.desc.KeyColumn}, except...)
	if e.desc.CreatedAtColumn != "" {
		drop = append(drop, e.desc.CreatedAtColumn)
	}
	if e.desc.UpdatedAtColumn != "" {
		drop = append(drop, e.desc.UpdatedAtColumn)
	}
	drop = append(drop, e.desc.Translatable.Names()...)
	return New(e.desc, e.locale.Clone(), attributes.Except(e.attrs, drop...))
}

// Checkpoint captures the entity state and returns a function that puts it
// back. Used to undo in-memory changes when a transaction rolls back.
func (e *Entity) Checkpoint() func() {
	attrs := attributes.Clone(e.attrs)
	original := attributes.Clone(e.original)
	exists := e.exists
	lc := e.locale.Snapshot()
	return func() {
		e.attrs = attrs
		e.original = original
		e.exists = exists
		e.locale.Restore(lc)
	}
}
