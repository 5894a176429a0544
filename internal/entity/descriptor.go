package entity

import (
	"github.com/goliatone/go-translatable/internal/attributes"
	"github.com/goliatone/go-translatable/internal/locale"
)

// Kind tells where an attribute is stored.
type Kind int

const (
	KindBase Kind = iota
	KindTranslatable
)

// Naming holds the global conventions used to derive translation tables.
type Naming struct {
	TableSuffix  string
	LocaleColumn string
}

// Descriptor is the resolved, immutable description of an entity type. It is
// computed once at registration and shared by every instance.
type Descriptor struct {
	Name             string
	Table            string
	KeyColumn        string
	ForeignKey       string
	TranslationTable string
	LocaleColumn     string
	CreatedAtColumn  string
	UpdatedAtColumn  string
	KeyGenerator     func() any

	Translatable attributes.Set
	Defaults     locale.TypeDefaults
}

// TranslationTableFor applies the naming convention to table.
func TranslationTableFor(table string, naming Naming) string {
	return table + naming.TableSuffix
}

// NewDescriptor builds a descriptor from a normalized definition and the
// resolved translatable attribute names.
func NewDescriptor(def Definition, naming Naming, translatable []string) *Descriptor {
	desc := &Descriptor{
		Name:             def.Name,
		Table:            def.Table,
		KeyColumn:        def.KeyColumn,
		ForeignKey:       def.ForeignKey,
		TranslationTable: TranslationTableFor(def.Table, naming),
		LocaleColumn:     naming.LocaleColumn,
		CreatedAtColumn:  def.CreatedAtColumn,
		UpdatedAtColumn:  def.UpdatedAtColumn,
		KeyGenerator:     def.KeyGenerator,
		Translatable:     attributes.NewSet(translatable...),
	}
	if def.Locale != "" {
		code := def.Locale
		desc.Defaults.Locale = &code
	}
	if def.FallbackLocale != "" {
		code := def.FallbackLocale
		desc.Defaults.FallbackLocale = &code
	}
	desc.Defaults.WithFallback = def.WithFallback
	desc.Defaults.OnlyTranslated = def.OnlyTranslated
	return desc
}

// KindOf reports where name is stored.
func (d *Descriptor) KindOf(name string) Kind {
	if d.Translatable.Has(name) {
		return KindTranslatable
	}
	return KindBase
}

// IsTranslatable is shorthand for KindOf(name) == KindTranslatable.
func (d *Descriptor) IsTranslatable(name string) bool {
	return d.KindOf(name) == KindTranslatable
}

// HasTranslations reports whether the type has any translatable attribute.
func (d *Descriptor) HasTranslations() bool {
	return !d.Translatable.Empty()
}

// Split partitions values into base and translatable attributes.
func (d *Descriptor) Split(values map[string]any) (base, translatable map[string]any) {
	return attributes.Split(values, d.Translatable)
}
