package query

import (
	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/locale"
)

const (
	primaryAlias  = "i18n"
	fallbackAlias = "i18n_fallback"
)

// JoinKind is the SQL join used to attach a translation.
type JoinKind string

const (
	LeftJoin  JoinKind = "LEFT JOIN"
	InnerJoin JoinKind = "INNER JOIN"
)

// Join attaches the translation table at one locale under Alias.
type Join struct {
	Kind   JoinKind
	Alias  string
	Locale string
}

// Plan is a fully specified read. It holds no connection and can be rendered
// any number of times.
type Plan struct {
	Table            string
	KeyColumn        string
	TranslationTable string
	ForeignKey       string
	LocaleColumn     string
	Translatable     []string

	Scope locale.Scope
	Joins []Join
	// RequireTranslation keeps only rows joined at the primary or fallback
	// locale. Set when only-translated reads use fallback.
	RequireTranslation bool

	Conditions []Condition
	Keys       []any
	Orders     []Order
	Limit      int
	Offset     int
}

// Compose builds the plan for reading desc under scope.
//
// Without translatable attributes no join is added. Without fallback a single
// join at the scope locale is added, inner when only translated rows are
// wanted. With fallback two left joins are added and every translatable
// attribute is read as COALESCE(primary, fallback).
func Compose(desc *entity.Descriptor, spec Spec, scope locale.Scope) Plan {
	spec = spec.Clone()
	plan := Plan{
		Table:            desc.Table,
		KeyColumn:        desc.KeyColumn,
		TranslationTable: desc.TranslationTable,
		ForeignKey:       desc.ForeignKey,
		LocaleColumn:     desc.LocaleColumn,
		Translatable:     desc.Translatable.Names(),
		Scope:            scope,
		Conditions:       spec.Conditions,
		Keys:             spec.Keys,
		Orders:           spec.Orders,
		Limit:            spec.Limit,
		Offset:           spec.Offset,
	}
	if len(plan.Translatable) == 0 {
		return plan
	}

	if !scope.UsesFallback() {
		kind := LeftJoin
		if scope.OnlyTranslated {
			kind = InnerJoin
		}
		plan.Joins = []Join{{Kind: kind, Alias: primaryAlias, Locale: scope.Locale}}
		return plan
	}

	plan.Joins = []Join{
		{Kind: LeftJoin, Alias: primaryAlias, Locale: scope.Locale},
		{Kind: LeftJoin, Alias: fallbackAlias, Locale: scope.FallbackLocale},
	}
	plan.RequireTranslation = scope.OnlyTranslated
	return plan
}

// Coalesces reports whether translatable attributes are read through
// COALESCE.
func (p Plan) Coalesces() bool { return len(p.Joins) == 2 }

// IsTranslatable reports whether column is read from the translation table.
func (p Plan) IsTranslatable(column string) bool {
	if len(p.Joins) == 0 {
		return false
	}
	for _, name := range p.Translatable {
		if name == column {
			return true
		}
	}
	return false
}

// ColumnRef returns a bun format string and its arguments that reference
// column the way this plan reads it.
func (p Plan) ColumnRef(column string) (string, []any) {
	if !p.IsTranslatable(column) {
		return "?.?", []any{ident(p.Table), ident(column)}
	}
	if p.Coalesces() {
		return "COALESCE(?.?, ?.?)", []any{ident(primaryAlias), ident(column), ident(fallbackAlias), ident(column)}
	}
	return "?.?", []any{ident(primaryAlias), ident(column)}
}
