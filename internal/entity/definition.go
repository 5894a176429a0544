package entity

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jinzhu/inflection"
)

// ErrDefinitionInvalid wraps validation failures of a Definition.
var ErrDefinitionInvalid = errors.New("entity: invalid definition")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Definition is the user supplied configuration of a translatable entity type.
// Zero values are filled by Normalize.
type Definition struct {
	// Name identifies the entity type in the module registry. Defaults to Table.
	Name string
	// Table is the base table.
	Table string
	// KeyColumn is the primary key of the base table. Defaults to "id".
	KeyColumn string
	// ForeignKey is the translation table column pointing at KeyColumn.
	// Defaults to the singular table name plus "_id".
	ForeignKey string
	// Translatable lists the translatable attributes. When empty they are read
	// from the translation table schema.
	Translatable []string

	Locale         string
	FallbackLocale string
	WithFallback   *bool
	OnlyTranslated *bool

	CreatedAtColumn string
	UpdatedAtColumn string

	// KeyGenerator supplies keys for new rows. When nil the database
	// generates them.
	KeyGenerator func() any
}

// Normalize returns a copy of d with defaults applied.
func (d Definition) Normalize() Definition {
	d.Table = strings.TrimSpace(d.Table)
	if d.Name = strings.TrimSpace(d.Name); d.Name == "" {
		d.Name = d.Table
	}
	if d.KeyColumn = strings.TrimSpace(d.KeyColumn); d.KeyColumn == "" {
		d.KeyColumn = "id"
	}
	if d.ForeignKey = strings.TrimSpace(d.ForeignKey); d.ForeignKey == "" && d.Table != "" {
		d.ForeignKey = DefaultForeignKey(d.Table, d.KeyColumn)
	}
	d.Locale = strings.TrimSpace(d.Locale)
	d.FallbackLocale = strings.TrimSpace(d.FallbackLocale)
	return d
}

// Validate checks identifiers. Call it on a normalized definition.
func (d Definition) Validate() error {
	identifier := validation.Match(identifierPattern).Error("must be a plain SQL identifier")
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Table, validation.Required, identifier),
		validation.Field(&d.KeyColumn, validation.Required, identifier),
		validation.Field(&d.ForeignKey, validation.Required, identifier),
		validation.Field(&d.Translatable, validation.Each(validation.Required, identifier)),
		validation.Field(&d.CreatedAtColumn, identifier),
		validation.Field(&d.UpdatedAtColumn, identifier),
	)
	if err != nil {
		return errors.Join(ErrDefinitionInvalid, err)
	}
	return nil
}

// DefaultForeignKey derives the conventional foreign key for table, e.g.
// "articles" -> "article_id". Schema qualified tables use the table part.
func DefaultForeignKey(table, keyColumn string) string {
	if idx := strings.LastIndex(table, "."); idx >= 0 {
		table = table[idx+1:]
	}
	if keyColumn == "" {
		keyColumn = "id"
	}
	return inflection.Singular(table) + "_" + keyColumn
}
