package commands

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/text/language"

	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/translatable"
	"github.com/goliatone/go-translatable/internal/writer"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	saveTranslationsMessageType  = "translatable.translations.save"
	deleteTranslationMessageType = "translatable.translations.delete"
	copyTranslationsMessageType  = "translatable.translations.copy"
)

// Resolver returns the repository registered for an entity name.
// *translatable.Module satisfies it.
type Resolver interface {
	Repository(name string) (*translatable.Repository, error)
}

// SaveTranslationsCommand writes several locales of one entity. A nil map
// deletes the translation at that locale.
type SaveTranslationsCommand struct {
	Entity       string                    `json:"entity"`
	Key          any                       `json:"key"`
	Translations map[string]map[string]any `json:"translations"`
}

// Type implements command.Message.
func (SaveTranslationsCommand) Type() string { return saveTranslationsMessageType }

// Validate implements command.Message.
func (m SaveTranslationsCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Entity, validation.Required),
		validation.Field(&m.Key, validation.NotNil),
		validation.Field(&m.Translations, validation.Required, validation.By(localeKeys)),
	)
}

// DeleteTranslationCommand removes the translation of one entity at Locale.
type DeleteTranslationCommand struct {
	Entity string `json:"entity"`
	Key    any    `json:"key"`
	Locale string `json:"locale"`
}

func (DeleteTranslationCommand) Type() string { return deleteTranslationMessageType }

func (m DeleteTranslationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Entity, validation.Required),
		validation.Field(&m.Key, validation.NotNil),
		validation.Field(&m.Locale, validation.Required, validation.By(localeTag)),
	)
}

// CopyTranslationsCommand copies every translation of SourceKey onto
// TargetKey.
type CopyTranslationsCommand struct {
	Entity    string `json:"entity"`
	SourceKey any    `json:"source_key"`
	TargetKey any    `json:"target_key"`
}

func (CopyTranslationsCommand) Type() string { return copyTranslationsMessageType }

func (m CopyTranslationsCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Entity, validation.Required),
		validation.Field(&m.SourceKey, validation.NotNil),
		validation.Field(&m.TargetKey, validation.NotNil),
	)
}

// NewSaveTranslationsHandler returns the handler for SaveTranslationsCommand.
func NewSaveTranslationsHandler(resolver Resolver, logger interfaces.Logger, opts ...HandlerOption[SaveTranslationsCommand]) *Handler[SaveTranslationsCommand] {
	exec := func(ctx context.Context, msg SaveTranslationsCommand) error {
		repo, e, err := load(ctx, resolver, msg.Entity, msg.Key)
		if err != nil {
			return err
		}
		return repo.SaveTranslations(ctx, e, writer.Translations(msg.Translations))
	}
	return NewHandler(exec, append([]HandlerOption[SaveTranslationsCommand]{
		WithLogger[SaveTranslationsCommand](logger),
		WithOperation[SaveTranslationsCommand]("translations.save"),
	}, opts...)...)
}

// NewDeleteTranslationHandler returns the handler for
// DeleteTranslationCommand.
func NewDeleteTranslationHandler(resolver Resolver, logger interfaces.Logger, opts ...HandlerOption[DeleteTranslationCommand]) *Handler[DeleteTranslationCommand] {
	exec := func(ctx context.Context, msg DeleteTranslationCommand) error {
		repo, e, err := load(ctx, resolver, msg.Entity, msg.Key)
		if err != nil {
			return err
		}
		return repo.SaveTranslations(ctx, e, writer.Translations{msg.Locale: nil})
	}
	return NewHandler(exec, append([]HandlerOption[DeleteTranslationCommand]{
		WithLogger[DeleteTranslationCommand](logger),
		WithOperation[DeleteTranslationCommand]("translations.delete"),
	}, opts...)...)
}

// NewCopyTranslationsHandler returns the handler for
// CopyTranslationsCommand.
func NewCopyTranslationsHandler(resolver Resolver, logger interfaces.Logger, opts ...HandlerOption[CopyTranslationsCommand]) *Handler[CopyTranslationsCommand] {
	exec := func(ctx context.Context, msg CopyTranslationsCommand) error {
		repo, src, err := load(ctx, resolver, msg.Entity, msg.SourceKey)
		if err != nil {
			return err
		}
		_, dst, err := load(ctx, resolver, msg.Entity, msg.TargetKey)
		if err != nil {
			return err
		}
		return repo.CopyTranslations(ctx, dst, src)
	}
	return NewHandler(exec, append([]HandlerOption[CopyTranslationsCommand]{
		WithLogger[CopyTranslationsCommand](logger),
		WithOperation[CopyTranslationsCommand]("translations.copy"),
	}, opts...)...)
}

// load reads the entity regardless of the only-translated default, since
// maintenance targets base rows that may have no translation yet.
func load(ctx context.Context, resolver Resolver, name string, key any) (*translatable.Repository, *entity.Entity, error) {
	repo, err := resolver.Repository(name)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("entity %q is not registered", name)).
			WithTextCode(codeValidation)
	}
	e, err := repo.Query().WithUntranslated().WhereKey(key).First(ctx)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		nf := &translatable.NotFoundError{Resource: name, Key: key}
		return nil, nil, goerrors.Wrap(nf, goerrors.CategoryCommand, nf.Error()).
			WithTextCode(codeEntityNotFound)
	}
	return repo, e, nil
}

func localeKeys(value any) error {
	translations, _ := value.(map[string]map[string]any)
	for code := range translations {
		if err := localeTag(code); err != nil {
			return fmt.Errorf("%q: %w", code, err)
		}
	}
	return nil
}

func localeTag(value any) error {
	code, _ := value.(string)
	if code == "" {
		return nil
	}
	if _, err := language.Parse(code); err != nil {
		return validation.NewError("validation_locale_invalid", "must be a BCP 47 language tag")
	}
	return nil
}
