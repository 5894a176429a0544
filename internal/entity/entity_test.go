package entity

import (
	"errors"
	"testing"

	"github.com/goliatone/go-translatable/internal/locale"
)

func articleDescriptor() *Descriptor {
	def := Definition{Table: "articles", CreatedAtColumn: "created_at"}.Normalize()
	return NewDescriptor(def, Naming{TableSuffix: "_i18n", LocaleColumn: "locale"}, []string{"title", "body"})
}

func newContext(code string) *locale.Context {
	return locale.NewContext(locale.NewState(locale.Defaults{Locale: code}), locale.TypeDefaults{})
}

func TestDefinitionNormalizeDerivesConventions(t *testing.T) {
	def := Definition{Table: "articles"}.Normalize()
	if def.Name != "articles" || def.KeyColumn != "id" || def.ForeignKey != "article_id" {
		t.Fatalf("unexpected normalized definition %+v", def)
	}
	if got := DefaultForeignKey("blog.categories", "id"); got != "category_id" {
		t.Fatalf("expected category_id, got %q", got)
	}
}

func TestDefinitionValidateRejectsBadIdentifiers(t *testing.T) {
	def := Definition{Table: "articles; drop table x", Translatable: []string{"title"}}.Normalize()
	if err := def.Validate(); !errors.Is(err, ErrDefinitionInvalid) {
		t.Fatalf("expected ErrDefinitionInvalid, got %v", err)
	}

	ok := Definition{Table: "articles", Translatable: []string{"title", "body"}}.Normalize()
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid definition, got %v", err)
	}
}

func TestDescriptorResolvesMembership(t *testing.T) {
	desc := articleDescriptor()
	if desc.TranslationTable != "articles_i18n" {
		t.Fatalf("unexpected translation table %q", desc.TranslationTable)
	}
	if desc.KindOf("title") != KindTranslatable || desc.KindOf("author_id") != KindBase {
		t.Fatal("unexpected attribute kinds")
	}
}

func TestDirtyTracksChangesSinceSync(t *testing.T) {
	e := Hydrate(articleDescriptor(), newContext("en"), map[string]any{"id": int64(1), "author_id": int64(1), "title": "Hello"})
	if e.IsDirty() {
		t.Fatalf("freshly hydrated entity must be clean, got %v", e.Dirty())
	}

	e.Set("author_id", int64(2))
	dirty := e.Dirty()
	if len(dirty) != 1 || dirty["author_id"] != int64(2) {
		t.Fatalf("unexpected dirty set %v", dirty)
	}
}

func TestDirtyIncludesTranslatableAfterLocaleChange(t *testing.T) {
	e := Hydrate(articleDescriptor(), newContext("en"), map[string]any{"id": int64(1), "title": "Hello", "body": nil})

	e.SetLocale("fr")
	dirty := e.Dirty()
	if dirty["title"] != "Hello" {
		t.Fatalf("expected unchanged title to count as dirty after locale change, got %v", dirty)
	}
	if _, ok := dirty["body"]; ok {
		t.Fatalf("nil translatable values are not carried over, got %v", dirty)
	}

	e.SyncOriginal()
	if e.IsDirty() {
		t.Fatalf("expected clean entity after sync, got %v", e.Dirty())
	}
}

func TestReplicateDropsKeyAndTranslatableAttributes(t *testing.T) {
	e := Hydrate(articleDescriptor(), newContext("de"), map[string]any{
		"id": int64(3), "author_id": int64(9), "title": "Hallo", "body": "Welt", "created_at": "yesterday",
	})

	clone := e.Replicate("author_id")

	if clone.Exists() {
		t.Fatal("replica must not be persisted")
	}
	if len(clone.Attributes()) != 0 {
		t.Fatalf("expected empty replica, got %v", clone.Attributes())
	}
	if clone.Locale() != "de" {
		t.Fatalf("expected replica to keep locale, got %q", clone.Locale())
	}

	clone = e.Replicate()
	if clone.Get("author_id") != int64(9) || clone.Has("title") || clone.Has("id") {
		t.Fatalf("unexpected replica attributes %v", clone.Attributes())
	}
}

func TestClearTranslatable(t *testing.T) {
	e := New(articleDescriptor(), newContext("en"), map[string]any{"title": "x", "body": "y", "author_id": 1})
	e.ClearTranslatable()
	if e.Get("title") != nil || e.Get("body") != nil || e.Get("author_id") != 1 {
		t.Fatalf("unexpected attributes %v", e.Attributes())
	}
}

func TestSyncKeysKeepsOtherChanges(t *testing.T) {
	desc := articleDescriptor()
	e := Hydrate(desc, locale.NewContext(locale.NewState(locale.Defaults{Locale: "en"}), desc.Defaults),
		map[string]any{"id": int64(1), "author_id": int64(1), "title": "Hello"})

	e.Set("author_id", int64(2))
	e.ClearTranslatable()
	e.SyncKeys(desc.Translatable.Names()...)

	dirty := e.Dirty()
	if len(dirty) != 1 || dirty["author_id"] != int64(2) {
		t.Fatalf("expected only author_id dirty, got %v", dirty)
	}

	e.MarkDeleted()
	if e.Exists() {
		t.Fatal("MarkDeleted should clear exists")
	}
}

func TestCheckpointRestoresState(t *testing.T) {
	desc := articleDescriptor()
	e := New(desc, newContext("en"), map[string]any{"title": "draft"})

	restore := e.Checkpoint()
	e.SetKey(int64(9))
	e.SetLocale("fr")
	e.MarkPersisted()
	restore()

	if e.Key() != nil || e.Exists() || e.Locale() != "en" || e.LocaleContext().Changed() {
		t.Fatalf("checkpoint did not restore state: key=%v exists=%v locale=%s", e.Key(), e.Exists(), e.Locale())
	}
}
