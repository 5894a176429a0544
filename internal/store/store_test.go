package store

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-translatable/pkg/testsupport"
)

func newArticleStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	return New(Target{Table: "articles_i18n", ForeignKey: "article_id", LocaleColumn: "locale"}), context.Background()
}

func TestInsertExistsFind(t *testing.T) {
	db := testsupport.NewBunDB(t)
	testsupport.ArticleSchema(t, db)
	s, ctx := newArticleStore(t)

	if ok, err := s.Exists(ctx, db, 1, "en"); err != nil || ok {
		t.Fatalf("Exists() before insert = %v, %v", ok, err)
	}
	err := s.Insert(ctx, db, map[string]any{"article_id": 1, "locale": "en", "title": "Hello", "body": "World"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if ok, err := s.Exists(ctx, db, 1, "en"); err != nil || !ok {
		t.Fatalf("Exists() after insert = %v, %v", ok, err)
	}

	row, err := s.Find(ctx, db, 1, "en")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if row == nil || row.Locale != "en" || row.Values["title"] != "Hello" || row.Values["body"] != "World" {
		t.Fatalf("unexpected row %+v", row)
	}
	if _, ok := row.Values["article_id"]; ok {
		t.Fatal("row values must not carry the foreign key")
	}

	missing, err := s.Find(ctx, db, 1, "fr")
	if err != nil || missing != nil {
		t.Fatalf("Find() missing = %+v, %v", missing, err)
	}
}

func TestInsertRequiresKeys(t *testing.T) {
	db := testsupport.NewBunDB(t)
	testsupport.ArticleSchema(t, db)
	s, ctx := newArticleStore(t)

	if err := s.Insert(ctx, db, map[string]any{"locale": "en", "title": "x"}); !errors.Is(err, ErrRowIncomplete) {
		t.Fatalf("expected ErrRowIncomplete, got %v", err)
	}
	if err := s.Insert(ctx, db, map[string]any{"article_id": 1, "title": "x"}); !errors.Is(err, ErrRowIncomplete) {
		t.Fatalf("expected ErrRowIncomplete, got %v", err)
	}
}

func TestUpdateReportsAffectedRows(t *testing.T) {
	db := testsupport.NewBunDB(t)
	testsupport.ArticleSchema(t, db)
	s, ctx := newArticleStore(t)

	n, err := s.Update(ctx, db, 1, "en", map[string]any{"title": "nothing"})
	if err != nil || n != 0 {
		t.Fatalf("Update() on missing row = %d, %v", n, err)
	}

	if err := s.Insert(ctx, db, map[string]any{"article_id": 1, "locale": "en", "title": "Hello"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	n, err = s.Update(ctx, db, 1, "en", map[string]any{"title": "Hi", "locale": "de"})
	if err != nil || n != 1 {
		t.Fatalf("Update() = %d, %v", n, err)
	}
	row, _ := s.Find(ctx, db, 1, "en")
	if row == nil || row.Values["title"] != "Hi" {
		t.Fatalf("update did not apply, row %+v", row)
	}
	if got := testsupport.CountRows(t, db, "articles_i18n", "locale = ?", "de"); got != 0 {
		t.Fatal("locale in values must be ignored")
	}
}

func TestDeleteVariants(t *testing.T) {
	db := testsupport.NewBunDB(t)
	testsupport.ArticleSchema(t, db)
	s, ctx := newArticleStore(t)

	for _, row := range []map[string]any{
		{"article_id": 1, "locale": "en", "title": "a"},
		{"article_id": 1, "locale": "fr", "title": "b"},
		{"article_id": 2, "locale": "en", "title": "c"},
		{"article_id": 3, "locale": "en", "title": "d"},
	} {
		if err := s.Insert(ctx, db, row); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if n, err := s.DeleteFor(ctx, db, 1, "fr"); err != nil || n != 1 {
		t.Fatalf("DeleteFor() = %d, %v", n, err)
	}
	if n, err := s.DeleteWhereForeignKeyIn(ctx, db, nil); err != nil || n != 0 {
		t.Fatalf("DeleteWhereForeignKeyIn(nil) = %d, %v", n, err)
	}
	if n, err := s.DeleteWhereForeignKeyIn(ctx, db, []any{int64(2), int64(3)}); err != nil || n != 2 {
		t.Fatalf("DeleteWhereForeignKeyIn() = %d, %v", n, err)
	}
	if n, err := s.DeleteAll(ctx, db, 1); err != nil || n != 1 {
		t.Fatalf("DeleteAll() = %d, %v", n, err)
	}
	if got := testsupport.CountRows(t, db, "articles_i18n", ""); got != 0 {
		t.Fatalf("expected empty table, got %d rows", got)
	}
}

func TestListOrdersByLocale(t *testing.T) {
	db := testsupport.NewBunDB(t)
	testsupport.ArticleSchema(t, db)
	s, ctx := newArticleStore(t)

	for _, code := range []string{"fr", "de", "en"} {
		if err := s.Insert(ctx, db, map[string]any{"article_id": 7, "locale": code, "title": code}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	rows, err := s.List(ctx, db, 7)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rows) != 3 || rows[0].Locale != "de" || rows[1].Locale != "en" || rows[2].Locale != "fr" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[1].Values["title"] != "en" {
		t.Fatalf("unexpected values %+v", rows[1].Values)
	}

	empty, err := s.List(ctx, db, 99)
	if err != nil || len(empty) != 0 {
		t.Fatalf("List() for unknown key = %v, %v", empty, err)
	}
}

func TestStatementsRunInsideTransactions(t *testing.T) {
	db := testsupport.NewBunDB(t)
	testsupport.ArticleSchema(t, db)
	s, ctx := newArticleStore(t)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if err := s.Insert(ctx, tx, map[string]any{"article_id": 1, "locale": "en", "title": "draft"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if ok, _ := s.Exists(ctx, db, 1, "en"); ok {
		t.Fatal("rolled back insert must not be visible")
	}
}
