// Package testsupport holds database helpers shared by package tests.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBCounter atomic.Uint64

// MemoryDSN returns a shared-cache in-memory DSN unique to this process, so
// tests running in parallel never see each other's tables.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, memoryDBCounter.Add(1))
}

// NewSQLiteMemoryDB opens a fresh in-memory sqlite database limited to a
// single connection.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite3", MemoryDSN(name))
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}

// NewBunDB returns a bun handle over a fresh in-memory database, closed when
// the test ends.
func NewBunDB(t testing.TB) *bun.DB {
	t.Helper()

	sqlDB, err := NewSQLiteMemoryDB(sanitize(t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// Exec runs each statement or fails the test.
func Exec(t testing.TB, db bun.IDB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// ArticleSchema creates the articles tables used across package tests.
func ArticleSchema(t testing.TB, db bun.IDB) {
	t.Helper()
	Exec(t, db,
		`CREATE TABLE articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER,
			views INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE articles_i18n (
			article_id INTEGER NOT NULL,
			locale TEXT NOT NULL,
			title TEXT,
			body TEXT
		)`,
	)
}

// CountRows returns the number of rows in table matching where.
func CountRows(t testing.TB, db bun.IDB, table, where string, args ...any) int {
	t.Helper()
	q := db.NewSelect().TableExpr("?", bun.Ident(table))
	if where != "" {
		q = q.Where(where, args...)
	}
	count, err := q.Count(context.Background())
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
