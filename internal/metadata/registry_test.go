package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type countingInspector struct {
	mu      sync.Mutex
	calls   int
	columns map[string][]string
}

func (c *countingInspector) Columns(_ context.Context, table string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.columns[table], nil
}

func articleSource() Source {
	return Source{Table: "articles_i18n", ForeignKey: "article_id", LocaleColumn: "locale"}
}

func TestResolveIntrospectsOnceAndExcludesKeys(t *testing.T) {
	inspector := &countingInspector{columns: map[string][]string{
		"articles_i18n": {"article_id", "locale", "title", "body"},
	}}
	registry := NewRegistry(inspector)

	for i := 0; i < 3; i++ {
		names, err := registry.Resolve(context.Background(), articleSource())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(names) != 2 || names[0] != "title" || names[1] != "body" {
			t.Fatalf("unexpected names %v", names)
		}
	}
	if inspector.calls != 1 {
		t.Fatalf("expected a single introspection, got %d", inspector.calls)
	}
}

func TestResolvePrefersExplicitNames(t *testing.T) {
	inspector := &countingInspector{}
	registry := NewRegistry(inspector)

	src := articleSource()
	src.Explicit = []string{"title", " "}
	names, err := registry.Resolve(context.Background(), src)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(names) != 1 || names[0] != "title" {
		t.Fatalf("unexpected names %v", names)
	}
	if inspector.calls != 0 {
		t.Fatal("explicit names must not trigger introspection")
	}
}

func TestResolveNeverInvalidates(t *testing.T) {
	inspector := &countingInspector{columns: map[string][]string{
		"articles_i18n": {"article_id", "locale", "title"},
	}}
	registry := NewRegistry(inspector)
	if _, err := registry.Resolve(context.Background(), articleSource()); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	inspector.columns["articles_i18n"] = append(inspector.columns["articles_i18n"], "summary")
	names, _ := registry.Resolve(context.Background(), articleSource())
	if len(names) != 1 {
		t.Fatalf("expected stale cached names, got %v", names)
	}
}

func TestResolveSkipsReservedColumns(t *testing.T) {
	inspector := &countingInspector{columns: map[string][]string{
		"articles_i18n": {"id", "article_id", "locale", "title", "created_at"},
	}}
	src := articleSource()
	src.Reserved = []string{"id", "created_at"}

	names, err := NewRegistry(inspector).Resolve(context.Background(), src)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(names) != 1 || names[0] != "title" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestResolveRejectsReservedExplicitNames(t *testing.T) {
	src := articleSource()
	src.Reserved = []string{"id"}
	src.Explicit = []string{"title", "id"}

	registry := NewRegistry(nil)
	_, err := registry.Resolve(context.Background(), src)
	if !errors.Is(err, ErrReservedAttribute) {
		t.Fatalf("expected ErrReservedAttribute, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if _, ok := registry.Names("articles_i18n"); ok {
		t.Fatalf("rejected names must not be cached")
	}
}

func TestResolveConfigurationErrors(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
		want    error
	}{
		{name: "missing table", columns: nil, want: ErrTranslationTableMissing},
		{name: "missing foreign key", columns: []string{"locale", "title"}, want: ErrForeignKeyColumnMissing},
		{name: "missing locale", columns: []string{"article_id", "title"}, want: ErrLocaleColumnMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inspector := &countingInspector{columns: map[string][]string{"articles_i18n": tc.columns}}
			_, err := NewRegistry(inspector).Resolve(context.Background(), articleSource())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestResolveWithoutInspector(t *testing.T) {
	_, err := NewRegistry(nil).Resolve(context.Background(), articleSource())
	if !errors.Is(err, ErrInspectorRequired) {
		t.Fatalf("expected ErrInspectorRequired, got %v", err)
	}
}

func TestResolvePropagatesInspectorFailure(t *testing.T) {
	boom := errors.New("connection refused")
	registry := NewRegistry(InspectorFunc(func(context.Context, string) ([]string, error) {
		return nil, boom
	}))
	if _, err := registry.Resolve(context.Background(), articleSource()); !errors.Is(err, boom) {
		t.Fatalf("expected engine failure to propagate, got %v", err)
	}
	if len(registry.Tables()) != 0 {
		t.Fatal("failed resolution must not populate the cache")
	}
}

func TestConcurrentFirstResolutionConverges(t *testing.T) {
	inspector := &countingInspector{columns: map[string][]string{
		"articles_i18n": {"article_id", "locale", "title"},
	}}
	registry := NewRegistry(inspector)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = registry.Resolve(context.Background(), articleSource())
		}()
	}
	wg.Wait()

	if inspector.calls != 1 {
		t.Fatalf("expected one introspection across goroutines, got %d", inspector.calls)
	}
	if tables := registry.Tables(); len(tables) != 1 || tables[0] != "articles_i18n" {
		t.Fatalf("unexpected tables %v", tables)
	}
}
