package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	translatable "github.com/goliatone/go-translatable"
	"github.com/goliatone/go-translatable/internal/locales"
	"github.com/goliatone/go-translatable/internal/migrations"
	"github.com/goliatone/go-translatable/internal/storage"
)

var demoLocales = []*locales.Locale{
	{Code: "en", Display: "English", IsActive: true, IsDefault: true},
	{Code: "fr", Display: "French", IsActive: true},
	{Code: "es", Display: "Spanish", IsActive: true},
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("example: %v", err)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := translatable.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.FallbackLocale == "" {
		cfg.FallbackLocale = cfg.DefaultLocale
	}

	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	family, err := storage.Family(cfg.Storage.Driver)
	if err != nil {
		return err
	}
	if err := migrations.Up(ctx, db.DB, family); err != nil {
		return err
	}

	provider, err := translatable.LoggerProvider(cfg.Logging)
	if err != nil {
		return err
	}
	catalog, err := translatable.NewCatalog(db, cfg.Cache, provider)
	if err != nil {
		return err
	}
	if err := seedLocales(ctx, catalog); err != nil {
		return err
	}

	opts := []translatable.Option{translatable.WithLocaleCatalog(catalog)}
	if provider != nil {
		opts = append(opts, translatable.WithLogger(provider))
	}
	module, err := translatable.New(db, cfg, opts...)
	if err != nil {
		return err
	}

	articles, err := module.Register(ctx, translatable.Definition{
		Name:            "article",
		Table:           "articles",
		CreatedAtColumn: "created_at",
		UpdatedAtColumn: "updated_at",
	})
	if err != nil {
		return err
	}

	article, err := articles.Create(ctx,
		map[string]any{"author_id": 1, "title": "Hello", "body": "World"},
		translatable.Translations{"fr": {"title": "Bonjour", "body": "Le monde"}},
	)
	if err != nil {
		return err
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	for _, code := range []string{"en", "fr", "es"} {
		found, err := articles.FindInLocale(ctx, article.Key(), code)
		if err != nil {
			return err
		}
		if err := out.Encode(map[string]any{
			"locale": found.Locale(),
			"title":  found.Get("title"),
			"body":   found.Get("body"),
		}); err != nil {
			return err
		}
	}

	rows, err := articles.Translations(ctx, article)
	if err != nil {
		return err
	}
	fmt.Printf("article %v has %d translations\n", article.Key(), len(rows))
	return nil
}

func seedLocales(ctx context.Context, catalog *locales.Catalog) error {
	codes, err := catalog.Codes(ctx)
	if err != nil {
		return err
	}
	if len(codes) > 0 {
		return nil
	}
	for _, loc := range demoLocales {
		if _, err := catalog.Repository().Create(ctx, loc); err != nil {
			return fmt.Errorf("seed locale %s: %w", loc.Code, err)
		}
	}
	return nil
}
