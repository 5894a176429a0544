package translatable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	translatable "github.com/goliatone/go-translatable"
	"github.com/goliatone/go-translatable/internal/migrations"
	"github.com/goliatone/go-translatable/internal/storage"
	"github.com/goliatone/go-translatable/pkg/testsupport"
)

func memoryConfig(t *testing.T) translatable.Config {
	t.Helper()
	cfg := translatable.DefaultConfig()
	cfg.FallbackLocale = "en"
	cfg.Storage.DSN = testsupport.MemoryDSN("public")
	return cfg
}

// seed migrates the database behind cfg and keeps a connection open so the
// shared in-memory database outlives the test body.
func seed(t *testing.T, cfg translatable.Config, locales ...*translatable.Locale) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db.DB, cfg.Storage.Driver))
	catalog, err := translatable.NewCatalog(db, cfg.Cache, nil)
	require.NoError(t, err)
	for _, loc := range locales {
		_, err := catalog.Repository().Create(ctx, loc)
		require.NoError(t, err)
	}
}

func TestOpenRunsArticleScenario(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	seed(t, cfg)

	module, err := translatable.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = module.DB().Close() })

	articles, err := module.Register(ctx, translatable.Definition{Name: "article", Table: "articles"})
	require.NoError(t, err)

	created, err := articles.Create(ctx, map[string]any{"author_id": 1, "title": "Hello", "body": "World"}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.Key())

	fr, err := articles.FindInLocale(ctx, created.Key(), "fr")
	require.NoError(t, err)
	assert.Equal(t, "Hello", fr.Get("title"))
	assert.Equal(t, "World", fr.Get("body"))
}

func TestOpenWiresLocaleCatalog(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	cfg.Cache.Enabled = true
	seed(t, cfg,
		&translatable.Locale{Code: "en", Display: "English", IsActive: true, IsDefault: true},
		&translatable.Locale{Code: "fr", Display: "French", IsActive: true},
	)

	module, err := translatable.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = module.DB().Close() })
	require.NotNil(t, module.Catalog())

	articles, err := module.Register(ctx, translatable.Definition{Name: "article", Table: "articles"})
	require.NoError(t, err)

	_, err = articles.CreateInLocale(ctx, "fr", map[string]any{"title": "Bonjour"}, nil)
	require.NoError(t, err)
	_, err = articles.CreateInLocale(ctx, "de", map[string]any{"title": "Hallo"}, nil)
	assert.ErrorIs(t, err, translatable.ErrUnknownLocale)
}

func TestOpenWithoutCatalogTableSkipsValidation(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)

	module, err := translatable.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = module.DB().Close() })
	assert.Nil(t, module.Catalog())
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := translatable.DefaultConfig()
	cfg.DefaultLocale = ""

	_, err := translatable.Open(context.Background(), cfg)
	assert.ErrorIs(t, err, translatable.ErrDefaultLocaleRequired)
}

func TestLoggerProvider(t *testing.T) {
	provider, err := translatable.LoggerProvider(translatable.LoggingConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, provider)

	provider, err = translatable.LoggerProvider(translatable.LoggingConfig{Provider: "gologger", Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.GetLogger("translatable.writer"))

	_, err = translatable.LoggerProvider(translatable.LoggingConfig{Provider: "syslog"})
	assert.ErrorIs(t, err, translatable.ErrLoggingProviderUnknown)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("TRANSLATABLE_DEFAULT_LOCALE", "fr")
	t.Setenv("TRANSLATABLE_TRANSACTIONS", "false")

	cfg, err := translatable.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.DefaultLocale)
	assert.False(t, cfg.Transactions)
	assert.Equal(t, "_i18n", cfg.TableSuffix)
}
