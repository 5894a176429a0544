package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"
)

var ErrDefaultLocaleRequired = errors.New("translatable config: default locale is required")
var ErrLocaleInvalid = errors.New("translatable config: locale is not a valid BCP 47 tag")
var ErrLocaleColumnRequired = errors.New("translatable config: locale column is required")
var ErrTableSuffixRequired = errors.New("translatable config: translation table suffix is required")
var ErrIdentifierInvalid = errors.New("translatable config: identifier is invalid")
var ErrStorageDriverUnknown = errors.New("translatable config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("translatable config: storage dsn is required when a driver is set")
var ErrCacheTTLInvalid = errors.New("translatable config: cache ttl must be zero or positive")
var ErrLoggingProviderUnknown = errors.New("translatable config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("translatable config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("translatable config: logging format is invalid")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var suffixPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Config aggregates the global locale defaults, naming conventions and
// adapter settings of the translatable module.
type Config struct {
	DefaultLocale  string `env:"DEFAULT_LOCALE"`
	FallbackLocale string `env:"FALLBACK_LOCALE"`
	WithFallback   bool   `env:"WITH_FALLBACK"`
	OnlyTranslated bool   `env:"ONLY_TRANSLATED"`
	LocaleColumn   string `env:"LOCALE_COLUMN"`
	TableSuffix    string `env:"TABLE_SUFFIX"`
	// Transactions wraps every composite write in a database transaction.
	// When false each statement commits on its own and a failure after a
	// committed statement is reported as a partial write.
	Transactions bool `env:"TRANSACTIONS"`

	Storage StorageConfig `envPrefix:"STORAGE_"`
	Cache   CacheConfig   `envPrefix:"CACHE_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
	Locales LocalesConfig `envPrefix:"LOCALES_"`
}

// StorageConfig selects the database driver used by Open.
type StorageConfig struct {
	Driver       string `env:"DRIVER"`
	DSN          string `env:"DSN"`
	Debug        bool   `env:"DEBUG"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS"`
}

// CacheConfig controls the read-through cache of the locale catalog.
type CacheConfig struct {
	Enabled bool          `env:"ENABLED"`
	TTL     time.Duration `env:"TTL"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `env:"PROVIDER"`
	Level     string   `env:"LEVEL"`
	Format    string   `env:"FORMAT"`
	AddSource bool     `env:"ADD_SOURCE"`
	Focus     []string `env:"FOCUS" envSeparator:","`
}

// LocalesConfig controls locale catalog checks on writes.
type LocalesConfig struct {
	Validate bool `env:"VALIDATE"`
}

// DefaultConfig returns the defaults used when no configuration is given.
func DefaultConfig() Config {
	return Config{
		DefaultLocale:  "en",
		FallbackLocale: "",
		WithFallback:   true,
		OnlyTranslated: false,
		LocaleColumn:   "locale",
		TableSuffix:    "_i18n",
		Transactions:   true,
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file::memory:?cache=shared",
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "none",
			Level:    "info",
			Format:   "console",
		},
		Locales: LocalesConfig{
			Validate: true,
		},
	}
}

// Validate performs consistency checks and returns the first problem found.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	if err := ValidateLocale(cfg.DefaultLocale); err != nil {
		return err
	}
	if fallback := strings.TrimSpace(cfg.FallbackLocale); fallback != "" {
		if err := ValidateLocale(fallback); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.LocaleColumn) == "" {
		return ErrLocaleColumnRequired
	}
	if strings.TrimSpace(cfg.TableSuffix) == "" {
		return ErrTableSuffixRequired
	}

	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.LocaleColumn, validation.Match(identifierPattern).Error("must be a plain column name")),
		validation.Field(&cfg.TableSuffix, validation.Match(suffixPattern).Error("must contain letters, digits or underscores")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIdentifierInvalid, err)
	}

	if driver := normalize(cfg.Storage.Driver); driver != "" {
		if !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// ValidateLocale checks that code parses as a BCP 47 language tag.
func ValidateLocale(code string) error {
	if _, err := language.Parse(strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("%w: %q", ErrLocaleInvalid, code)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite3", "sqlite", "postgres", "pgx", "mysql":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "none", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
