package translatable

import "github.com/goliatone/go-translatable/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired  = runtimeconfig.ErrDefaultLocaleRequired
	ErrLocaleInvalid          = runtimeconfig.ErrLocaleInvalid
	ErrLocaleColumnRequired   = runtimeconfig.ErrLocaleColumnRequired
	ErrTableSuffixRequired    = runtimeconfig.ErrTableSuffixRequired
	ErrIdentifierInvalid      = runtimeconfig.ErrIdentifierInvalid
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid        = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	StorageConfig = runtimeconfig.StorageConfig
	CacheConfig   = runtimeconfig.CacheConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	LocalesConfig = runtimeconfig.LocalesConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads DefaultConfig overridden by TRANSLATABLE_* environment
// variables.
func LoadConfig() (Config, error) {
	return runtimeconfig.LoadEnv()
}
