package runtimeconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every variable read by LoadEnv.
const EnvPrefix = "TRANSLATABLE_"

// LoadEnv returns DefaultConfig overridden by the TRANSLATABLE_* variables
// present in the environment, validated.
func LoadEnv() (Config, error) {
	return LoadEnvWith(nil)
}

// LoadEnvWith behaves like LoadEnv but reads variables from environment when
// it is non nil instead of the process environment.
func LoadEnvWith(environment map[string]string) (Config, error) {
	cfg := DefaultConfig()
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("translatable config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
