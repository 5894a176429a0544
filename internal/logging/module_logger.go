package logging

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	rootModule     = "translatable"
	storeModule    = "translatable.store"
	queryModule    = "translatable.query"
	writerModule   = "translatable.writer"
	metadataModule = "translatable.metadata"
	localesModule  = "translatable.locales"
	commandsModule = "translatable.commands"
)

const (
	fieldTable  = "table"
	fieldKey    = "key"
	fieldLocale = "locale"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// hands back nil, yields the no-op logger. Every returned logger carries the
// module name as a "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RootLogger returns the logger used by the module registry.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// StoreLogger returns the logger for translation table access.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// QueryLogger returns the logger for the read path.
func QueryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, queryModule)
}

// WriterLogger returns the logger for the write path.
func WriterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, writerModule)
}

// MetadataLogger returns the logger for the translatable attribute registry.
func MetadataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, metadataModule)
}

// LocalesLogger returns the logger for the locale catalog.
func LocalesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localesModule)
}

// CommandsLogger returns the logger for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithEntityContext enriches logger with the table, key and locale of the
// entity being processed. Empty values are skipped.
func WithEntityContext(logger interfaces.Logger, table string, key any, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(table); trimmed != "" {
		fields[fieldTable] = trimmed
	}
	if key != nil {
		if rendered := fmt.Sprint(key); rendered != "" {
			fields[fieldKey] = rendered
		}
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
