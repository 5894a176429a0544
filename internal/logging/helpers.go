package logging

import (
	"maps"

	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// WithFields attaches fields to logger when it implements FieldsLogger and
// returns it unchanged otherwise. The map is copied before it is handed over.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return fieldsLogger.WithFields(copied)
}
