package translatable

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRegistered = errors.New("translatable: entity type already registered")
	ErrNotRegistered     = errors.New("translatable: entity type not registered")
	ErrDatabaseRequired  = errors.New("translatable: database handle is required")
)

// NotFoundError is returned when a lookup by key finds no base row.
type NotFoundError struct {
	Resource string
	Key      any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.Key)
}

func wrapReadError(table string, err error) error {
	return fmt.Errorf("translatable: select %s: %w", table, err)
}
