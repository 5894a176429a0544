package writer

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrNotPersisted       = errors.New("writer: entity is not persisted")
	ErrTranslatableColumn = errors.New("writer: column is stored in the translation table")
)

// PartialWriteError reports a composite write that failed after some of its
// statements were committed. It is only returned when writes run without a
// transaction. Committed lists what was already written: table names for
// single entity writes and locale codes for batch saves.
type PartialWriteError struct {
	Operation string
	Key       any
	Committed []string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("writer: %s of %v failed after committing [%s]: %v",
		e.Operation, e.Key, strings.Join(e.Committed, ", "), e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

func notPersisted(operation string) error {
	return goerrors.Wrap(ErrNotPersisted, goerrors.CategoryValidation, operation+" requires a persisted entity").
		WithTextCode("ENTITY_NOT_PERSISTED")
}

func translatableColumn(column string) error {
	return goerrors.Wrap(ErrTranslatableColumn, goerrors.CategoryValidation,
		fmt.Sprintf("column %q cannot be changed arithmetically", column)).
		WithTextCode("TRANSLATABLE_COLUMN")
}
