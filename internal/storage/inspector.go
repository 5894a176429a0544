package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

var ErrDialectUnsupported = errors.New("storage: schema inspection is not supported for dialect")

// Inspector lists table columns in declaration order.
type Inspector struct {
	db bun.IDB
}

// NewInspector returns an inspector reading the catalog of db.
func NewInspector(db bun.IDB) *Inspector {
	return &Inspector{db: db}
}

// Columns returns the columns of table, empty when the table does not exist.
// A "schema.table" name is looked up in that schema.
func (i *Inspector) Columns(ctx context.Context, table string) ([]string, error) {
	stmt, args, err := columnsStatement(i.db.Dialect().Name(), table)
	if err != nil {
		return nil, err
	}

	var columns []string
	if err := i.db.NewRaw(stmt, args...).Scan(ctx, &columns); err != nil {
		return nil, fmt.Errorf("storage: inspect %s: %w", table, err)
	}
	return columns, nil
}

func columnsStatement(name dialect.Name, table string) (string, []any, error) {
	schemaName, tableName := splitQualified(table)
	switch name {
	case dialect.SQLite:
		if schemaName != "" {
			return "SELECT name FROM pragma_table_info(?, ?) ORDER BY cid", []any{tableName, schemaName}, nil
		}
		return "SELECT name FROM pragma_table_info(?) ORDER BY cid", []any{tableName}, nil
	case dialect.PG:
		if schemaName != "" {
			return "SELECT column_name FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position", []any{schemaName, tableName}, nil
		}
		return "SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? ORDER BY ordinal_position", []any{tableName}, nil
	case dialect.MySQL:
		if schemaName != "" {
			return "SELECT column_name FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position", []any{schemaName, tableName}, nil
		}
		return "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position", []any{tableName}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrDialectUnsupported, name)
	}
}

func splitQualified(table string) (string, string) {
	if idx := strings.LastIndex(table, "."); idx >= 0 {
		return table[:idx], table[idx+1:]
	}
	return "", table
}
