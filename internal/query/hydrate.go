package query

import (
	"github.com/goliatone/go-translatable/internal/attributes"
	"github.com/goliatone/go-translatable/internal/entity"
	"github.com/goliatone/go-translatable/internal/locale"
)

// Hydrate turns scanned rows into persisted entities. Each entity carries the
// scope locale without being marked as locale changed, so a later save writes
// back to the row it was read from.
func Hydrate(desc *entity.Descriptor, state *locale.State, scope locale.Scope, rows []map[string]any) []*entity.Entity {
	out := make([]*entity.Entity, 0, len(rows))
	for _, row := range rows {
		attributes.Normalize(row)
		for _, name := range desc.Translatable.Names() {
			if _, ok := row[name]; !ok {
				row[name] = nil
			}
		}
		lc := locale.NewContext(state, desc.Defaults)
		lc.Load(scope.Locale)
		out = append(out, entity.Hydrate(desc, lc, row))
	}
	return out
}
