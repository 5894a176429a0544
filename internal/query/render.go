package query

import (
	"github.com/uptrace/bun"
)

func ident(name string) bun.Ident { return bun.Ident(name) }

// Select renders the plan as a select of the base row merged with the
// resolved translatable attributes.
func (p Plan) Select(db bun.IDB) *bun.SelectQuery {
	q := p.from(db).ColumnExpr("?.*", ident(p.Table))
	for _, name := range p.Translatable {
		if len(p.Joins) == 0 {
			break
		}
		format, args := p.ColumnRef(name)
		q = q.ColumnExpr(format+" AS ?", append(args, ident(name))...)
	}
	return p.order(q)
}

// KeySelect renders the plan selecting only the base keys. Bulk writes use it
// to materialise the affected ids before touching any table.
func (p Plan) KeySelect(db bun.IDB) *bun.SelectQuery {
	q := p.from(db).ColumnExpr("?.? AS ?", ident(p.Table), ident(p.KeyColumn), ident(p.KeyColumn))
	return p.order(q)
}

// Count renders the plan for counting rows. Ordering and paging are left out.
func (p Plan) Count(db bun.IDB) *bun.SelectQuery {
	return p.from(db).ColumnExpr("?.?", ident(p.Table), ident(p.KeyColumn))
}

func (p Plan) from(db bun.IDB) *bun.SelectQuery {
	q := db.NewSelect().TableExpr("?", ident(p.Table))

	for _, join := range p.Joins {
		q = q.Join(string(join.Kind)+" ? AS ? ON ?.? = ?.? AND ?.? = ?",
			ident(p.TranslationTable), ident(join.Alias),
			ident(join.Alias), ident(p.ForeignKey), ident(p.Table), ident(p.KeyColumn),
			ident(join.Alias), ident(p.LocaleColumn), join.Locale,
		)
	}

	if p.RequireTranslation {
		q = q.Where("(?.? IS NOT NULL OR ?.? IS NOT NULL)",
			ident(primaryAlias), ident(p.ForeignKey),
			ident(fallbackAlias), ident(p.ForeignKey),
		)
	}

	if len(p.Keys) > 0 {
		q = q.Where("?.? IN (?)", ident(p.Table), ident(p.KeyColumn), bun.In(p.Keys))
	}

	for _, cond := range p.Conditions {
		q = p.where(q, cond)
	}
	return q
}

func (p Plan) where(q *bun.SelectQuery, cond Condition) *bun.SelectQuery {
	if cond.Raw() {
		return q.Where(cond.Expr, cond.Args...)
	}
	format, args := p.ColumnRef(cond.Column)
	switch cond.Op {
	case OpIsNull, OpIsNotNull:
		return q.Where(format+" "+string(cond.Op), args...)
	case OpIn, OpNotIn:
		return q.Where(format+" "+string(cond.Op)+" (?)", append(args, bun.In(cond.Value))...)
	default:
		return q.Where(format+" "+string(cond.Op)+" ?", append(args, cond.Value)...)
	}
}

func (p Plan) order(q *bun.SelectQuery) *bun.SelectQuery {
	for _, order := range p.Orders {
		format, args := p.ColumnRef(order.Column)
		direction := " ASC"
		if order.Desc {
			direction = " DESC"
		}
		q = q.OrderExpr(format+direction, args...)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
