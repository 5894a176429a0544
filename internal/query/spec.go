// Package query composes locale aware reads over a base table and its
// translation table.
//
// Composition is pure: Compose turns a Spec and a resolved locale.Scope into a
// Plan value. Only Plan.Select and Plan.KeySelect touch bun.
package query

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedOperator = errors.New("query: unsupported operator")

// Op is a comparison operator accepted in a Condition.
type Op string

const (
	OpEq        Op = "="
	OpNotEq     Op = "<>"
	OpLt        Op = "<"
	OpLte       Op = "<="
	OpGt        Op = ">"
	OpGte       Op = ">="
	OpLike      Op = "LIKE"
	OpIn        Op = "IN"
	OpNotIn     Op = "NOT IN"
	OpIsNull    Op = "IS NULL"
	OpIsNotNull Op = "IS NOT NULL"
)

var supportedOps = map[Op]struct{}{
	OpEq: {}, OpNotEq: {}, OpLt: {}, OpLte: {}, OpGt: {}, OpGte: {},
	OpLike: {}, OpIn: {}, OpNotIn: {}, OpIsNull: {}, OpIsNotNull: {},
}

// ParseOp normalizes a textual operator. "!=" is accepted as "<>".
func ParseOp(raw string) (Op, error) {
	op := Op(strings.ToUpper(strings.TrimSpace(raw)))
	if op == "!=" {
		op = OpNotEq
	}
	if _, ok := supportedOps[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, raw)
	}
	return op, nil
}

// Condition filters rows. Either Column/Op/Value or a raw Expr with Args is
// set. Column may name a base or a translatable attribute; translatable
// columns are resolved against the joined translation.
type Condition struct {
	Column string
	Op     Op
	Value  any

	Expr string
	Args []any
}

// Raw reports whether the condition is a raw expression.
func (c Condition) Raw() bool { return c.Expr != "" }

// Order sorts by one attribute.
type Order struct {
	Column string
	Desc   bool
}

// Spec is the base query before translation handling.
type Spec struct {
	Conditions []Condition
	Keys       []any
	Orders     []Order
	Limit      int
	Offset     int
}

// Validate checks operators and column names.
func (s Spec) Validate() error {
	for _, cond := range s.Conditions {
		if cond.Raw() {
			continue
		}
		if strings.TrimSpace(cond.Column) == "" {
			return fmt.Errorf("query: condition without column")
		}
		if _, ok := supportedOps[cond.Op]; !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedOperator, cond.Op)
		}
	}
	for _, order := range s.Orders {
		if strings.TrimSpace(order.Column) == "" {
			return fmt.Errorf("query: order without column")
		}
	}
	return nil
}

// Clone returns a deep copy of the slices held by s.
func (s Spec) Clone() Spec {
	out := s
	out.Conditions = append([]Condition(nil), s.Conditions...)
	out.Keys = append([]any(nil), s.Keys...)
	out.Orders = append([]Order(nil), s.Orders...)
	return out
}
