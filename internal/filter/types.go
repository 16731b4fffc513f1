package filter

import (
	"slices"
	"strings"

	"github.com/roach88/doclog/internal/ir"
)

// Reserved keys that identify filter shapes and operators.
const (
	KeyAnd  = "$and"
	KeyOr   = "$or"
	KeyText = "$text"

	OpEq = "$eq"
	OpGt = "$gt"
	OpLt = "$lt"
	OpIn = "$in"
)

// Filter is a sealed interface over the three filter shapes:
// *Conditional, *Multi and *Text.
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Ops is the operator set applied to one field. A nil operand means the
// operator is absent. In uses nil for "absent" and a non-nil (possibly
// empty) slice for "present".
type Ops struct {
	Eq ir.IRValue
	Gt ir.IRValue
	Lt ir.IRValue
	In ir.IRArray
}

// IsEmpty reports whether no operator is present.
func (o Ops) IsEmpty() bool {
	return o.Eq == nil && o.Gt == nil && o.Lt == nil && o.In == nil
}

// FieldCondition binds an operator set to a field name.
type FieldCondition struct {
	Field string
	Ops   Ops
}

// Conditional matches when every field condition holds. A Conditional with
// no conditions matches every record.
//
// Conditions are kept sorted by field name so that two filters built from
// the same mapping are identical regardless of map iteration order.
type Conditional struct {
	Conditions []FieldCondition
}

func (*Conditional) filterNode() {}

// Where builds a Conditional from a field → operator set mapping.
func Where(fields map[string]Ops) *Conditional {
	conds := make([]FieldCondition, 0, len(fields))
	for field, ops := range fields {
		conds = append(conds, FieldCondition{Field: field, Ops: ops})
	}
	slices.SortFunc(conds, func(a, b FieldCondition) int {
		return strings.Compare(a.Field, b.Field)
	})
	return &Conditional{Conditions: conds}
}

// Eq is shorthand for a single-field $eq Conditional.
func Eq(field string, v ir.IRValue) *Conditional {
	return Where(map[string]Ops{field: {Eq: v}})
}

// LogicalOp selects the fold applied by a Multi filter.
type LogicalOp string

const (
	// LogicalAnd requires every sub-filter to match; empty matches all.
	LogicalAnd LogicalOp = KeyAnd
	// LogicalOr requires at least one sub-filter to match; empty matches none.
	LogicalOr LogicalOp = KeyOr
)

// Multi is a boolean composite over Conditional filters.
type Multi struct {
	Op      LogicalOp
	Filters []*Conditional
}

func (*Multi) filterNode() {}

// And builds an $and Multi filter.
func And(filters ...*Conditional) *Multi {
	return &Multi{Op: LogicalAnd, Filters: filters}
}

// Or builds an $or Multi filter.
func Or(filters ...*Conditional) *Multi {
	return &Multi{Op: LogicalOr, Filters: filters}
}

// Text is a free-text query. Words are separated by whitespace and each one
// is matched case-insensitively as a whole word against the configured
// full-text fields.
type Text struct {
	Query string
}

func (*Text) filterNode() {}

// Words splits the query on whitespace.
func (t *Text) Words() []string {
	return strings.Fields(t.Query)
}

// Search builds a Text filter.
func Search(query string) *Text {
	return &Text{Query: query}
}

// Shape names the variant of f for logs and error messages.
func Shape(f Filter) string {
	switch f.(type) {
	case *Conditional:
		return "conditional"
	case *Multi:
		return "multi"
	case *Text:
		return "text"
	default:
		return "unknown"
	}
}
