package query

import (
	"fmt"
	"regexp"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
)

// Matcher reports whether a record satisfies a filter.
type Matcher[T any] func(T) bool

// Matcher compiles f against the engine's schema. The filter is validated
// first, so a nil result always comes with an error.
func (e *Engine[T]) Matcher(f filter.Filter) (Matcher[T], error) {
	if err := filter.Validate(f).Err(); err != nil {
		return nil, err
	}

	switch f := f.(type) {
	case *filter.Conditional:
		return e.compileConditional(f, "")
	case *filter.Multi:
		return e.compileMulti(f)
	case *filter.Text:
		return e.compileText(f), nil
	default:
		return nil, &filter.Error{Message: fmt.Sprintf("unknown filter type %T", f)}
	}
}

// clause is one field condition with its accessor resolved.
type clause[T any] struct {
	get func(T) ir.IRValue
	ops filter.Ops
}

// eval applies every present operator; all of them run even once the
// result is known.
func (c clause[T]) eval(rec T) bool {
	v := c.get(rec)
	ok := true
	if c.ops.Eq != nil {
		ok = ir.Equal(v, c.ops.Eq) && ok
	}
	if c.ops.Gt != nil {
		ok = ordered(v, c.ops.Gt, 1) && ok
	}
	if c.ops.Lt != nil {
		ok = ordered(v, c.ops.Lt, -1) && ok
	}
	if c.ops.In != nil {
		ok = member(v, c.ops.In) && ok
	}
	return ok
}

// ordered reports whether v compares to operand with the given sign.
func ordered(v, operand ir.IRValue, sign int) bool {
	c, ok := ir.Order(v, operand)
	return ok && c == sign
}

func member(v ir.IRValue, list ir.IRArray) bool {
	for _, elem := range list {
		if ir.Equal(v, elem) {
			return true
		}
	}
	return false
}

func (e *Engine[T]) compileConditional(c *filter.Conditional, path string) (Matcher[T], error) {
	clauses := make([]clause[T], 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		field, ok := e.schema.Lookup(cond.Field)
		if !ok {
			return nil, &filter.Error{Path: joinPath(path, cond.Field), Message: "unknown field"}
		}
		ops := e.applyMode(cond.Ops)
		if err := checkOperands(field, ops, joinPath(path, cond.Field)); err != nil {
			return nil, err
		}
		if ops.IsEmpty() {
			continue
		}
		clauses = append(clauses, clause[T]{get: field.Get, ops: ops})
	}

	return func(rec T) bool {
		result := true
		for _, cl := range clauses {
			result = cl.eval(rec) && result
		}
		return result
	}, nil
}

// applyMode drops operators the operand mode says to skip.
func (e *Engine[T]) applyMode(ops filter.Ops) filter.Ops {
	if e.opts.mode != OperandTruthy {
		return ops
	}
	if !ir.Truthy(ops.Eq) {
		ops.Eq = nil
	}
	if !ir.Truthy(ops.Gt) {
		ops.Gt = nil
	}
	if !ir.Truthy(ops.Lt) {
		ops.Lt = nil
	}
	return ops
}

// checkOperands rejects $gt/$lt operands that can never be ordered against
// a field of declared kind.
func checkOperands[T any](field Field[T], ops filter.Ops, path string) error {
	if field.Kind == ir.KindMissing {
		return nil
	}
	for _, o := range []struct {
		name    string
		operand ir.IRValue
	}{{filter.OpGt, ops.Gt}, {filter.OpLt, ops.Lt}} {
		if o.operand == nil {
			continue
		}
		if k := ir.KindOf(o.operand); k != field.Kind {
			return &filter.Error{
				Path:    joinPath(path, o.name),
				Message: fmt.Sprintf("%s operand cannot be compared with %s field", k, field.Kind),
			}
		}
	}
	return nil
}

func (e *Engine[T]) compileMulti(m *filter.Multi) (Matcher[T], error) {
	subs := make([]Matcher[T], 0, len(m.Filters))
	for i, sub := range m.Filters {
		match, err := e.compileConditional(sub, fmt.Sprintf("%s[%d]", m.Op, i))
		if err != nil {
			return nil, err
		}
		subs = append(subs, match)
	}

	if m.Op == filter.LogicalAnd {
		return func(rec T) bool {
			result := true
			for _, match := range subs {
				result = match(rec) && result
			}
			return result
		}, nil
	}
	return func(rec T) bool {
		result := false
		for _, match := range subs {
			result = match(rec) || result
		}
		return result
	}, nil
}

// compileText builds one whole-word, case-insensitive pattern per query
// word. A record matches when any pattern matches any string-valued text
// field. An empty query, or an engine without text fields, matches nothing.
func (e *Engine[T]) compileText(t *filter.Text) Matcher[T] {
	words := t.Words()
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(norm.NFC.String(w)) + `\b`)
	}
	fields := e.textGetters

	return func(rec T) bool {
		for _, get := range fields {
			s, ok := get(rec).(ir.IRString)
			if !ok {
				continue
			}
			text := norm.NFC.String(string(s))
			for _, p := range patterns {
				if p.MatchString(text) {
					return true
				}
			}
		}
		return false
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
