package query

import (
	"fmt"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
)

// Projector narrows a record to a partial record.
type Projector[T any] func(T) ir.Partial

// Projector compiles p. The partial record lists the projected fields in
// projection order; fields the record lacks are left out, and a field
// listed twice appears once. The source record is never modified.
func (e *Engine[T]) Projector(p filter.Projection) (Projector[T], error) {
	type column struct {
		name string
		get  func(T) ir.IRValue
	}

	seen := make(map[string]bool, len(p))
	cols := make([]column, 0, len(p))
	for i, name := range p {
		if name == "" {
			return nil, &filter.Error{Path: fmt.Sprintf("projection[%d]", i), Message: "empty field name"}
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		field, ok := e.schema.Lookup(name)
		if !ok {
			return nil, &filter.Error{Path: fmt.Sprintf("projection[%d]", i), Message: fmt.Sprintf("unknown field %q", name)}
		}
		cols = append(cols, column{name: name, get: field.Get})
	}

	return func(rec T) ir.Partial {
		out := make(ir.Partial, 0, len(cols))
		for _, c := range cols {
			if v := c.get(rec); v != nil {
				out = append(out, ir.IRPair{Key: c.name, Value: v})
			}
		}
		return out
	}, nil
}
