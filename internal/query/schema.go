package query

import (
	"fmt"
	"slices"

	"github.com/roach88/doclog/internal/ir"
)

// Field describes one addressable field of record type T.
type Field[T any] struct {
	// Name is the field name used in filters, sort specs and projections.
	Name string

	// Kind is the declared value kind. KindMissing means "any kind".
	Kind ir.Kind

	// Get extracts the value. A nil result means the field is absent.
	Get func(T) ir.IRValue
}

// String declares a string field.
func String[T any](name string, get func(T) string) Field[T] {
	return Field[T]{Name: name, Kind: ir.KindString, Get: func(r T) ir.IRValue {
		return ir.IRString(get(r))
	}}
}

// Int declares an integer field.
func Int[T any](name string, get func(T) int64) Field[T] {
	return Field[T]{Name: name, Kind: ir.KindNumber, Get: func(r T) ir.IRValue {
		return ir.IRInt(get(r))
	}}
}

// Float declares a floating-point field.
func Float[T any](name string, get func(T) float64) Field[T] {
	return Field[T]{Name: name, Kind: ir.KindNumber, Get: func(r T) ir.IRValue {
		return ir.IRFloat(get(r))
	}}
}

// Bool declares a boolean field.
func Bool[T any](name string, get func(T) bool) Field[T] {
	return Field[T]{Name: name, Kind: ir.KindBool, Get: func(r T) ir.IRValue {
		return ir.IRBool(get(r))
	}}
}

// Value declares a field of any kind, e.g. an optional or nested value.
func Value[T any](name string, get func(T) ir.IRValue) Field[T] {
	return Field[T]{Name: name, Get: get}
}

// Schema is the field-descriptor table of record type T. It is built once
// and shared by every query of an Engine.
type Schema[T any] struct {
	fields  map[string]Field[T]
	order   []string
	dynamic func(T, string) ir.IRValue
}

// NewSchema builds a schema from field descriptors. Names must be unique,
// non-empty and must not start with '$'.
func NewSchema[T any](fields ...Field[T]) (*Schema[T], error) {
	s := &Schema[T]{fields: make(map[string]Field[T], len(fields))}
	for _, f := range fields {
		switch {
		case f.Name == "":
			return nil, fmt.Errorf("schema: empty field name")
		case f.Name[0] == '$':
			return nil, fmt.Errorf("schema: field %q uses a reserved prefix", f.Name)
		case f.Get == nil:
			return nil, fmt.Errorf("schema: field %q has no accessor", f.Name)
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, fmt.Errorf("schema: field %q declared twice", f.Name)
		}
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// DocumentSchema addresses the top-level keys of schemaless documents.
// Every field name is accepted; a key the document lacks is absent.
func DocumentSchema() *Schema[ir.IRObject] {
	return &Schema[ir.IRObject]{
		dynamic: func(doc ir.IRObject, name string) ir.IRValue {
			if v, ok := doc[name]; ok {
				return v
			}
			return nil
		},
	}
}

// Names lists the declared fields in declaration order. A document schema
// has none.
func (s *Schema[T]) Names() []string {
	return slices.Clone(s.order)
}

// Lookup returns the descriptor for name.
func (s *Schema[T]) Lookup(name string) (Field[T], bool) {
	if f, ok := s.fields[name]; ok {
		return f, true
	}
	if s.dynamic != nil {
		dyn := s.dynamic
		return Field[T]{Name: name, Get: func(r T) ir.IRValue { return dyn(r, name) }}, true
	}
	return Field[T]{}, false
}

// accessor resolves name or reports it as unknown.
func (s *Schema[T]) accessor(name string) (func(T) ir.IRValue, error) {
	f, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	return f.Get, nil
}
