package filter

import (
	"fmt"
	"strings"
)

// ValidationResult lists the problems found in a filter.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each structural defect, in traversal order.
	Problems []string
}

// Err converts the result to an *Error, or nil when the filter is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Message: strings.Join(r.Problems, "; ")}
}

// Validate checks a filter built in code (rather than by Parse) for shapes
// the evaluator cannot interpret: nil variants, unknown logical operators,
// empty field names and reserved keys used as field names.
//
// Validate is a pure function with no side effects.
func Validate(f Filter) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateFilter(f)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateFilter(f Filter) {
	switch filter := f.(type) {
	case nil:
		v.addProblem("nil filter")
	case *Conditional:
		v.validateConditional(filter, "")
	case *Multi:
		v.validateMulti(filter)
	case *Text:
		if filter == nil {
			v.addProblem("nil text filter")
		}
	default:
		v.addProblem("unknown filter type %T", f)
	}
}

func (v *validator) validateMulti(m *Multi) {
	if m == nil {
		v.addProblem("nil multi filter")
		return
	}
	if m.Op != LogicalAnd && m.Op != LogicalOr {
		v.addProblem("unknown logical operator %q", m.Op)
	}
	for i, sub := range m.Filters {
		v.validateConditional(sub, fmt.Sprintf("%s[%d]", m.Op, i))
	}
}

func (v *validator) validateConditional(c *Conditional, path string) {
	if c == nil {
		v.addProblem("%s: nil conditional filter", orRoot(path))
		return
	}
	seen := make(map[string]bool, len(c.Conditions))
	for _, cond := range c.Conditions {
		switch {
		case cond.Field == "":
			v.addProblem("%s: empty field name", orRoot(path))
		case strings.HasPrefix(cond.Field, "$"):
			v.addProblem("%s: reserved key %q used as field name", orRoot(path), cond.Field)
		case seen[cond.Field]:
			v.addProblem("%s: field %q listed twice", orRoot(path), cond.Field)
		}
		seen[cond.Field] = true
	}
}

func orRoot(path string) string {
	if path == "" {
		return "filter"
	}
	return path
}
