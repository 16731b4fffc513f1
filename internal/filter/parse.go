package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/doclog/internal/ir"
)

// Error reports a malformed filter, sort or projection expression.
type Error struct {
	// Path locates the offending element, e.g. "$or[1].age.$in".
	Path string

	// Message describes what is wrong.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path == "" {
		return "invalid filter: " + e.Message
	}
	return fmt.Sprintf("invalid filter at %s: %s", e.Path, e.Message)
}

func errorf(path, format string, args ...any) *Error {
	return &Error{Path: path, Message: fmt.Sprintf(format, args...)}
}

// ParseJSON parses a JSON object into a Filter.
func ParseJSON(data []byte) (Filter, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errorf("", "malformed JSON: %v", err)
	}
	if dec.More() {
		return nil, errorf("", "unexpected data after filter object")
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errorf("", "filter must be a JSON object, got %s", describe(raw))
	}
	return Parse(m)
}

// ParseYAML parses a YAML mapping into a Filter.
func ParseYAML(data []byte) (Filter, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errorf("", "malformed YAML: %v", err)
	}
	if raw == nil {
		return &Conditional{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errorf("", "filter must be a mapping, got %s", describe(raw))
	}
	return Parse(m)
}

// Parse classifies a decoded filter mapping and builds the matching variant.
//
// Detection order: a mapping with $and or $or is a Multi, otherwise one
// with $text is a Text, otherwise it is a Conditional. A mapping that mixes
// shapes is rejected rather than interpreted.
func Parse(m map[string]any) (Filter, error) {
	_, hasAnd := m[KeyAnd]
	_, hasOr := m[KeyOr]
	_, hasText := m[KeyText]

	switch {
	case hasAnd && hasOr:
		return nil, errorf("", "%s and %s cannot be combined", KeyAnd, KeyOr)
	case hasAnd || hasOr:
		return parseMulti(m, hasAnd)
	case hasText:
		return parseText(m)
	default:
		return parseConditional(m, "")
	}
}

func parseMulti(m map[string]any, isAnd bool) (*Multi, error) {
	key, op := KeyOr, LogicalOr
	if isAnd {
		key, op = KeyAnd, LogicalAnd
	}
	if extra := otherKeys(m, key); len(extra) > 0 {
		return nil, errorf("", "%s cannot be combined with %s", key, strings.Join(extra, ", "))
	}

	list, ok := m[key].([]any)
	if !ok {
		return nil, errorf(key, "value must be a list, got %s", describe(m[key]))
	}

	multi := &Multi{Op: op, Filters: make([]*Conditional, 0, len(list))}
	for i, item := range list {
		path := fmt.Sprintf("%s[%d]", key, i)
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, errorf(path, "element must be an object, got %s", describe(item))
		}
		cond, err := parseConditional(sub, path)
		if err != nil {
			return nil, err
		}
		multi.Filters = append(multi.Filters, cond)
	}
	return multi, nil
}

func parseText(m map[string]any) (*Text, error) {
	if extra := otherKeys(m, KeyText); len(extra) > 0 {
		return nil, errorf("", "%s cannot be combined with %s", KeyText, strings.Join(extra, ", "))
	}
	q, ok := m[KeyText].(string)
	if !ok {
		return nil, errorf(KeyText, "value must be a string, got %s", describe(m[KeyText]))
	}
	return &Text{Query: q}, nil
}

func parseConditional(m map[string]any, base string) (*Conditional, error) {
	fields := make(map[string]Ops, len(m))
	for field, raw := range m {
		path := joinPath(base, field)
		if strings.HasPrefix(field, "$") {
			return nil, errorf(path, "unexpected reserved key in conditional filter")
		}
		opMap, ok := raw.(map[string]any)
		if !ok {
			return nil, errorf(path, "expected an operator object such as {\"$eq\": ...}, got %s", describe(raw))
		}
		ops, err := parseOps(opMap, path)
		if err != nil {
			return nil, err
		}
		fields[field] = ops
	}
	return Where(fields), nil
}

func parseOps(m map[string]any, base string) (Ops, error) {
	var ops Ops
	for op, raw := range m {
		path := joinPath(base, op)
		switch op {
		case OpEq, OpGt, OpLt:
			v, err := ir.FromGo(raw)
			if err != nil {
				return Ops{}, errorf(path, "unsupported operand: %v", err)
			}
			switch op {
			case OpEq:
				ops.Eq = v
			case OpGt:
				ops.Gt = v
			case OpLt:
				ops.Lt = v
			}
		case OpIn:
			list, ok := raw.([]any)
			if !ok {
				return Ops{}, errorf(path, "operand must be a list, got %s", describe(raw))
			}
			arr := make(ir.IRArray, 0, len(list))
			for i, elem := range list {
				v, err := ir.FromGo(elem)
				if err != nil {
					return Ops{}, errorf(fmt.Sprintf("%s[%d]", path, i), "unsupported operand: %v", err)
				}
				arr = append(arr, v)
			}
			ops.In = arr
		default:
			return Ops{}, errorf(path, "unknown operator %q (supported: %s, %s, %s, %s)", op, OpEq, OpGt, OpLt, OpIn)
		}
	}
	return ops, nil
}

func otherKeys(m map[string]any, key string) []string {
	var extra []string
	for k := range m {
		if k != key {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return extra
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, int, int64, uint64, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
