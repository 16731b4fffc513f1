package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/doclog/internal/ir"
)

// Direction is a sort direction: +1 ascending, -1 descending.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// SortKey orders records by one field.
type SortKey struct {
	Field string
	Dir   Direction
}

// SortSpec is an ordered tie-break chain: later keys only decide between
// records that compare equal on every earlier key.
type SortSpec []SortKey

// Asc and Desc are shorthands for building sort specs.
func Asc(field string) SortKey  { return SortKey{Field: field, Dir: Ascending} }
func Desc(field string) SortKey { return SortKey{Field: field, Dir: Descending} }

// Projection lists the fields to keep, in output order.
type Projection []string

// ParseSort parses "name:1,age:-1". A bare field name sorts ascending.
func ParseSort(s string) (SortSpec, error) {
	var spec SortSpec
	for _, part := range splitList(s) {
		field, dirStr, hasDir := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		dir := Ascending
		if hasDir {
			n, err := strconv.Atoi(strings.TrimSpace(dirStr))
			if err != nil {
				return nil, errorf("sort."+field, "direction must be 1 or -1, got %q", dirStr)
			}
			d, err := directionOf(field, ir.IRInt(n))
			if err != nil {
				return nil, err
			}
			dir = d
		}
		if field == "" {
			return nil, errorf("sort", "empty field name in %q", s)
		}
		spec = append(spec, SortKey{Field: field, Dir: dir})
	}
	return spec, nil
}

// ParseProjection parses "name,age".
func ParseProjection(s string) (Projection, error) {
	var proj Projection
	for _, field := range splitList(s) {
		if field == "" {
			return nil, errorf("projection", "empty field name in %q", s)
		}
		proj = append(proj, field)
	}
	return proj, nil
}

// SortFromEntries builds a SortSpec from an ordered field → direction mapping.
func SortFromEntries(entries []Entry) (SortSpec, error) {
	spec := make(SortSpec, 0, len(entries))
	for _, e := range entries {
		dir, err := directionOf(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		spec = append(spec, SortKey{Field: e.Key, Dir: dir})
	}
	return spec, nil
}

// ProjectionFromEntries builds a Projection from an ordered field → flag
// mapping. Only fields whose flag is truthy are kept.
func ProjectionFromEntries(entries []Entry) Projection {
	proj := make(Projection, 0, len(entries))
	for _, e := range entries {
		if ir.Truthy(e.Value) {
			proj = append(proj, e.Key)
		}
	}
	return proj
}

// Entry is one key/value pair of an ordered mapping.
type Entry struct {
	Key   string
	Value ir.IRValue
}

// EntriesFromJSON decodes a flat JSON object, preserving key order.
func EntriesFromJSON(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errorf("", "malformed JSON: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errorf("", "expected a JSON object")
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errorf("", "malformed JSON: %v", err)
		}
		key, _ := keyTok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, errorf(key, "malformed JSON: %v", err)
		}
		v, err := ir.FromGo(raw)
		if err != nil {
			return nil, errorf(key, "unsupported value: %v", err)
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errorf("", "malformed JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errorf("", "unexpected data after JSON object")
	}
	return entries, nil
}

// EntriesFromYAML reads a YAML mapping node, preserving key order.
func EntriesFromYAML(node *yaml.Node) ([]Entry, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, errorf("", "expected a mapping at line %d", node.Line)
	}

	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var raw any
		if err := valNode.Decode(&raw); err != nil {
			return nil, errorf(keyNode.Value, "line %d: %v", valNode.Line, err)
		}
		v, err := ir.FromGo(raw)
		if err != nil {
			return nil, errorf(keyNode.Value, "line %d: %v", valNode.Line, err)
		}
		entries = append(entries, Entry{Key: keyNode.Value, Value: v})
	}
	return entries, nil
}

func directionOf(field string, v ir.IRValue) (Direction, error) {
	if n, ok := v.(ir.IRInt); ok {
		switch n {
		case 1:
			return Ascending, nil
		case -1:
			return Descending, nil
		}
	}
	b, _ := ir.MarshalCanonical(v)
	return 0, errorf("sort."+field, "direction must be 1 or -1, got %s", b)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// String renders the spec in the form ParseSort accepts.
func (s SortSpec) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = fmt.Sprintf("%s:%d", k.Field, k.Dir)
	}
	return strings.Join(parts, ",")
}
