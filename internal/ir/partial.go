package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Partial is a record narrowed to a chosen subset of fields. Unlike
// IRObject it keeps its fields in construction order, and that order is
// preserved when it is marshaled.
type Partial []IRPair

func (Partial) irValue() {}

// Get returns the value stored under key.
func (p Partial) Get(key string) (IRValue, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in order.
func (p Partial) Keys() []string {
	keys := make([]string, len(p))
	for i, pair := range p {
		keys[i] = pair.Key
	}
	return keys
}

// Object converts the partial record to an IRObject, dropping field order.
func (p Partial) Object() IRObject {
	return NewIRObjectFromPairs(p...)
}

// MarshalJSON implements json.Marshaler, emitting fields in order.
func (p Partial) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, pair := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", pair.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalIRValue(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", pair.Key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
