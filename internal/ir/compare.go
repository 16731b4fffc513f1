package ir

import (
	"cmp"
	"math"
	"strings"
)

// Kind is the coarse type of an IRValue. Kinds are ranked so that values of
// different kinds still have a total order when sorting.
type Kind int

const (
	KindMissing Kind = iota // field absent from the record (nil IRValue)
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of v. A nil value is KindMissing.
func KindOf(v IRValue) Kind {
	switch v.(type) {
	case nil:
		return KindMissing
	case IRNull:
		return KindNull
	case IRBool:
		return KindBool
	case IRInt, IRFloat:
		return KindNumber
	case IRString:
		return KindString
	case IRArray:
		return KindArray
	case IRObject, Partial:
		return KindObject
	default:
		return KindMissing
	}
}

// Order compares two values under their natural ordering: numbers
// numerically (int and float mix freely), strings by bytes, bools with
// false < true. ok is false when the kinds are not mutually ordered, in
// which case neither $gt nor $lt can hold.
func Order(a, b IRValue) (c int, ok bool) {
	switch av := a.(type) {
	case IRInt:
		switch bv := b.(type) {
		case IRInt:
			return cmp.Compare(av, bv), true
		case IRFloat:
			return cmp.Compare(float64(av), float64(bv)), true
		}
	case IRFloat:
		switch bv := b.(type) {
		case IRInt:
			return cmp.Compare(float64(av), float64(bv)), true
		case IRFloat:
			return cmp.Compare(av, bv), true
		}
	case IRString:
		if bv, isStr := b.(IRString); isStr {
			return strings.Compare(string(av), string(bv)), true
		}
	case IRBool:
		if bv, isBool := b.(IRBool); isBool {
			return cmp.Compare(boolRank(bool(av)), boolRank(bool(bv))), true
		}
	}
	return 0, false
}

// Compare is a total order over IRValues used for sorting. Ordered kinds use
// Order; otherwise values fall back to kind rank, and arrays/objects of the
// same kind compare by their canonical encoding.
func Compare(a, b IRValue) int {
	if c, ok := Order(a, b); ok {
		return c
	}
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case KindArray, KindObject:
		ea, errA := MarshalCanonical(a)
		eb, errB := MarshalCanonical(b)
		if errA == nil && errB == nil {
			return strings.Compare(string(ea), string(eb))
		}
	}
	return 0
}

// Equal reports strict equality: same kind and same value. Numbers compare
// by numeric value regardless of int/float representation. Arrays and
// objects compare structurally. A missing value equals nothing.
func Equal(a, b IRValue) bool {
	switch av := a.(type) {
	case nil:
		return false
	case IRNull:
		_, isNull := b.(IRNull)
		return isNull
	case IRInt, IRFloat, IRString, IRBool:
		c, ok := Order(av, b)
		return ok && c == 0
	case IRArray:
		bv, isArr := b.(IRArray)
		if !isArr || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv, isObj := b.(IRObject)
		if !isObj || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !Equal(v, bv[k]) {
				return false
			}
		}
		return true
	}
	return false
}

// Truthy reports whether v would count as "true" in a boolean context of a
// dynamically typed host: zero numbers, the empty string, false, null and
// missing values are falsy; everything else (including empty arrays and
// objects) is truthy.
func Truthy(v IRValue) bool {
	switch val := v.(type) {
	case nil, IRNull:
		return false
	case IRBool:
		return bool(val)
	case IRInt:
		return val != 0
	case IRFloat:
		return val != 0 && !math.IsNaN(float64(val))
	case IRString:
		return val != ""
	default:
		return true
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
