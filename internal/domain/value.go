// Package domain contains the pure value types shared by every layer of the
// pipeline engine: the tagged Value union, the ordered Record map, compiled
// Templates, and the error taxonomy. Nothing in this package performs I/O.
package domain

import (
	"fmt"
	"hash/maphash"
	"sort"
	"time"
)

// Kind tags which alternative of Value is populated.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindInt
	KindTime
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged sum of the scalar and collection types a Record or
// ModuleArgs entry may hold: bool, string, signed integer, UTC timestamp,
// ordered list of Value, and string->Value mapping. The zero Value is the
// boolean false.
type Value struct {
	kind Kind
	b    bool
	s    string
	i    int64
	t    time.Time
	list []Value
	m    map[string]Value
}

// BoolValue constructs a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue constructs a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue constructs a signed-integer Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// TimeValue constructs a UTC-timestamp Value. The time is normalized to UTC.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t.UTC()} }

// ListValue constructs an ordered-list Value. The slice is copied.
func ListValue(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// MapValue constructs a string-keyed Value. The map is copied.
func MapValue(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// Kind reports which alternative this Value holds.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload and whether the Value is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string payload and whether the Value is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the integer payload and whether the Value is an int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsTime returns the timestamp payload and whether the Value is a time.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }

// AsList returns the list payload and whether the Value is a list.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the map payload and whether the Value is a map.
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// String renders a human-readable form; Template rendering does not call it.
// Only string-kind values render as their bare content; every other kind
// renders a debug form (callers that need the literal string must check
// Kind() first, per the Template substitution rule in SPEC_FULL.md §4.1).
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.s
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindList:
		return fmt.Sprintf("%v", v.list)
	case KindMap:
		return fmt.Sprintf("%v", v.m)
	default:
		return ""
	}
}

// Equal reports whether v and other hold the same kind and payload.
// List comparison is positional; map comparison is order-insensitive.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindTime:
		return v.t.Equal(other.t)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, mv := range v.m {
			ov, ok := other.m[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// hashSeed is process-global so that two Values with the same content hash the
// same within a run; it deliberately does not need to be stable across runs.
var hashSeed = maphash.MakeSeed()

// Hash returns an order-insensitive hash of the Value: maps sort their keys
// before mixing (so two maps built in different insertion order but with
// equal content hash identically); lists hash positionally. Dates hash by
// their instant (UnixNano), not by their string representation.
func (v Value) Hash() uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	v.mix(&h)
	return h.Sum64()
}

func (v Value) mix(h *maphash.Hash) {
	_, _ = h.Write([]byte{byte(v.kind)})
	switch v.kind {
	case KindBool:
		if v.b {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	case KindString:
		_, _ = h.WriteString(v.s)
	case KindInt:
		var buf [8]byte
		putInt64(buf[:], v.i)
		_, _ = h.Write(buf[:])
	case KindTime:
		var buf [8]byte
		putInt64(buf[:], v.t.UnixNano())
		_, _ = h.Write(buf[:])
	case KindList:
		for _, item := range v.list {
			item.mix(h)
		}
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = h.WriteString(k)
			v.m[k].mix(h)
		}
	}
}

func putInt64(buf []byte, n int64) {
	u := uint64(n)
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
}
