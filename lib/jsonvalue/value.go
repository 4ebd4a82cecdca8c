// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsonvalue provides the parsed document representation used
// throughout JSONLens: a tagged union over the six JSON kinds with
// insertion-ordered object members, plus the canonical serialization
// that content hashes are computed over.
//
// Object member order matters. The stored and displayed form of a
// document preserves the key order the author wrote, so the value
// model keeps members as an ordered slice rather than a map, and the
// canonical encoder emits them in that order. Sorting keys would break
// round-trip fidelity with the stored document.
package jsonvalue

// Kind identifies which arm of the value union a Value holds.
type Kind uint8

const (
	// KindNull is the JSON null value.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is a JSON number, kept as its source literal.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is an ordered list of values.
	KindArray
	// KindObject is an insertion-ordered list of key/value members.
	KindObject
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
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
		return "invalid"
	}
}

// Value is one node of a parsed JSON document. The zero Value is
// null. Values are built by Parse or by the constructor functions and
// are not modified afterward.
type Value struct {
	kind    Kind
	boolean bool
	number  string
	str     string
	items   []*Value
	members []Member
}

// Member is one key/value pair of an object, in insertion order.
// Duplicate keys are preserved in order of appearance.
type Member struct {
	Key   string
	Value *Value
}

// Null returns the JSON null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a JSON boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, boolean: b} }

// Number returns a JSON number from its literal text. The literal
// must be a valid JSON number; it is emitted verbatim by the canonical
// encoder, so "1.0" and "1" are distinct values.
func Number(literal string) *Value { return &Value{kind: KindNumber, number: literal} }

// String returns a JSON string value.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Array returns a JSON array holding the given elements.
func Array(items ...*Value) *Value { return &Value{kind: KindArray, items: items} }

// Object returns a JSON object holding the given members in order.
func Object(members ...Member) *Value { return &Value{kind: KindObject, members: members} }

// Kind reports which arm of the union the value holds.
func (v *Value) Kind() Kind { return v.kind }

// IsContainer reports whether the value is an array or object.
func (v *Value) IsContainer() bool {
	return v.kind == KindArray || v.kind == KindObject
}

// BoolValue returns the boolean for a KindBool value, false otherwise.
func (v *Value) BoolValue() bool { return v.boolean }

// NumberLiteral returns the source literal for a KindNumber value,
// "" otherwise.
func (v *Value) NumberLiteral() string { return v.number }

// StringValue returns the string for a KindString value, "" otherwise.
func (v *Value) StringValue() string { return v.str }

// Items returns the elements of a KindArray value. The returned slice
// is shared, not copied; callers must not modify it.
func (v *Value) Items() []*Value { return v.items }

// Members returns the members of a KindObject value in insertion
// order. The returned slice is shared, not copied.
func (v *Value) Members() []Member { return v.members }

// ChildCount returns the number of direct children: array length,
// object member count, or 0 for scalars.
func (v *Value) ChildCount() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}
