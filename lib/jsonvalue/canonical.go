// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"bytes"
	"fmt"
)

// Encode serializes a value into its canonical form: two-space
// indentation, one member or element per line, object keys in
// insertion order, number literals verbatim. This is the exact byte
// representation documents are stored and displayed as, and the
// representation content hashes are computed over — two documents
// that differ only in incidental source whitespace encode to the same
// bytes, while key order and number spelling are preserved.
//
// The encoder uses an explicit frame stack, mirroring the analyzer's
// traversal, so deeply nested values cannot exhaust the call stack.
func Encode(root *Value) []byte {
	var buf bytes.Buffer
	encode(&buf, root)
	return buf.Bytes()
}

// encodeFrame tracks one open container during encoding.
type encodeFrame struct {
	value *Value
	next  int
}

func encode(buf *bytes.Buffer, root *Value) {
	var stack []encodeFrame

	// open writes a value's opening text. Non-empty containers are
	// pushed and report true; scalars and empty containers are written
	// whole.
	open := func(v *Value) bool {
		switch v.kind {
		case KindObject:
			if len(v.members) == 0 {
				buf.WriteString("{}")
				return false
			}
			buf.WriteString("{\n")
		case KindArray:
			if len(v.items) == 0 {
				buf.WriteString("[]")
				return false
			}
			buf.WriteString("[\n")
		default:
			writeScalar(buf, v)
			return false
		}
		stack = append(stack, encodeFrame{value: v})
		return true
	}

	open(root)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		v := top.value

		if top.next >= v.ChildCount() {
			buf.WriteByte('\n')
			writeIndent(buf, len(stack)-1)
			if v.kind == KindObject {
				buf.WriteByte('}')
			} else {
				buf.WriteByte(']')
			}
			stack = stack[:len(stack)-1]
			continue
		}

		// The separator after a child is written lazily, when the next
		// child begins, so it lands after whatever the child emitted —
		// a scalar or a closing bracket.
		if top.next > 0 {
			buf.WriteString(",\n")
		}

		index := top.next
		top.next++

		writeIndent(buf, len(stack))

		var child *Value
		if v.kind == KindObject {
			member := v.members[index]
			writeQuoted(buf, member.Key)
			buf.WriteString(": ")
			child = member.Value
		} else {
			child = v.items[index]
		}

		open(child)
	}
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

func writeScalar(buf *bytes.Buffer, v *Value) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.number)
	case KindString:
		writeQuoted(buf, v.str)
	}
}

// writeQuoted writes a JSON string literal. Unlike encoding/json it
// does not escape HTML characters — the canonical form is a storage
// format, not an embedding format, and extra escaping would change
// the hashed bytes.
func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch b {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if b < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, b)
			} else {
				// Multi-byte UTF-8 sequences pass through unchanged,
				// one byte at a time.
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte('"')
}
