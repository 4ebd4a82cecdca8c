// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

// Equal reports whether two values are structurally identical: same
// kinds, same scalars (numbers compared by literal), same element
// order, same member keys in the same order. It walks both trees with
// an explicit pair stack, so depth is not bounded by the call stack.
func Equal(a, b *Value) bool {
	type pair struct {
		a, b *Value
	}
	stack := []pair{{a, b}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.a.kind != p.b.kind {
			return false
		}

		switch p.a.kind {
		case KindBool:
			if p.a.boolean != p.b.boolean {
				return false
			}
		case KindNumber:
			if p.a.number != p.b.number {
				return false
			}
		case KindString:
			if p.a.str != p.b.str {
				return false
			}
		case KindArray:
			if len(p.a.items) != len(p.b.items) {
				return false
			}
			for i := range p.a.items {
				stack = append(stack, pair{p.a.items[i], p.b.items[i]})
			}
		case KindObject:
			if len(p.a.members) != len(p.b.members) {
				return false
			}
			for i := range p.a.members {
				if p.a.members[i].Key != p.b.members[i].Key {
					return false
				}
				stack = append(stack, pair{p.a.members[i].Value, p.b.members[i].Value})
			}
		}
	}
	return true
}
