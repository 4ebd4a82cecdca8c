// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"errors"
	"strings"
	"testing"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`false`, KindBool},
		{`0`, KindNumber},
		{`-12.5e3`, KindNumber},
		{`"hello"`, KindString},
		{`""`, KindString},
	}

	for _, test := range tests {
		v, err := Parse([]byte(test.input))
		if err != nil {
			t.Errorf("Parse(%q): %v", test.input, err)
			continue
		}
		if v.Kind() != test.kind {
			t.Errorf("Parse(%q).Kind() = %v, want %v", test.input, v.Kind(), test.kind)
		}
	}
}

func TestParsePreservesNumberLiterals(t *testing.T) {
	// "1.0" and "1" are the same number but different documents.
	v, err := Parse([]byte(`[1, 1.0, 1e0, 100000000000000000001]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []string{"1", "1.0", "1e0", "100000000000000000001"}
	items := v.Items()
	if len(items) != len(want) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(want))
	}
	for i, literal := range want {
		if items[i].NumberLiteral() != literal {
			t.Errorf("items[%d] literal = %q, want %q", i, items[i].NumberLiteral(), literal)
		}
	}
}

func TestParsePreservesMemberOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zebra": 1, "apple": 2, "mango": 3}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []string{"zebra", "apple", "mango"}
	members := v.Members()
	if len(members) != len(want) {
		t.Fatalf("len(members) = %d, want %d", len(members), len(want))
	}
	for i, key := range want {
		if members[i].Key != key {
			t.Errorf("members[%d].Key = %q, want %q", i, members[i].Key, key)
		}
	}
}

func TestParseNested(t *testing.T) {
	v, err := Parse([]byte(`{"users": [{"name": "ada", "tags": ["x"]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	users := v.Members()[0].Value
	if users.Kind() != KindArray || len(users.Items()) != 1 {
		t.Fatalf("users = %v with %d items", users.Kind(), len(users.Items()))
	}
	first := users.Items()[0]
	if first.Members()[0].Value.StringValue() != "ada" {
		t.Errorf("name = %q, want %q", first.Members()[0].Value.StringValue(), "ada")
	}
}

func TestParseEmptyContainers(t *testing.T) {
	for _, input := range []string{`{}`, `[]`} {
		v, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if v.ChildCount() != 0 {
			t.Errorf("Parse(%q).ChildCount() = %d, want 0", input, v.ChildCount())
		}
	}
}

func TestParseMalformed(t *testing.T) {
	inputs := []string{
		``,
		`{`,
		`[1, 2`,
		`{"a": }`,
		`{"a": 1,}`,
		`tru`,
		`"unterminated`,
		`{"a": 1} extra`,
		`[1] [2]`,
	}

	for _, input := range inputs {
		_, err := Parse([]byte(input))
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
			continue
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Parse(%q) error is %T, want *ParseError", input, err)
		}
	}
}

func TestParseDeeplyNestedDoesNotCrash(t *testing.T) {
	// 100k levels of array nesting. A recursive-descent parser would
	// exhaust the goroutine stack here.
	const depth = 100_000
	input := strings.Repeat("[", depth) + strings.Repeat("]", depth)

	v, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Kind() != KindArray {
		t.Fatalf("root kind = %v, want array", v.Kind())
	}
}

func TestParseDuplicateKeysKeptInOrder(t *testing.T) {
	v, err := Parse([]byte(`{"a": 1, "a": 2}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	members := v.Members()
	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	if members[0].Value.NumberLiteral() != "1" || members[1].Value.NumberLiteral() != "2" {
		t.Errorf("duplicate members out of order: %q, %q",
			members[0].Value.NumberLiteral(), members[1].Value.NumberLiteral())
	}
}
