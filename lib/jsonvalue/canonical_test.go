// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeScalars(t *testing.T) {
	tests := []struct {
		value *Value
		want  string
	}{
		{Null(), `null`},
		{Bool(true), `true`},
		{Bool(false), `false`},
		{Number("42"), `42`},
		{Number("-0.5e10"), `-0.5e10`},
		{String("hi"), `"hi"`},
		{String(""), `""`},
	}

	for _, test := range tests {
		got := string(Encode(test.value))
		if got != test.want {
			t.Errorf("Encode = %q, want %q", got, test.want)
		}
	}
}

func TestEncodeEmptyContainers(t *testing.T) {
	if got := string(Encode(Object())); got != "{}" {
		t.Errorf("Encode({}) = %q", got)
	}
	if got := string(Encode(Array())); got != "[]" {
		t.Errorf("Encode([]) = %q", got)
	}
}

func TestEncodeIndentation(t *testing.T) {
	v := Object(
		Member{"a", Number("1")},
		Member{"b", Array(Number("1"), Number("2"))},
		Member{"c", Object(Member{"d", Null()})},
		Member{"e", Object()},
	)

	want := strings.Join([]string{
		`{`,
		`  "a": 1,`,
		`  "b": [`,
		`    1,`,
		`    2`,
		`  ],`,
		`  "c": {`,
		`    "d": null`,
		`  },`,
		`  "e": {}`,
		`}`,
	}, "\n")

	if got := string(Encode(v)); got != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodePreservesKeyOrder(t *testing.T) {
	v := Object(
		Member{"zebra", Number("1")},
		Member{"apple", Number("2")},
	)
	got := string(Encode(v))
	if strings.Index(got, "zebra") > strings.Index(got, "apple") {
		t.Errorf("keys were reordered: %s", got)
	}
}

func TestEncodeStringEscaping(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", `"plain"`},
		{`quote"backslash\`, `"quote\"backslash\\"`},
		{"tab\tnewline\n", `"tab\tnewline\n"`},
		{"\x01", `"\u0001"`},
		{"héllo \u2603", "\"héllo \u2603\""},
		// No HTML escaping: these bytes are stored as-is.
		{"<script>&", `"<script>&"`},
	}

	for _, test := range tests {
		got := string(Encode(String(test.input)))
		if got != test.want {
			t.Errorf("Encode(String(%q)) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	inputs := []string{
		`{"name": "ada", "age": 36, "tags": ["math", "engines"], "meta": {"active": true, "score": 1.5}}`,
		`[[], {}, null, [1, [2, [3]]]]`,
		`{"a": {"b": {"c": {"d": []}}}}`,
	}

	for _, input := range inputs {
		v, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}

		canonical := Encode(v)
		reparsed, err := Parse(canonical)
		if err != nil {
			t.Fatalf("Parse(Encode(%q)): %v", input, err)
		}
		if !Equal(v, reparsed) {
			t.Errorf("round trip changed structure for %q:\n%s", input, canonical)
		}

		// Canonical form is a fixed point: encoding the reparsed value
		// reproduces the same bytes.
		if again := Encode(reparsed); !bytes.Equal(canonical, again) {
			t.Errorf("canonical form is not a fixed point for %q", input)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	v, err := Parse([]byte(`{"x": [1, 2, {"y": "z"}], "w": null}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first := Encode(v)
	second := Encode(v)
	if !bytes.Equal(first, second) {
		t.Error("Encode produced different bytes for the same value")
	}
}

func TestEqual(t *testing.T) {
	a, _ := Parse([]byte(`{"a": 1, "b": [true, null]}`))
	b, _ := Parse([]byte(`{"a": 1, "b": [true, null]}`))
	if !Equal(a, b) {
		t.Error("identical documents reported unequal")
	}

	c, _ := Parse([]byte(`{"b": [true, null], "a": 1}`))
	if Equal(a, c) {
		t.Error("documents with different key order reported equal")
	}

	d, _ := Parse([]byte(`{"a": 1.0, "b": [true, null]}`))
	if Equal(a, d) {
		t.Error("documents with different number literals reported equal")
	}
}
