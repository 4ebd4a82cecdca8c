// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseError reports malformed input. It is a client-input problem:
// the document never reaches analysis, and the caller should surface
// it without retrying.
type ParseError struct {
	// Offset is the byte offset in the input at which the error was
	// detected.
	Offset int64

	// Message describes what was wrong.
	Message string

	err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing json at byte %d: %s", e.Offset, e.Message)
}

// Unwrap returns the underlying decoder error, if any.
func (e *ParseError) Unwrap() error { return e.err }

// Parse decodes raw JSON bytes into a Value tree, preserving object
// member order and number literals exactly as written. Exactly one
// top-level value is accepted; trailing content is a *ParseError.
//
// The decoder walks the token stream with an explicit container
// stack, so input nested thousands of levels deep cannot exhaust the
// call stack.
func Parse(data []byte) (*Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	root, err := parseDocument(decoder)
	if err != nil {
		return nil, err
	}

	// Anything after the first value is an error, not a second
	// document.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{
			Offset:  decoder.InputOffset(),
			Message: "trailing content after top-level value",
		}
	}

	return root, nil
}

// containerFrame tracks one open container while decoding. Object
// frames alternate between expecting a key token and a value token.
type containerFrame struct {
	container  *Value
	pendingKey string
	expectKey  bool
}

// parseDocument consumes tokens until the first complete top-level
// value has been built.
func parseDocument(decoder *json.Decoder) (*Value, error) {
	var root *Value
	var stack []*containerFrame

	// attach adds a completed value to the innermost open container,
	// or records it as the root when no container is open.
	attach := func(v *Value) {
		if len(stack) == 0 {
			root = v
			return
		}
		top := stack[len(stack)-1]
		if top.container.kind == KindObject {
			top.container.members = append(top.container.members, Member{Key: top.pendingKey, Value: v})
			top.expectKey = true
		} else {
			top.container.items = append(top.container.items, v)
		}
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{
				Offset:  decoder.InputOffset(),
				Message: "unexpected end of input",
				err:     err,
			}
		}
		if err != nil {
			return nil, &ParseError{
				Offset:  decoder.InputOffset(),
				Message: err.Error(),
				err:     err,
			}
		}

		// Inside an object, keys arrive as bare string tokens between
		// values. The decoder guarantees the key/value alternation, so
		// a string token in key position is always the next key, and
		// the only other legal token there is the closing brace.
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.container.kind == KindObject && top.expectKey {
				if key, ok := token.(string); ok {
					top.pendingKey = key
					top.expectKey = false
					continue
				}
			}
		}

		switch t := token.(type) {
		case json.Delim:
			switch t {
			case '{':
				v := &Value{kind: KindObject}
				attach(v)
				stack = append(stack, &containerFrame{container: v, expectKey: true})
				continue
			case '[':
				v := &Value{kind: KindArray}
				attach(v)
				stack = append(stack, &containerFrame{container: v})
				continue
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		case bool:
			attach(&Value{kind: KindBool, boolean: t})
		case json.Number:
			attach(&Value{kind: KindNumber, number: string(t)})
		case string:
			attach(&Value{kind: KindString, str: t})
		case nil:
			attach(&Value{kind: KindNull})
		default:
			return nil, &ParseError{
				Offset:  decoder.InputOffset(),
				Message: fmt.Sprintf("unexpected token %v", token),
			}
		}

		if len(stack) == 0 {
			return root, nil
		}
	}
}
