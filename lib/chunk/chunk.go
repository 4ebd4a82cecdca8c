// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunk splits a large parsed document into independently
// storable pieces and reassembles them. Splitting happens along the
// document's top-level children only: each chunk is itself a valid
// JSON document of the root's kind, holding a contiguous run of
// children, so any chunk can be parsed, verified, and rendered without
// the others.
package chunk

import (
	"fmt"

	"github.com/jsonlens/jsonlens/lib/checksum"
	"github.com/jsonlens/jsonlens/lib/jsonvalue"
)

// DefaultTargetSize is the soft byte ceiling for a chunk's canonical
// content. A single oversized child still becomes its own chunk, so
// individual chunks may exceed it.
const DefaultTargetSize int64 = 1 << 20 // 1 MiB

// Chunk is one piece of a split document.
type Chunk struct {
	// Index is the chunk's zero-based position. Reassembly requires
	// a contiguous run starting at 0.
	Index int

	// Path locates the chunk's first child in the original document,
	// ".key" for object members and "[i]" for array elements.
	Path string

	// Content is the canonical serialization of a container of the
	// root's kind holding this chunk's children.
	Content []byte

	// Size is len(Content), carried separately so storage rows can
	// report it without loading the blob.
	Size int64

	// Checksum is the chunk-domain digest of Content.
	Checksum checksum.Digest
}

// IntegrityError reports a chunk whose content no longer matches its
// recorded digest. It is fatal for the affected document: reassembly
// stops and nothing partial is returned.
type IntegrityError struct {
	// Index is the position of the corrupt chunk.
	Index int

	// Path is the chunk's recorded path, for operator messages.
	Path string

	// Want is the recorded digest.
	Want checksum.Digest

	// Got is the digest of the bytes actually present.
	Got checksum.Digest
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chunk %d (%s): content digest %s does not match recorded %s",
		e.Index, e.Path, e.Got, e.Want)
}

// Split divides a document into chunks of roughly targetSize canonical
// bytes each. targetSize <= 0 selects DefaultTargetSize.
//
// Only top-level children are considered: children are accumulated in
// document order until the next one would push the chunk past the
// target, then the chunk is sealed. A child that alone exceeds the
// target becomes its own chunk rather than being split further. A
// scalar root, or a container with no children, yields nil — such
// documents are stored whole.
func Split(root *jsonvalue.Value, targetSize int64) []Chunk {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	if root == nil || !root.IsContainer() || root.ChildCount() == 0 {
		return nil
	}

	switch root.Kind() {
	case jsonvalue.KindObject:
		return splitObject(root.Members(), targetSize)
	default:
		return splitArray(root.Items(), targetSize)
	}
}

func splitObject(members []jsonvalue.Member, targetSize int64) []Chunk {
	var (
		chunks  []Chunk
		group   []jsonvalue.Member
		grouped int64
		first   string
	)
	seal := func() {
		if len(group) == 0 {
			return
		}
		content := jsonvalue.Encode(jsonvalue.Object(group...))
		chunks = append(chunks, sealed(len(chunks), first, content))
		group, grouped = nil, 0
	}
	for _, m := range members {
		weight := int64(len(jsonvalue.Encode(jsonvalue.Object(m))))
		if grouped > 0 && grouped+weight > targetSize {
			seal()
		}
		if len(group) == 0 {
			first = "." + m.Key
		}
		group = append(group, m)
		grouped += weight
	}
	seal()
	return chunks
}

func splitArray(items []*jsonvalue.Value, targetSize int64) []Chunk {
	var (
		chunks  []Chunk
		group   []*jsonvalue.Value
		grouped int64
		first   string
	)
	seal := func() {
		if len(group) == 0 {
			return
		}
		content := jsonvalue.Encode(jsonvalue.Array(group...))
		chunks = append(chunks, sealed(len(chunks), first, content))
		group, grouped = nil, 0
	}
	for i, item := range items {
		weight := int64(len(jsonvalue.Encode(jsonvalue.Array(item))))
		if grouped > 0 && grouped+weight > targetSize {
			seal()
		}
		if len(group) == 0 {
			first = fmt.Sprintf("[%d]", i)
		}
		group = append(group, item)
		grouped += weight
	}
	seal()
	return chunks
}

func sealed(index int, path string, content []byte) Chunk {
	return Chunk{
		Index:    index,
		Path:     path,
		Content:  content,
		Size:     int64(len(content)),
		Checksum: checksum.HashChunk(content),
	}
}

// Reassemble verifies and merges a complete set of chunks back into
// one document. Chunks must be ordered with contiguous indexes from 0
// and all hold containers of the same kind. Every chunk's digest is
// verified before any merging; a mismatch returns *IntegrityError and
// no value.
func Reassemble(chunks []Chunk) (*jsonvalue.Value, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("reassembling document: no chunks")
	}

	for i, c := range chunks {
		if c.Index != i {
			return nil, fmt.Errorf("reassembling document: chunk at position %d has index %d, want contiguous indexes from 0", i, c.Index)
		}
		if got := checksum.HashChunk(c.Content); got != c.Checksum {
			return nil, &IntegrityError{Index: c.Index, Path: c.Path, Want: c.Checksum, Got: got}
		}
	}

	parts := make([]*jsonvalue.Value, len(chunks))
	for i, c := range chunks {
		part, err := jsonvalue.Parse(c.Content)
		if err != nil {
			return nil, fmt.Errorf("reassembling document: parsing chunk %d: %w", i, err)
		}
		if !part.IsContainer() {
			return nil, fmt.Errorf("reassembling document: chunk %d holds a %s, want a container", i, part.Kind())
		}
		if i > 0 && part.Kind() != parts[0].Kind() {
			return nil, fmt.Errorf("reassembling document: chunk %d is a %s, previous chunks are %s", i, part.Kind(), parts[0].Kind())
		}
		parts[i] = part
	}

	if parts[0].Kind() == jsonvalue.KindObject {
		var members []jsonvalue.Member
		for _, part := range parts {
			members = append(members, part.Members()...)
		}
		return jsonvalue.Object(members...), nil
	}
	var items []*jsonvalue.Value
	for _, part := range parts {
		items = append(items, part.Items()...)
	}
	return jsonvalue.Array(items...), nil
}
