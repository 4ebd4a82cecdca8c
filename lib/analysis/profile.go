// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"time"

	"github.com/jsonlens/jsonlens/lib/checksum"
)

// Complexity is the ordinal classification of a document's structural
// weight. It is monotonic: growing any of node count, size, or depth
// never lowers the class.
type Complexity uint8

const (
	// ComplexityLow marks small, shallow documents.
	ComplexityLow Complexity = iota
	// ComplexityMedium marks documents of moderate node count or size.
	ComplexityMedium
	// ComplexityHigh marks documents heavy on any axis.
	ComplexityHigh
)

// String returns the human-readable class name.
func (c Complexity) String() string {
	switch c {
	case ComplexityLow:
		return "low"
	case ComplexityMedium:
		return "medium"
	case ComplexityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseComplexity parses a class from its string form.
func ParseComplexity(s string) (Complexity, bool) {
	switch s {
	case "low":
		return ComplexityLow, true
	case "medium":
		return ComplexityMedium, true
	case "high":
		return ComplexityHigh, true
	default:
		return 0, false
	}
}

// Classification band boundaries. Any high boundary reached forces
// ComplexityHigh; a document strictly inside every low boundary is
// ComplexityLow; everything else is ComplexityMedium.
const (
	lowMaxNodes = 1_000
	lowMaxBytes = 1 << 20 // 1 MiB
	lowMaxDepth = 10

	highMinNodes = 15_000
	highMinBytes = 10 << 20 // 10 MiB
	highMinDepth = 20
)

// Classify maps the three structural axes to a complexity class.
func Classify(nodeCount int64, size int64, maxDepth int) Complexity {
	if nodeCount >= highMinNodes || size >= highMinBytes || maxDepth >= highMinDepth {
		return ComplexityHigh
	}
	if nodeCount < lowMaxNodes && size < lowMaxBytes && maxDepth < lowMaxDepth {
		return ComplexityLow
	}
	return ComplexityMedium
}

// ArrayStat records an array whose element count exceeded the
// large-array threshold.
type ArrayStat struct {
	// Path locates the array from the document root.
	Path string `json:"path" cbor:"path"`

	// Length is the element count.
	Length int `json:"length" cbor:"length"`
}

// ObjectStat records a container found deeper than the deep-object
// threshold.
type ObjectStat struct {
	// Path locates the container from the document root.
	Path string `json:"path" cbor:"path"`

	// Depth is the container's nesting depth (root = 0).
	Depth int `json:"depth" cbor:"depth"`
}

// Profile is the complete set of statistics from one analysis pass.
// It is created once per run and read-only afterward. Two analyses of
// identical canonical bytes produce profiles equal in every field
// except Elapsed.
type Profile struct {
	// Size is the byte length of the canonical representation.
	Size int64

	// NodeCount is the number of nodes visited, scalars and
	// containers alike, root included. At least 1 for any well-formed
	// value.
	NodeCount int64

	// MaxDepth is the deepest nesting level reached. A root scalar
	// has depth 0.
	MaxDepth int

	// Complexity is the structural weight class derived from the
	// fields above.
	Complexity Complexity

	// Checksum is the document-domain digest of the canonical bytes.
	Checksum checksum.Digest

	// Paths is a bounded sample of node paths in traversal order,
	// kept for later reference and debugging. Recording stops at the
	// configured cap; traversal continues.
	Paths []string

	// LargeArrays lists arrays whose length exceeded the threshold.
	LargeArrays []ArrayStat

	// DeepObjects lists containers found beyond the depth threshold,
	// one entry per qualifying container.
	DeepObjects []ObjectStat

	// Elapsed is the wall-clock duration of the traversal. Timing
	// metadata only — excluded from profile equality.
	Elapsed time.Duration
}
