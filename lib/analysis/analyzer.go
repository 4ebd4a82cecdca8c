// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package analysis produces a structural profile of a parsed JSON
// document in a single traversal: node count, maximum depth, sampled
// paths, oversized arrays, over-deep containers, and a complexity
// class. The profile drives the rendering-strategy decision and the
// stored document metadata.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jsonlens/jsonlens/lib/checksum"
	"github.com/jsonlens/jsonlens/lib/jsonvalue"
)

// Default thresholds, used when an Options field is zero.
const (
	// DefaultLargeArrayThreshold is the element count above which an
	// array is recorded in Profile.LargeArrays.
	DefaultLargeArrayThreshold = 1_000

	// DefaultDeepObjectThreshold is the depth beyond which a
	// container is recorded in Profile.DeepObjects.
	DefaultDeepObjectThreshold = 10

	// DefaultPathSampleCap bounds the Profile.Paths sample.
	DefaultPathSampleCap = 1_000
)

// Options configures one analysis run.
type Options struct {
	// MaxInputSize rejects documents whose canonical size exceeds
	// this many bytes, before traversal. Zero means no limit.
	MaxInputSize int64

	// LargeArrayThreshold is the element count above which an array
	// is reported. Zero selects the default.
	LargeArrayThreshold int

	// DeepObjectThreshold is the depth beyond which a container is
	// reported. Zero selects the default.
	DeepObjectThreshold int

	// PathSampleCap bounds the recorded path sample. Zero selects
	// the default.
	PathSampleCap int
}

func (o Options) withDefaults() Options {
	if o.LargeArrayThreshold == 0 {
		o.LargeArrayThreshold = DefaultLargeArrayThreshold
	}
	if o.DeepObjectThreshold == 0 {
		o.DeepObjectThreshold = DefaultDeepObjectThreshold
	}
	if o.PathSampleCap == 0 {
		o.PathSampleCap = DefaultPathSampleCap
	}
	return o
}

// Input bundles the document handed to Analyze. Canonical must be
// the canonical serialization of Root (jsonvalue.Encode); Size and
// Checksum in the resulting profile are computed from it.
type Input struct {
	// Root is the parsed document.
	Root *jsonvalue.Value

	// Canonical is the canonical byte serialization of Root.
	Canonical []byte

	// Checksum optionally carries a precomputed digest of Canonical,
	// saving a second hash when the caller already needed one for a
	// dedup lookup. Zero means Analyze computes it.
	Checksum checksum.Digest
}

// frame is one pending node on the traversal work stack.
type frame struct {
	value *jsonvalue.Value
	path  string
	depth int
}

// Analyze traverses the document exactly once and returns its
// structural profile. The traversal is iterative over an explicit
// work stack — adversarial nesting depth cannot exhaust the call
// stack — and checks ctx at every node visit, so a deadline or
// cancellation takes effect even inside a single pathological
// container. On cancellation partial state is discarded: a profile
// is never returned together with an error.
func Analyze(ctx context.Context, in Input, opts Options) (*Profile, error) {
	if in.Root == nil {
		return nil, fmt.Errorf("analysis: nil root value")
	}
	opts = opts.withDefaults()

	size := int64(len(in.Canonical))
	if opts.MaxInputSize > 0 && size > opts.MaxInputSize {
		return nil, &SizeLimitError{Size: size, Limit: opts.MaxInputSize}
	}

	digest := in.Checksum
	if digest.IsZero() {
		digest = checksum.HashDocument(in.Canonical)
	}

	start := time.Now()

	var (
		nodeCount   int64
		maxDepth    int
		paths       []string
		largeArrays []ArrayStat
		deepObjects []ObjectStat
	)

	stack := make([]frame, 0, 64)
	stack = append(stack, frame{value: in.Root})

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &TimeoutError{Visited: nodeCount}
			}
			return nil, fmt.Errorf("analysis canceled after visiting %d nodes: %w", nodeCount, err)
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nodeCount++
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		if len(paths) < opts.PathSampleCap {
			paths = append(paths, f.path)
		}

		switch f.value.Kind() {
		case jsonvalue.KindArray:
			items := f.value.Items()
			if len(items) > opts.LargeArrayThreshold {
				largeArrays = append(largeArrays, ArrayStat{Path: f.path, Length: len(items)})
			}
			if f.depth > opts.DeepObjectThreshold {
				deepObjects = append(deepObjects, ObjectStat{Path: f.path, Depth: f.depth})
			}
			// Children pushed in reverse so the LIFO pop visits them
			// in document order.
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					value: items[i],
					path:  f.path + "[" + strconv.Itoa(i) + "]",
					depth: f.depth + 1,
				})
			}

		case jsonvalue.KindObject:
			members := f.value.Members()
			if f.depth > opts.DeepObjectThreshold {
				deepObjects = append(deepObjects, ObjectStat{Path: f.path, Depth: f.depth})
			}
			for i := len(members) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					value: members[i].Value,
					path:  f.path + "." + members[i].Key,
					depth: f.depth + 1,
				})
			}
		}
	}

	return &Profile{
		Size:        size,
		NodeCount:   nodeCount,
		MaxDepth:    maxDepth,
		Complexity:  Classify(nodeCount, size, maxDepth),
		Checksum:    digest,
		Paths:       paths,
		LargeArrays: largeArrays,
		DeepObjects: deepObjects,
		Elapsed:     time.Since(start),
	}, nil
}
