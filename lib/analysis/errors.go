// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"context"
	"fmt"
)

// SizeLimitError reports input larger than the configured ceiling.
// It is raised before traversal starts and is an input-validation
// failure: the caller should reject the document, not retry.
type SizeLimitError struct {
	// Size is the offending input size in bytes.
	Size int64

	// Limit is the configured maximum in bytes.
	Limit int64
}

// Error implements the error interface.
func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("input size %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
}

// TimeoutError reports that the analysis deadline expired
// mid-traversal. Partial state is discarded — a profile is never
// returned alongside this error. The caller may retry with a larger
// deadline.
type TimeoutError struct {
	// Visited is the number of nodes visited before the deadline hit.
	Visited int64
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis deadline exceeded after visiting %d nodes", e.Visited)
}

// Unwrap lets errors.Is match context.DeadlineExceeded.
func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }
