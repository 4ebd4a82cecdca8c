// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// jsonlens-analyze runs the document pipeline on a JSON file: parse,
// canonicalize, analyze, chunk, select a rendering strategy, and
// store the result. It prints a human-readable report by default, or
// machine-readable JSON with --json.
//
// Usage:
//
//	jsonlens-analyze [flags] <file>
//	cat document.json | jsonlens-analyze -
//
// Input may be JSONC (comments and trailing commas) with --jsonc.
// Pass --no-store to analyze without persisting.
package main
