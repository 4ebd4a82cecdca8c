// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsonlens/jsonlens/lib/analysis"
	"github.com/jsonlens/jsonlens/lib/chunk"
	"github.com/jsonlens/jsonlens/lib/clock"
	"github.com/jsonlens/jsonlens/lib/docstore"
	"github.com/jsonlens/jsonlens/lib/jsonvalue"
	"github.com/jsonlens/jsonlens/lib/render"
	"github.com/jsonlens/jsonlens/lib/resultcache"
)

func openTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	store, err := docstore.Open(docstore.Config{
		Path:        filepath.Join(t.TempDir(), "documents.db"),
		Compression: docstore.CompressionZstd,
	})
	if err != nil {
		t.Fatalf("docstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnalyzeBytesBasic(t *testing.T) {
	e := New(Config{})

	result, err := e.AnalyzeBytes(context.Background(), []byte(`{"a": [1, 2], "b": true}`))
	if err != nil {
		t.Fatalf("AnalyzeBytes: %v", err)
	}
	if result.Profile.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want 5", result.Profile.NodeCount)
	}
	if result.Decision.Mode != render.ModeSimple {
		t.Errorf("Mode = %v, want simple", result.Decision.Mode)
	}
	if result.Deduplicated {
		t.Error("fresh analysis marked as deduplicated")
	}
	if result.DocumentID != "" {
		t.Error("got a document ID without a store")
	}
	if result.Chunks != nil {
		t.Error("got chunks with chunking disabled")
	}
}

func TestAnalyzeBytesMalformed(t *testing.T) {
	e := New(Config{})
	_, err := e.AnalyzeBytes(context.Background(), []byte(`{"a": `))
	var parseErr *jsonvalue.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("err = %v, want *jsonvalue.ParseError", err)
	}
}

func TestAnalyzeBytesSizeLimit(t *testing.T) {
	e := New(Config{MaxInputSize: 4})
	_, err := e.AnalyzeBytes(context.Background(), []byte(`{"key": "value"}`))
	var sizeErr *analysis.SizeLimitError
	if !errors.As(err, &sizeErr) {
		t.Errorf("err = %v, want *analysis.SizeLimitError", err)
	}
}

func TestAnalysisTimeout(t *testing.T) {
	e := New(Config{AnalysisTimeout: time.Nanosecond})

	var sb []byte
	sb = append(sb, '[')
	for i := 0; i < 50_000; i++ {
		if i > 0 {
			sb = append(sb, ',')
		}
		sb = append(sb, '1')
	}
	sb = append(sb, ']')

	_, err := e.AnalyzeBytes(context.Background(), sb)
	var timeoutErr *analysis.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("err = %v, want *analysis.TimeoutError", err)
	}
}

func TestChunkingAboveThreshold(t *testing.T) {
	e := New(Config{ChunkThreshold: 10, TargetChunkSize: 16})

	result, err := e.AnalyzeBytes(context.Background(), []byte(`{"alpha": [1, 2, 3], "beta": "text", "gamma": null}`))
	if err != nil {
		t.Fatalf("AnalyzeBytes: %v", err)
	}
	if len(result.Chunks) < 2 {
		t.Errorf("got %d chunks, want several", len(result.Chunks))
	}

	merged, err := chunk.Reassemble(result.Chunks)
	if err != nil {
		t.Fatalf("Reassemble: %v", err)
	}
	root, _ := jsonvalue.Parse([]byte(`{"alpha": [1, 2, 3], "beta": "text", "gamma": null}`))
	if !jsonvalue.Equal(root, merged) {
		t.Error("reassembled chunks differ from the input document")
	}
}

func TestCacheDeduplication(t *testing.T) {
	cache := resultcache.New(resultcache.Config{Clock: clock.Fake(time.Unix(0, 0))})
	e := New(Config{Cache: cache})

	input := []byte(`{"cached": true}`)
	first, err := e.AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatalf("first AnalyzeBytes: %v", err)
	}
	if first.Deduplicated {
		t.Error("first run marked as deduplicated")
	}

	second, err := e.AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatalf("second AnalyzeBytes: %v", err)
	}
	if !second.Deduplicated {
		t.Error("repeat run not marked as deduplicated")
	}
	if second.Profile.Checksum != first.Profile.Checksum {
		t.Error("cached profile has a different checksum")
	}
	// Whitespace differences canonicalize away, so this is the same
	// document.
	reordered, err := e.AnalyzeBytes(context.Background(), []byte(`{"cached":true}`))
	if err != nil {
		t.Fatalf("reordered AnalyzeBytes: %v", err)
	}
	if !reordered.Deduplicated {
		t.Error("whitespace-only variation was not deduplicated")
	}
}

func TestStoreDeduplication(t *testing.T) {
	store := openTestStore(t)
	e := New(Config{Store: store, ChunkThreshold: 10, TargetChunkSize: 16})

	input := []byte(`{"alpha": [1, 2, 3], "beta": "text"}`)
	first, err := e.AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatalf("first AnalyzeBytes: %v", err)
	}
	if first.DocumentID == "" {
		t.Fatal("first run did not persist")
	}

	// A second engine with the same store must find the stored copy.
	second, err := New(Config{Store: store}).AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatalf("second AnalyzeBytes: %v", err)
	}
	if !second.Deduplicated {
		t.Error("stored document not deduplicated")
	}
	if second.DocumentID != first.DocumentID {
		t.Errorf("DocumentID = %s, want %s", second.DocumentID, first.DocumentID)
	}
	if second.Profile.NodeCount != first.Profile.NodeCount {
		t.Error("stored profile differs from the original")
	}
	if len(second.Chunks) != len(first.Chunks) {
		t.Errorf("stored chunks = %d, want %d", len(second.Chunks), len(first.Chunks))
	}
}

func TestStoreHitPopulatesCache(t *testing.T) {
	store := openTestStore(t)
	cache := resultcache.New(resultcache.Config{Clock: clock.Fake(time.Unix(0, 0))})

	input := []byte(`{"warm": 1}`)
	if _, err := New(Config{Store: store}).AnalyzeBytes(context.Background(), input); err != nil {
		t.Fatalf("priming store: %v", err)
	}

	e := New(Config{Store: store, Cache: cache})
	result, err := e.AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatalf("AnalyzeBytes: %v", err)
	}
	if !result.Deduplicated {
		t.Fatal("store hit not reported")
	}
	if cache.Get(result.Profile.Checksum) == nil {
		t.Error("store hit did not populate the cache")
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	input := []byte(`{"x": [1, 2, 3], "y": {"z": "deep"}}`)

	first, err := New(Config{}).AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(Config{}).AnalyzeBytes(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if first.Profile.Checksum != second.Profile.Checksum {
		t.Error("checksums differ across engines")
	}
	if first.Decision.Mode != second.Decision.Mode {
		t.Error("render modes differ across engines")
	}
}
