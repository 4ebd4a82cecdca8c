// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine orchestrates the full document pipeline: parse,
// canonicalize, hash, deduplicate against the cache and store,
// analyze, split into chunks, select a rendering strategy, and
// persist. Each stage lives in its own package; the engine only
// sequences them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsonlens/jsonlens/lib/analysis"
	"github.com/jsonlens/jsonlens/lib/checksum"
	"github.com/jsonlens/jsonlens/lib/chunk"
	"github.com/jsonlens/jsonlens/lib/docstore"
	"github.com/jsonlens/jsonlens/lib/jsonvalue"
	"github.com/jsonlens/jsonlens/lib/render"
	"github.com/jsonlens/jsonlens/lib/resultcache"
)

// Config configures an Engine. Store and Cache are optional: without
// a Store nothing is persisted, without a Cache every submission is
// analyzed from scratch.
type Config struct {
	// Store persists analyzed documents. Optional.
	Store *docstore.Store

	// Cache holds recent results keyed by checksum. Optional.
	Cache *resultcache.Cache

	// Logger receives pipeline events. If nil, a no-op logger is
	// used.
	Logger *slog.Logger

	// MaxInputSize rejects documents larger than this many bytes.
	// Zero means no limit.
	MaxInputSize int64

	// AnalysisTimeout bounds one analysis run. Zero means no
	// deadline.
	AnalysisTimeout time.Duration

	// LargeArrayThreshold, DeepObjectThreshold, and PathSampleCap
	// are passed through to the analyzer; zero selects its defaults.
	LargeArrayThreshold int
	DeepObjectThreshold int
	PathSampleCap       int

	// ChunkThreshold is the canonical size above which a document is
	// split. Zero disables splitting.
	ChunkThreshold int64

	// TargetChunkSize is the per-chunk soft ceiling. Zero selects
	// chunk.DefaultTargetSize.
	TargetChunkSize int64
}

// Engine runs the document pipeline.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	// DocumentID is the store row ID, empty when no store is
	// configured.
	DocumentID string

	// Profile is the structural profile.
	Profile *analysis.Profile

	// Decision is the selected rendering strategy.
	Decision render.Decision

	// Chunks are the document's pieces, nil if it was not split.
	Chunks []chunk.Chunk

	// Deduplicated reports that the result came from the cache or
	// store rather than a fresh analysis.
	Deduplicated bool
}

// New creates an Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, logger: logger}
}

// AnalyzeBytes runs the pipeline on raw JSON text. The input size is
// checked before parsing, so an oversized document fails fast with
// *analysis.SizeLimitError. Malformed input returns
// *jsonvalue.ParseError.
func (e *Engine) AnalyzeBytes(ctx context.Context, raw []byte) (*Result, error) {
	if e.cfg.MaxInputSize > 0 && int64(len(raw)) > e.cfg.MaxInputSize {
		return nil, &analysis.SizeLimitError{Size: int64(len(raw)), Limit: e.cfg.MaxInputSize}
	}

	root, err := jsonvalue.Parse(raw)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeValue(ctx, root)
}

// AnalyzeValue runs the pipeline on an already-parsed document.
func (e *Engine) AnalyzeValue(ctx context.Context, root *jsonvalue.Value) (*Result, error) {
	canonical := jsonvalue.Encode(root)
	digest := checksum.HashDocument(canonical)

	// Fast path: a recent identical submission.
	if e.cfg.Cache != nil {
		if entry := e.cfg.Cache.Get(digest); entry != nil {
			e.logger.Debug("cache hit", "checksum", digest)
			return &Result{
				Profile:      entry.Profile,
				Decision:     render.Select(entry.Profile, entry.Profile.Elapsed),
				Chunks:       entry.Chunks,
				Deduplicated: true,
			}, nil
		}
	}

	// Slower dedup path: the store may hold the document from an
	// earlier run.
	if e.cfg.Store != nil {
		result, err := e.loadStored(ctx, digest)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	profile, err := e.analyze(ctx, root, canonical, digest)
	if err != nil {
		return nil, err
	}

	var chunks []chunk.Chunk
	if e.cfg.ChunkThreshold > 0 && profile.Size > e.cfg.ChunkThreshold {
		chunks = chunk.Split(root, e.cfg.TargetChunkSize)
	}

	result := &Result{
		Profile:  profile,
		Decision: render.Select(profile, profile.Elapsed),
		Chunks:   chunks,
	}

	if e.cfg.Store != nil {
		id, err := e.cfg.Store.SaveDocument(ctx, &docstore.Document{
			Checksum:    profile.Checksum,
			Canonical:   canonical,
			NodeCount:   profile.NodeCount,
			MaxDepth:    profile.MaxDepth,
			Complexity:  profile.Complexity,
			Paths:       profile.Paths,
			LargeArrays: profile.LargeArrays,
			DeepObjects: profile.DeepObjects,
		}, chunks)
		if err != nil {
			return nil, fmt.Errorf("persisting document: %w", err)
		}
		result.DocumentID = id
	}

	if e.cfg.Cache != nil {
		e.cfg.Cache.Set(digest, profile, chunks)
	}

	e.logger.Info("document analyzed",
		"checksum", digest,
		"size", profile.Size,
		"nodes", profile.NodeCount,
		"depth", profile.MaxDepth,
		"complexity", profile.Complexity,
		"mode", result.Decision.Mode,
		"level", result.Decision.Level,
		"chunks", len(chunks),
		"elapsed", profile.Elapsed,
	)
	return result, nil
}

// loadStored returns a result for a document already in the store,
// or nil if the checksum is unknown.
func (e *Engine) loadStored(ctx context.Context, digest checksum.Digest) (*Result, error) {
	id, err := e.cfg.Store.FindByChecksum(ctx, digest)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checking store for duplicate: %w", err)
	}

	doc, err := e.cfg.Store.LoadDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading stored duplicate: %w", err)
	}
	chunks, err := e.cfg.Store.LoadChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading stored chunks: %w", err)
	}
	if len(chunks) == 0 {
		chunks = nil
	}

	profile := doc.Profile()
	e.logger.Debug("store hit", "checksum", digest, "id", id)

	if e.cfg.Cache != nil {
		e.cfg.Cache.Set(digest, profile, chunks)
	}

	return &Result{
		DocumentID:   id,
		Profile:      profile,
		Decision:     render.Select(profile, profile.Elapsed),
		Chunks:       chunks,
		Deduplicated: true,
	}, nil
}

func (e *Engine) analyze(ctx context.Context, root *jsonvalue.Value, canonical []byte, digest checksum.Digest) (*analysis.Profile, error) {
	if e.cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.AnalysisTimeout)
		defer cancel()
	}

	return analysis.Analyze(ctx, analysis.Input{
		Root:      root,
		Canonical: canonical,
		Checksum:  digest,
	}, analysis.Options{
		MaxInputSize:        e.cfg.MaxInputSize,
		LargeArrayThreshold: e.cfg.LargeArrayThreshold,
		DeepObjectThreshold: e.cfg.DeepObjectThreshold,
		PathSampleCap:       e.cfg.PathSampleCap,
	})
}
