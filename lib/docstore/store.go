// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package docstore persists analyzed documents and their chunks in
// SQLite. Documents are stored by content: the canonical bytes are
// compressed into a single row keyed by a UUID, with the BLAKE3
// checksum as a unique column so a resubmitted document is found
// instead of stored twice. Chunk rows carry their own digests and are
// re-verified on every load.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/jsonlens/jsonlens/lib/analysis"
	"github.com/jsonlens/jsonlens/lib/checksum"
	"github.com/jsonlens/jsonlens/lib/chunk"
	"github.com/jsonlens/jsonlens/lib/clock"
	"github.com/jsonlens/jsonlens/lib/codec"
)

// ErrNotFound is returned when no document matches the requested ID
// or checksum.
var ErrNotFound = errors.New("docstore: document not found")

// CorruptDocumentError reports a stored document whose canonical
// bytes no longer match their recorded checksum. Fatal for the
// affected document: the content is not returned.
type CorruptDocumentError struct {
	// ID is the document's row ID.
	ID string

	// Want is the recorded checksum.
	Want checksum.Digest

	// Got is the digest of the bytes actually stored.
	Got checksum.Digest
}

// Error implements the error interface.
func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("document %s: content digest %s does not match recorded %s", e.ID, e.Got, e.Want)
}

// Config holds the parameters for opening a document store.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist; the file is created on first use.
	Path string

	// PoolSize is the number of connections in the pool. Defaults to
	// 4 if zero or negative.
	PoolSize int

	// Compression is the codec applied to new blobs. The zero value
	// is CompressionNone; callers normally pass CompressionZstd.
	Compression CompressionTag

	// Clock provides row timestamps.
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Store is a SQLite-backed document store. Safe for concurrent use;
// each operation borrows its own pooled connection.
type Store struct {
	pool        *sqlitex.Pool
	compression CompressionTag
	clk         clock.Clock
	logger      *slog.Logger
	path        string
}

// Document is one stored document: its canonical content plus the
// structural profile captured at analysis time.
type Document struct {
	// ID is the row UUID assigned at save time.
	ID string

	// Checksum is the document-domain digest of Canonical.
	Checksum checksum.Digest

	// Canonical is the canonical byte serialization.
	Canonical []byte

	// NodeCount, MaxDepth, and Complexity are the profile's scalar
	// fields, stored as queryable columns.
	NodeCount  int64
	MaxDepth   int
	Complexity analysis.Complexity

	// Paths, LargeArrays, and DeepObjects are the profile's detail
	// fields, stored together as one CBOR blob.
	Paths       []string
	LargeArrays []analysis.ArrayStat
	DeepObjects []analysis.ObjectStat

	// CreatedAt is when the row was written.
	CreatedAt time.Time
}

// Profile reconstructs the structural profile stored with the
// document. Elapsed is zero — timing is not persisted.
func (d *Document) Profile() *analysis.Profile {
	return &analysis.Profile{
		Size:        int64(len(d.Canonical)),
		NodeCount:   d.NodeCount,
		MaxDepth:    d.MaxDepth,
		Complexity:  d.Complexity,
		Checksum:    d.Checksum,
		Paths:       d.Paths,
		LargeArrays: d.LargeArrays,
		DeepObjects: d.DeepObjects,
	}
}

// documentMetadata is the CBOR layout of the metadata column.
type documentMetadata struct {
	Paths       []string              `cbor:"paths"`
	LargeArrays []analysis.ArrayStat  `cbor:"large_arrays"`
	DeepObjects []analysis.ObjectStat `cbor:"deep_objects"`
}

// Info is a document listing row, without content.
type Info struct {
	ID         string
	Checksum   checksum.Digest
	Size       int64
	NodeCount  int64
	MaxDepth   int
	Complexity analysis.Complexity
	ChunkCount int
	CreatedAt  time.Time
}

// Stats summarizes the store for status output.
type Stats struct {
	DocumentCount     int64
	ChunkCount        int64
	DatabaseSizeBytes int64
}

const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		id               TEXT PRIMARY KEY,
		checksum         TEXT NOT NULL UNIQUE,
		content          BLOB NOT NULL,
		content_encoding INTEGER NOT NULL,
		content_size     INTEGER NOT NULL,
		node_count       INTEGER NOT NULL,
		max_depth        INTEGER NOT NULL,
		complexity       TEXT NOT NULL,
		metadata         BLOB NOT NULL,
		created_at       INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		document_id      TEXT NOT NULL,
		chunk_index      INTEGER NOT NULL,
		path             TEXT NOT NULL,
		content          BLOB NOT NULL,
		content_encoding INTEGER NOT NULL,
		content_size     INTEGER NOT NULL,
		checksum         TEXT NOT NULL,
		UNIQUE (document_id, chunk_index)
	);
`

// Open creates a document store backed by SQLite. The database file
// is created if it does not exist. The caller must Close the store
// when done.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("docstore: Path is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("docstore: opening %s: %w", cfg.Path, err)
	}

	logger.Info("document store opened",
		"path", cfg.Path,
		"pool_size", poolSize,
		"compression", cfg.Compression.String(),
	)

	return &Store{
		pool:        pool,
		compression: cfg.Compression,
		clk:         cfg.Clock,
		logger:      logger,
		path:        cfg.Path,
	}, nil
}

// prepareConnection applies the standard pragmas and ensures the
// schema exists. Runs once per pooled connection, on first use.
func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("docstore: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("docstore: creating schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool. Blocks until all
// borrowed connections are returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("docstore: closing %s: %w", s.path, err)
	}
	s.logger.Info("document store closed", "path", s.path)
	return nil
}

// SaveDocument writes a document and its chunks in one transaction.
// The document must carry its checksum and profile fields; an ID is
// assigned if empty. If a document with the same checksum already
// exists, its existing ID is returned and nothing is written.
func (s *Store) SaveDocument(ctx context.Context, doc *Document, chunks []chunk.Chunk) (string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("docstore: save document: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return "", fmt.Errorf("docstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	// Dedup check inside the transaction so two concurrent saves of
	// the same document cannot both insert.
	var existingID string
	err = sqlitex.Execute(conn,
		"SELECT id FROM documents WHERE checksum = ?",
		&sqlitex.ExecOptions{
			Args: []any{doc.Checksum.Hex()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				existingID = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("docstore: checking checksum: %w", err)
	}
	if existingID != "" {
		return existingID, nil
	}

	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	stored, tag, err := compressBlob(doc.Canonical, s.compression)
	if err != nil {
		return "", fmt.Errorf("docstore: compressing document: %w", err)
	}

	metadata, err := codec.Marshal(documentMetadata{
		Paths:       doc.Paths,
		LargeArrays: doc.LargeArrays,
		DeepObjects: doc.DeepObjects,
	})
	if err != nil {
		return "", fmt.Errorf("docstore: marshal metadata: %w", err)
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO documents
			(id, checksum, content, content_encoding, content_size,
			 node_count, max_depth, complexity, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				id,
				doc.Checksum.Hex(),
				stored,
				int(tag),
				len(doc.Canonical),
				doc.NodeCount,
				doc.MaxDepth,
				doc.Complexity.String(),
				metadata,
				s.clk.Now().UnixNano(),
			},
		})
	if err != nil {
		return "", fmt.Errorf("docstore: insert document: %w", err)
	}

	for _, c := range chunks {
		chunkStored, chunkTag, err := compressBlob(c.Content, s.compression)
		if err != nil {
			return "", fmt.Errorf("docstore: compressing chunk %d: %w", c.Index, err)
		}
		err = sqlitex.Execute(conn,
			`INSERT INTO chunks
				(document_id, chunk_index, path, content, content_encoding,
				 content_size, checksum)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					id,
					c.Index,
					c.Path,
					chunkStored,
					int(chunkTag),
					len(c.Content),
					c.Checksum.Hex(),
				},
			})
		if err != nil {
			return "", fmt.Errorf("docstore: insert chunk %d: %w", c.Index, err)
		}
	}

	s.logger.Info("document stored",
		"id", id,
		"checksum", doc.Checksum,
		"size", len(doc.Canonical),
		"chunks", len(chunks),
	)
	return id, nil
}

// FindByChecksum returns the ID of the document with the given
// checksum, or ErrNotFound.
func (s *Store) FindByChecksum(ctx context.Context, digest checksum.Digest) (string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("docstore: find by checksum: %w", err)
	}
	defer s.pool.Put(conn)

	var id string
	err = sqlitex.Execute(conn,
		"SELECT id FROM documents WHERE checksum = ?",
		&sqlitex.ExecOptions{
			Args: []any{digest.Hex()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("docstore: find by checksum: %w", err)
	}
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

// LoadDocument loads a document by ID, decompresses its content, and
// re-verifies the checksum. Returns *CorruptDocumentError if the
// stored bytes no longer hash to the recorded digest.
func (s *Store) LoadDocument(ctx context.Context, id string) (*Document, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: load document: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		found    bool
		doc      Document
		stored   []byte
		tag      CompressionTag
		size     int
		metadata []byte
	)
	err = sqlitex.Execute(conn,
		`SELECT checksum, content, content_encoding, content_size,
			node_count, max_depth, complexity, metadata, created_at
			FROM documents WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true

				digest, err := checksum.ParseHex(stmt.ColumnText(0))
				if err != nil {
					return fmt.Errorf("parse checksum: %w", err)
				}
				doc.Checksum = digest

				stored = make([]byte, stmt.ColumnLen(1))
				stmt.ColumnBytes(1, stored)
				tag = CompressionTag(stmt.ColumnInt(2))
				size = stmt.ColumnInt(3)

				doc.NodeCount = stmt.ColumnInt64(4)
				doc.MaxDepth = stmt.ColumnInt(5)
				complexity, ok := analysis.ParseComplexity(stmt.ColumnText(6))
				if !ok {
					return fmt.Errorf("unknown complexity: %q", stmt.ColumnText(6))
				}
				doc.Complexity = complexity

				metadata = make([]byte, stmt.ColumnLen(7))
				stmt.ColumnBytes(7, metadata)
				doc.CreatedAt = time.Unix(0, stmt.ColumnInt64(8))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: load document %s: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	doc.ID = id

	canonical, err := decompressBlob(stored, tag, size)
	if err != nil {
		return nil, fmt.Errorf("docstore: document %s: %w", id, err)
	}
	if got := checksum.HashDocument(canonical); got != doc.Checksum {
		return nil, &CorruptDocumentError{ID: id, Want: doc.Checksum, Got: got}
	}
	doc.Canonical = canonical

	var meta documentMetadata
	if err := codec.Unmarshal(metadata, &meta); err != nil {
		return nil, fmt.Errorf("docstore: document %s: unmarshal metadata: %w", id, err)
	}
	doc.Paths = meta.Paths
	doc.LargeArrays = meta.LargeArrays
	doc.DeepObjects = meta.DeepObjects

	return &doc, nil
}

// LoadChunks loads and verifies all chunks of a document, ordered by
// index. Returns *chunk.IntegrityError on the first digest mismatch.
// A document stored without chunks yields an empty slice.
func (s *Store) LoadChunks(ctx context.Context, documentID string) ([]chunk.Chunk, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: load chunks: %w", err)
	}
	defer s.pool.Put(conn)

	var chunks []chunk.Chunk
	err = sqlitex.Execute(conn,
		`SELECT chunk_index, path, content, content_encoding, content_size, checksum
			FROM chunks WHERE document_id = ? ORDER BY chunk_index`,
		&sqlitex.ExecOptions{
			Args: []any{documentID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stored := make([]byte, stmt.ColumnLen(2))
				stmt.ColumnBytes(2, stored)

				content, err := decompressBlob(stored,
					CompressionTag(stmt.ColumnInt(3)), stmt.ColumnInt(4))
				if err != nil {
					return fmt.Errorf("chunk %d: %w", stmt.ColumnInt(0), err)
				}

				digest, err := checksum.ParseHex(stmt.ColumnText(5))
				if err != nil {
					return fmt.Errorf("chunk %d: parse checksum: %w", stmt.ColumnInt(0), err)
				}

				chunks = append(chunks, chunk.Chunk{
					Index:    stmt.ColumnInt(0),
					Path:     stmt.ColumnText(1),
					Content:  content,
					Size:     int64(len(content)),
					Checksum: digest,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: load chunks for %s: %w", documentID, err)
	}

	for i := range chunks {
		if got := checksum.HashChunk(chunks[i].Content); got != chunks[i].Checksum {
			return nil, &chunk.IntegrityError{
				Index: chunks[i].Index,
				Path:  chunks[i].Path,
				Want:  chunks[i].Checksum,
				Got:   got,
			}
		}
	}
	return chunks, nil
}

// DeleteDocument removes a document and its chunks. Deleting a
// missing document returns ErrNotFound.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: delete document: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("docstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, "DELETE FROM documents WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("docstore: delete document %s: %w", id, err)
	}
	if conn.Changes() == 0 {
		return ErrNotFound
	}

	err = sqlitex.Execute(conn, "DELETE FROM chunks WHERE document_id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("docstore: delete chunks for %s: %w", id, err)
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

// ListDocuments returns listing rows for the most recently stored
// documents, newest first. limit <= 0 selects 100.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]Info, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: list documents: %w", err)
	}
	defer s.pool.Put(conn)

	if limit <= 0 {
		limit = 100
	}

	var infos []Info
	err = sqlitex.Execute(conn,
		`SELECT d.id, d.checksum, d.content_size, d.node_count, d.max_depth,
			d.complexity, d.created_at,
			(SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id)
			FROM documents d ORDER BY d.created_at DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				digest, err := checksum.ParseHex(stmt.ColumnText(1))
				if err != nil {
					return fmt.Errorf("parse checksum: %w", err)
				}
				complexity, ok := analysis.ParseComplexity(stmt.ColumnText(5))
				if !ok {
					return fmt.Errorf("unknown complexity: %q", stmt.ColumnText(5))
				}
				infos = append(infos, Info{
					ID:         stmt.ColumnText(0),
					Checksum:   digest,
					Size:       stmt.ColumnInt64(2),
					NodeCount:  stmt.ColumnInt64(3),
					MaxDepth:   stmt.ColumnInt(4),
					Complexity: complexity,
					CreatedAt:  time.Unix(0, stmt.ColumnInt64(6)),
					ChunkCount: stmt.ColumnInt(7),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: list documents: %w", err)
	}
	return infos, nil
}

// Stats returns document and chunk counts plus the database file
// size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("docstore: stats: %w", err)
	}
	defer s.pool.Put(conn)

	var stats Stats
	err = sqlitex.Execute(conn,
		`SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM chunks),
			(SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size())`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stats.DocumentCount = stmt.ColumnInt64(0)
				stats.ChunkCount = stmt.ColumnInt64(1)
				stats.DatabaseSizeBytes = stmt.ColumnInt64(2)
				return nil
			},
		})
	if err != nil {
		return Stats{}, fmt.Errorf("docstore: stats: %w", err)
	}
	return stats, nil
}
