// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum computes the content digests JSONLens uses for
// document identity and deduplication. Digests are BLAKE3 keyed
// hashes over canonical bytes (see lib/jsonvalue): identical canonical
// bytes always produce the same digest, and distinct bytes are
// treated as never colliding.
package checksum

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest.
type Digest [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Separate keys
// for documents and chunks ensure a chunk whose content happens to
// equal a whole document never shares its digest. The byte values are
// the ASCII domain name zero-padded to 32 bytes, which keeps the keys
// readable in hex dumps without weakening the hash.
type domainKey [32]byte

var (
	documentDomainKey = domainKey{
		'j', 's', 'o', 'n', 'l', 'e', 'n', 's', '.',
		'd', 'o', 'c', 'u', 'm', 'e', 'n', 't',
	}

	chunkDomainKey = domainKey{
		'j', 's', 'o', 'n', 'l', 'e', 'n', 's', '.',
		'c', 'h', 'u', 'n', 'k',
	}
)

// HashDocument computes the document-domain digest of a canonical
// byte sequence. This is the checksum stored in the structural
// profile and used as the deduplication key.
func HashDocument(canonical []byte) Digest {
	return keyedSum(documentDomainKey, canonical)
}

// HashChunk computes the chunk-domain digest of a chunk's serialized
// content. Chunk digests are independent of the parent document
// digest.
func HashChunk(content []byte) Digest {
	return keyedSum(chunkDomainKey, content)
}

// Hex returns the lowercase hex encoding of the digest. This is the
// canonical external form used in storage rows, logs, and CLI output.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements fmt.Stringer.
func (d Digest) String() string { return d.Hex() }

// IsZero reports whether the digest is all zero bytes. A zero digest
// never results from hashing; it marks an unset field.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseHex parses a 64-character hex string into a Digest.
func ParseHex(s string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(d) {
		return d, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(d))
	}
	copy(d[:], decoded)
	return d, nil
}

func keyedSum(key domainKey, data []byte) Digest {
	// NewKeyed only fails for a key of the wrong length, which the
	// fixed-size type rules out.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("checksum: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}
