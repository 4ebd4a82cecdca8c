// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// jsonlens-verify re-verifies every stored document and chunk against
// its recorded checksum. Exit status 0 means the store is clean, 1
// means at least one corruption was found, 2 means the check itself
// failed (bad config, unreadable database).
//
// Usage:
//
//	jsonlens-verify [flags]
package main
