// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kv provides the durable key-value store shared by the token
// manager and the credential store.
//
// # Key Types
//
//   - Store: get/set/remove/has contract plus transactional batch writes
//   - SQLiteStore: file-backed implementation (modernc.org/sqlite + goose)
//   - MemoryStore: in-process implementation for tests and ephemeral runs
//
// Absence of a key is the "not set" state: Get reports ok=false with a nil
// error. Removing a missing key is not an error.
package kv
