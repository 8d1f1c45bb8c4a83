// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the persisted authentication state: the session token
// and user id pair, the last-activity timestamp, and the optional
// remembered login credentials.
//
// # Key Types
//
//   - TokenManager: token + user id pair, login predicate, idle tracking
//   - CredentialStore: remember-me flag and the sealed email/password pair
//
// Both sit on a kv.Store shared with other writers, so reads that must see
// the latest state (IsLoggedIn) always go back to storage.
package auth
