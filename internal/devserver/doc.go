// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver is an in-memory shop admin backend for local
// development and tests. Tokens are HS256 JWTs, passwords are bcrypt
// hashed, and the catalog is seeded from YAML.
package devserver
