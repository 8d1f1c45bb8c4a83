// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security seals secrets that shopdesk keeps on disk.
//
// A random 256-bit master key lives in a 0600 key file next to the session
// database. Remembered passwords are sealed with AES-256-GCM under an
// HKDF-SHA256 sub-key so the master key itself never encrypts data.
package security
