// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by shopdesk packages.
//
// String Utilities:
//   - TruncateWidth, PadRight: column-aware cell fitting for tables
//   - TruncateRunes: rune-safe truncation with ellipsis
//
// Conversion:
//   - FormatCents, ParseCents: money in minor units
//   - FormatClock: countdown rendering for the idle warning
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
