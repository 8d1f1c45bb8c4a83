// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idle ends sessions that have seen no user input for too long.
//
// A Monitor is created once per protected screen. Start launches exactly
// two goroutines scoped to the returned Watch:
//
//   - the activity listener drains input events handed to Watch.Observe
//     and refreshes the session's activity timestamp for qualifying kinds
//   - the idle checker wakes every CheckInterval and, when the session is
//     logged in and has been idle for Timeout, calls Logout once and stops
//
// Observe never blocks the caller, so it can sit directly on the UI's
// input path. Stop cancels both goroutines and waits for them.
package idle
