// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model.
//
// The app follows the navigation state: every transition delivered on its
// subscription replaces the active screen. Entering a protected screen
// starts an idle watch and leaving it stops the watch, so at most one
// watch runs at a time. ActivityFilter feeds terminal input to that watch.
package app
