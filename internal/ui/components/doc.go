// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable pieces of the shopdesk TUI: the
// header and status bar, the idle timeout overlay, toasts and markdown
// rendering.
package components
