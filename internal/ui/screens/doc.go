// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package screens implements one Bubble Tea model per navigation screen.
//
// Screens never switch themselves: they call the Navigator, and the app
// swaps models when the navigation transition arrives. Protected screens
// are built with NewProtected, which refuses to build without a session.
package screens
