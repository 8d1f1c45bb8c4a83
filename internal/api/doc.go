// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the shop admin backend.
//
// Requests carry the current bearer token when one is stored. A 401 from
// any authenticated endpoint surfaces as ErrUnauthorized; the caller
// decides whether that ends the session. The client never logs out on its
// own.
package api
