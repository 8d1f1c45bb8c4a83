// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging defines the structured, context-aware logger used across
// shopdesk and its slog-backed implementation.
//
// The variadic args are key-value pairs:
//
//	log.Info(ctx, "session saved", "user_id", id)
package logging

import "context"

// Logger is a context-aware, structured logger.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// EventKey is the attribute name used for stable event identifiers
// (SESSION_SAVED, LOGOUT, IDLE_TIMEOUT, ...).
const EventKey = "event"

// Event prefixes args with the event attribute.
func Event(name string, args ...any) []any {
	return append([]any{EventKey, name}, args...)
}
