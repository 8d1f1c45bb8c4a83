// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("kv: store closed")

// Store is the durable key-value contract.
type Store interface {
	// Get returns the value for key. ok is false when the key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error

	// Has reports whether key is set.
	Has(ctx context.Context, key string) (bool, error)

	// SetMany writes every pair in a single transaction. Readers never
	// observe a subset of the pairs.
	SetMany(ctx context.Context, pairs map[string]string) error

	// RemoveMany deletes every key in a single transaction.
	RemoveMany(ctx context.Context, keys ...string) error

	// Close releases resources held by the store.
	Close() error
}
