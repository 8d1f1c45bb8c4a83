// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// stores returns every implementation under test.
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": openSQLite(t),
		"memory": NewMemory(),
	}
}

func TestStore_SetThenGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k1", "v1"))

			v, ok, err := s.Get(ctx, "k1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "v1", v)
		})
	}
}

func TestStore_GetMissingIsNotSet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(context.Background(), "absent")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)

			has, err := s.Has(context.Background(), "absent")
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k", "old"))
			require.NoError(t, s.Set(ctx, "k", "new"))

			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "new", v)
		})
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "x", "1"))
			require.NoError(t, s.Remove(ctx, "x"))
			require.NoError(t, s.Remove(ctx, "x"))

			has, err := s.Has(ctx, "x")
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestStore_SetManyAndRemoveMany(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))

			for k, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
				v, ok, err := s.Get(ctx, k)
				require.NoError(t, err)
				require.True(t, ok, k)
				assert.Equal(t, want, v)
			}

			require.NoError(t, s.RemoveMany(ctx, "a", "b", "missing"))

			has, err := s.Has(ctx, "a")
			require.NoError(t, err)
			assert.False(t, has)
			has, err = s.Has(ctx, "c")
			require.NoError(t, err)
			assert.True(t, has)
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"token"}, keys)
}

func TestSQLite_FileIsOwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	s := openSQLite(t)
	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSQLite_ErrorsAreWrappedAfterClose(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Close())

	_, _, err := s.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get kv[k]")

	err = s.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set kv[k]")

	err = s.RemoveMany(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove kv batch")
}

func TestMemory_ClosedStoreRejectsCalls(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	_, _, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Set(context.Background(), "k", "v"), ErrClosed)
}
