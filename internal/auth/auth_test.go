// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopdesk-tui/internal/clock"
	"github.com/jeranaias/shopdesk-tui/internal/kv"
	"github.com/jeranaias/shopdesk-tui/internal/security"
)

var errDisk = errors.New("disk unavailable")

// flakyStore fails every operation while broken is set.
type flakyStore struct {
	kv.Store
	broken bool
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.broken {
		return "", false, errDisk
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) SetMany(ctx context.Context, pairs map[string]string) error {
	if f.broken {
		return errDisk
	}
	return f.Store.SetMany(ctx, pairs)
}

func (f *flakyStore) RemoveMany(ctx context.Context, keys ...string) error {
	if f.broken {
		return errDisk
	}
	return f.Store.RemoveMany(ctx, keys...)
}

func testSealer(t *testing.T) *security.Sealer {
	t.Helper()
	s, err := security.NewSealer(bytes.Repeat([]byte{7}, security.KeySize), "remembered-password")
	require.NoError(t, err)
	return s
}

// =============================================================================
// TOKEN MANAGER TESTS
// =============================================================================

func TestTokenManager_SaveThenLoggedIn(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager(kv.NewMemory())

	require.NoError(t, tm.SaveSession(ctx, "tok1", 42))

	assert.True(t, tm.IsLoggedIn(ctx))
	token, ok := tm.Token(ctx, false)
	require.True(t, ok)
	assert.Equal(t, "tok1", token)
	id, ok := tm.UserID(ctx, true)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestTokenManager_FreshStateIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager(kv.NewMemory())

	assert.False(t, tm.IsLoggedIn(ctx))
	_, ok := tm.Token(ctx, false)
	assert.False(t, ok)
	_, ok = tm.UserID(ctx, false)
	assert.False(t, ok)
}

func TestTokenManager_PairNeverObservedHalfSet(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	tm := NewTokenManager(store)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			require.NoError(t, tm.SaveSession(ctx, "tok", int64(rng.Intn(1000)+1)))
		} else {
			require.NoError(t, tm.ClearSession(ctx))
		}

		for _, force := range []bool{false, true} {
			_, hasToken := tm.Token(ctx, force)
			_, hasID := tm.UserID(ctx, force)
			require.Equal(t, hasToken, hasID, "step %d force=%v", i, force)
		}

		tokenStored, err := store.Has(ctx, KeyToken)
		require.NoError(t, err)
		idStored, err := store.Has(ctx, KeyUserID)
		require.NoError(t, err)
		require.Equal(t, tokenStored, idStored, "step %d storage", i)
	}
}

func TestTokenManager_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager(kv.NewMemory())
	require.NoError(t, tm.SaveSession(ctx, "tok", 1))

	require.NoError(t, tm.ClearSession(ctx))
	require.NoError(t, tm.ClearSession(ctx))
	assert.False(t, tm.IsLoggedIn(ctx))
}

func TestTokenManager_RejectsIncompleteSession(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager(kv.NewMemory())

	assert.ErrorIs(t, tm.SaveSession(ctx, "", 1), ErrInvalidSession)
	assert.ErrorIs(t, tm.SaveSession(ctx, "tok", 0), ErrInvalidSession)
	assert.False(t, tm.IsLoggedIn(ctx))
}

func TestTokenManager_ForceReloadSeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ui := NewTokenManager(store)
	background := NewTokenManager(store)

	require.NoError(t, ui.SaveSession(ctx, "tok1", 42))
	require.NoError(t, background.ClearSession(ctx))

	cached, ok := ui.Token(ctx, false)
	assert.True(t, ok, "cached read does not hit storage")
	assert.Equal(t, "tok1", cached)

	_, ok = ui.Token(ctx, true)
	assert.False(t, ok)
	_, ok = ui.Token(ctx, false)
	assert.False(t, ok, "forced read refreshes the cache")
}

func TestTokenManager_HalfPairReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, KeyToken, "orphan"))
	tm := NewTokenManager(store)

	assert.False(t, tm.IsLoggedIn(ctx))
	_, ok := tm.Token(ctx, true)
	assert.False(t, ok)

	require.NoError(t, store.Remove(ctx, KeyToken))
	require.NoError(t, store.Set(ctx, KeyUserID, "not-a-number"))
	assert.False(t, tm.IsLoggedIn(ctx))
}

func TestTokenManager_StoreErrorsDegradeToAbsent(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: kv.NewMemory()}
	tm := NewTokenManager(store)
	require.NoError(t, tm.SaveSession(ctx, "tok", 7))

	store.broken = true
	assert.False(t, tm.IsLoggedIn(ctx))
	assert.Error(t, tm.SaveSession(ctx, "tok2", 8))
	assert.Error(t, tm.ClearSession(ctx))

	store.broken = false
	token, ok := tm.Token(ctx, false)
	require.True(t, ok, "cache is reloaded after a failed read")
	assert.Equal(t, "tok", token)
}

func TestTokenManager_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shopdesk.db")

	store, err := kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewTokenManager(store).SaveSession(ctx, "persisted", 9))
	require.NoError(t, store.Close())

	store, err = kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	tm := NewTokenManager(store)
	assert.True(t, tm.IsLoggedIn(ctx))
	id, _ := tm.UserID(ctx, false)
	assert.Equal(t, int64(9), id)
}

// =============================================================================
// IDLE TRACKING TESTS
// =============================================================================

func TestTokenManager_TimeoutBoundary(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	tm := NewTokenManager(kv.NewMemory(), WithClock(clk))

	tm.UpdateLastActivity()

	clk.Advance(59999 * time.Millisecond)
	assert.False(t, tm.HasSessionTimedOut(60000*time.Millisecond))

	clk.Advance(time.Millisecond)
	assert.True(t, tm.HasSessionTimedOut(60000*time.Millisecond))
}

func TestTokenManager_TimeoutIsMonotonic(t *testing.T) {
	const threshold = 15 * time.Minute
	for _, d := range []time.Duration{0, time.Second, threshold / 2, threshold - time.Nanosecond, threshold, threshold + time.Nanosecond, 2 * threshold} {
		clk := clock.NewManual(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
		tm := NewTokenManager(kv.NewMemory(), WithClock(clk))
		tm.UpdateLastActivity()
		clk.Advance(d)
		assert.Equal(t, d >= threshold, tm.HasSessionTimedOut(threshold), "idle %v", d)
	}
}

func TestTokenManager_NoActivityNeverTimesOut(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	tm := NewTokenManager(kv.NewMemory(), WithClock(clk))

	clk.Advance(24 * time.Hour)
	assert.False(t, tm.HasSessionTimedOut(time.Minute))
	assert.Zero(t, tm.IdleFor())
	_, ok := tm.LastActivity()
	assert.False(t, ok)
}

func TestTokenManager_ActivityResetsIdle(t *testing.T) {
	start := time.Unix(1000, 0)
	clk := clock.NewManual(start)
	tm := NewTokenManager(kv.NewMemory(), WithClock(clk))

	tm.UpdateLastActivity()
	clk.Advance(50 * time.Second)
	assert.Equal(t, 50*time.Second, tm.IdleFor())

	tm.UpdateLastActivity()
	clk.Advance(20 * time.Second)
	assert.False(t, tm.HasSessionTimedOut(time.Minute))
	last, ok := tm.LastActivity()
	require.True(t, ok)
	assert.Equal(t, start.Add(50*time.Second), last)
}

// =============================================================================
// CREDENTIAL STORE TESTS
// =============================================================================

func TestCredentialStore_RememberRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	creds, err := NewCredentialStore(store, testSealer(t), nil)
	require.NoError(t, err)

	require.NoError(t, creds.Save(ctx, "  A@B.com ", "hunter2", true))

	assert.True(t, creds.RememberMe(ctx))
	email, ok := creds.Email(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", email)
	pw, ok := creds.Password(ctx)
	require.True(t, ok)
	assert.Equal(t, "hunter2", pw)

	raw, _, err := store.Get(ctx, KeyRememberedPassword)
	require.NoError(t, err)
	assert.NotContains(t, raw, "hunter2")
	assert.True(t, security.IsSealed(raw))
}

func TestCredentialStore_ForgetRemovesPair(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	creds, err := NewCredentialStore(store, testSealer(t), nil)
	require.NoError(t, err)

	require.NoError(t, creds.Save(ctx, "a@b.com", "pw", true))
	require.NoError(t, creds.Save(ctx, "a@b.com", "pw", false))

	assert.False(t, creds.RememberMe(ctx))
	_, ok := creds.Email(ctx)
	assert.False(t, ok)
	_, ok = creds.Password(ctx)
	assert.False(t, ok)
	for _, key := range []string{KeyRememberedEmail, KeyRememberedPassword} {
		has, err := store.Has(ctx, key)
		require.NoError(t, err)
		assert.False(t, has, key)
	}
}

func TestCredentialStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	creds, err := NewCredentialStore(kv.NewMemory(), testSealer(t), nil)
	require.NoError(t, err)
	require.NoError(t, creds.Save(ctx, "a@b.com", "pw", true))

	require.NoError(t, creds.Clear(ctx))
	require.NoError(t, creds.Clear(ctx))

	assert.False(t, creds.RememberMe(ctx))
	_, ok := creds.Email(ctx)
	assert.False(t, ok)
}

func TestCredentialStore_UnreadablePasswordIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	creds, err := NewCredentialStore(store, testSealer(t), nil)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, KeyRememberedPassword, "plaintext-from-old-version"))
	_, ok := creds.Password(ctx)
	assert.False(t, ok)
}

func TestNewCredentialStore_RequiresSealer(t *testing.T) {
	_, err := NewCredentialStore(kv.NewMemory(), nil, nil)
	assert.ErrorIs(t, err, ErrMissingSealer)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@shop.test", NormalizeEmail(" Ａda@Shop.TEST\n"))
	assert.Equal(t, "", NormalizeEmail("   "))
}
