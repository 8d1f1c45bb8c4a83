// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/clock"
	"github.com/jeranaias/shopdesk-tui/internal/kv"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// TOKEN MANAGER
// =============================================================================

// TokenManager reads and writes the session token and user id, and tracks
// the last-activity instant used for idle timeout.
//
// The pair is cached in memory after the first read. Writers other than
// this manager may change storage, so callers that need the current truth
// pass forceReload. A pair read back with only one half present is treated
// as no session at all.
type TokenManager struct {
	store kv.Store
	clock clock.Clock
	log   logging.Logger

	mu     sync.Mutex
	cached bool
	token  string
	userID int64

	lastActivity time.Time
	hasActivity  bool
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(m *TokenManager) { m.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *TokenManager) { m.log = l }
}

// NewTokenManager returns a manager backed by store.
func NewTokenManager(store kv.Store, opts ...Option) *TokenManager {
	m := &TokenManager{
		store: store,
		clock: clock.Real(),
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "tokens")
	return m
}

// SaveSession stores token and user id in one write. The cache changes
// only after the write succeeds.
func (m *TokenManager) SaveSession(ctx context.Context, token string, userID int64) error {
	if token == "" || userID <= 0 {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.SetMany(ctx, map[string]string{
		KeyToken:  token,
		KeyUserID: util.Int64ToString(userID),
	})
	if err != nil {
		m.cached = false
		return fmt.Errorf("save session: %w", err)
	}

	m.token, m.userID, m.cached = token, userID, true
	m.log.Info(ctx, "session saved", logging.Event("SESSION_SAVED", "user_id", userID)...)
	return nil
}

// Token returns the session token, or false when there is none.
func (m *TokenManager) Token(ctx context.Context, forceReload bool) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx, forceReload)
	return m.token, m.token != ""
}

// UserID returns the authenticated user id, or false when there is none.
func (m *TokenManager) UserID(ctx context.Context, forceReload bool) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx, forceReload)
	return m.userID, m.userID > 0
}

// ClearSession removes the pair. Clearing an empty session is a no-op.
func (m *TokenManager) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.RemoveMany(ctx, KeyToken, KeyUserID); err != nil {
		m.cached = false
		return fmt.Errorf("clear session: %w", err)
	}

	m.token, m.userID, m.cached = "", 0, true
	m.log.Info(ctx, "session cleared", logging.Event("SESSION_CLEARED")...)
	return nil
}

// IsLoggedIn reports whether both token and user id are present in
// storage. It is the only authentication predicate; it always re-reads.
func (m *TokenManager) IsLoggedIn(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx, true)
	return m.token != "" && m.userID > 0
}

// ensureLoaded refreshes the cache from storage when forced or cold.
// Must be called with m.mu held.
func (m *TokenManager) ensureLoaded(ctx context.Context, force bool) {
	if m.cached && !force {
		return
	}

	token, hasToken, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		m.degrade(ctx, err)
		return
	}
	rawID, hasID, err := m.store.Get(ctx, KeyUserID)
	if err != nil {
		m.degrade(ctx, err)
		return
	}

	m.token, m.userID, m.cached = "", 0, true
	switch {
	case !hasToken && !hasID:
		return
	case hasToken != hasID:
		m.log.Warn(ctx, "half of the session pair is stored, treating as logged out",
			logging.Event("SESSION_INCONSISTENT", "has_token", hasToken, "has_user_id", hasID)...)
		return
	}

	id, err := util.ParseInt64(rawID)
	if err != nil || id <= 0 || token == "" {
		m.log.Warn(ctx, "stored session is malformed, treating as logged out",
			logging.Event("SESSION_INCONSISTENT", "user_id", rawID)...)
		return
	}
	m.token, m.userID = token, id
}

func (m *TokenManager) degrade(ctx context.Context, err error) {
	m.token, m.userID, m.cached = "", 0, false
	m.log.Error(ctx, "session read failed", logging.Event("STORE_READ_FAILED", "err", err)...)
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// UpdateLastActivity records now as the last user activity.
func (m *TokenManager) UpdateLastActivity() {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity, m.hasActivity = now, true
}

// HasSessionTimedOut reports whether at least threshold has passed since
// the last recorded activity. With no activity recorded it is false.
func (m *TokenManager) HasSessionTimedOut(threshold time.Duration) bool {
	m.mu.Lock()
	last, ok := m.lastActivity, m.hasActivity
	m.mu.Unlock()
	if !ok {
		return false
	}
	return m.clock.Now().Sub(last) >= threshold
}

// LastActivity returns the last recorded activity instant.
func (m *TokenManager) LastActivity() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity, m.hasActivity
}

// IdleFor returns the time since the last activity, or zero if none.
func (m *TokenManager) IdleFor() time.Duration {
	m.mu.Lock()
	last, ok := m.lastActivity, m.hasActivity
	m.mu.Unlock()
	if !ok {
		return 0
	}
	if d := m.clock.Now().Sub(last); d > 0 {
		return d
	}
	return 0
}
