// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// ErrMissingDependency is returned by New when a collaborator is nil.
var ErrMissingDependency = errors.New("session manager: missing dependency")

// =============================================================================
// COLLABORATORS
// =============================================================================

// Tokens is the session token store. *auth.TokenManager implements it.
type Tokens interface {
	SaveSession(ctx context.Context, token string, userID int64) error
	ClearSession(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	UserID(ctx context.Context, forceReload bool) (int64, bool)
	UpdateLastActivity()
	HasSessionTimedOut(threshold time.Duration) bool
	LastActivity() (time.Time, bool)
	IdleFor() time.Duration
}

// Credentials is the remembered-login store. *auth.CredentialStore
// implements it.
type Credentials interface {
	Save(ctx context.Context, email, password string, remember bool) error
	Clear(ctx context.Context) error
}

// Navigator is the navigation entry point. *navigation.State implements it.
type Navigator interface {
	NavigateTo(s navigation.Screen)
	ResetToLogin()
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager coordinates login, logout and activity tracking.
type Manager struct {
	tokens Tokens
	creds  Credentials
	nav    Navigator
	log    logging.Logger

	// logoutMu keeps an idle-triggered logout and a user-triggered one
	// from interleaving their steps.
	logoutMu      sync.Mutex
	justLoggedOut atomic.Bool
}

// New wires a Manager. Every collaborator is required.
func New(tokens Tokens, creds Credentials, nav Navigator, log logging.Logger) (*Manager, error) {
	var missing []string
	if isNil(tokens) {
		missing = append(missing, "tokens")
	}
	if isNil(creds) {
		missing = append(missing, "credentials")
	}
	if isNil(nav) {
		missing = append(missing, "navigation")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, missing)
	}
	if isNil(log) {
		log = logging.Discard()
	}
	return &Manager{
		tokens: tokens,
		creds:  creds,
		nav:    nav,
		log:    log.With("component", "session"),
	}, nil
}

// =============================================================================
// ACTIVITY
// =============================================================================

// UpdateActivity refreshes the last-activity timestamp when a session
// exists. Without one it does nothing.
func (m *Manager) UpdateActivity(ctx context.Context) {
	if !m.tokens.IsLoggedIn(ctx) {
		return
	}
	m.tokens.UpdateLastActivity()
}

// HasSessionTimedOut reports whether threshold has elapsed since the last
// activity.
func (m *Manager) HasSessionTimedOut(threshold time.Duration) bool {
	return m.tokens.HasSessionTimedOut(threshold)
}

// IsLoggedIn reports whether a complete session is stored.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	return m.tokens.IsLoggedIn(ctx)
}

// IdleFor returns the time since the last recorded activity.
func (m *Manager) IdleFor() time.Duration {
	return m.tokens.IdleFor()
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// LoginResult is what a successful sign-in produces.
type LoginResult struct {
	Token    string
	User     model.User
	Email    string
	Password string
	Remember bool
}

// CompleteLogin persists a successful sign-in and opens the dashboard.
// Credentials are saved first so a failure leaves no session behind.
func (m *Manager) CompleteLogin(ctx context.Context, res LoginResult) error {
	if err := m.creds.Save(ctx, res.Email, res.Password, res.Remember); err != nil {
		return err
	}
	if err := m.tokens.SaveSession(ctx, res.Token, res.User.ID); err != nil {
		return err
	}
	m.tokens.UpdateLastActivity()
	m.OnLoginSuccess()
	m.log.Info(ctx, "login complete", logging.Event("LOGIN", "user_id", res.User.ID, "remember", res.Remember)...)
	m.nav.NavigateTo(navigation.Dashboard{User: res.User})
	return nil
}

// OnLoginSuccess clears the just-logged-out flag.
func (m *Manager) OnLoginSuccess() {
	m.justLoggedOut.Store(false)
}

// JustLoggedOut reports whether a logout happened since the last login.
// Screens use it to skip side effects while the reset to Login is still
// being delivered.
func (m *Manager) JustLoggedOut() bool {
	return m.justLoggedOut.Load()
}

// Logout ends the session. Every step runs even when an earlier one fails
// or has nothing to do:
//
//  1. mark just-logged-out
//  2. clear token and user id
//  3. clear remembered credentials regardless of the remember flag
//  4. re-check the session and clear again if it is still present
//  5. reset navigation to Login
//
// Errors from the storage steps are joined. Calling Logout with no session
// is safe.
func (m *Manager) Logout(ctx context.Context) error {
	m.logoutMu.Lock()
	defer m.logoutMu.Unlock()

	m.justLoggedOut.Store(true)

	var errs []error
	if err := m.tokens.ClearSession(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := m.creds.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if m.tokens.IsLoggedIn(ctx) {
		m.log.Warn(ctx, "session still present after clear, clearing again",
			logging.Event("SESSION_RECLEAR")...)
		if err := m.tokens.ClearSession(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.nav.ResetToLogin()

	err := errors.Join(errs...)
	if err != nil {
		m.log.Error(ctx, "logout finished with errors", logging.Event("LOGOUT", "err", err)...)
	} else {
		m.log.Info(ctx, "logged out", logging.Event("LOGOUT")...)
	}
	return err
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a snapshot of the session.
type Status struct {
	LoggedIn      bool          `json:"logged_in"`
	UserID        int64         `json:"user_id,omitempty"`
	LastActivity  time.Time     `json:"last_activity,omitzero"`
	Idle          time.Duration `json:"idle_ns"`
	Remaining     time.Duration `json:"remaining_ns"`
	JustLoggedOut bool          `json:"just_logged_out"`
}

// Status returns the session state measured against threshold.
func (m *Manager) Status(ctx context.Context, threshold time.Duration) Status {
	st := Status{
		LoggedIn:      m.tokens.IsLoggedIn(ctx),
		JustLoggedOut: m.JustLoggedOut(),
	}
	if !st.LoggedIn {
		return st
	}
	st.UserID, _ = m.tokens.UserID(ctx, false)
	last, ok := m.tokens.LastActivity()
	if !ok {
		st.Remaining = threshold
		return st
	}
	st.LastActivity = last
	st.Idle = m.tokens.IdleFor()
	if st.Remaining = threshold - st.Idle; st.Remaining < 0 {
		st.Remaining = 0
	}
	return st
}

// FormatDuration returns a short human-readable duration ("45s", "3m",
// "14m 5s").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return util.IntToString(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
