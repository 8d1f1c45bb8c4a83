// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates the login lifecycle.
//
// Whether a user is authenticated is never stored here; it is derived from
// the token store on every query. The Manager sequences logout (clear the
// session, forget remembered credentials, return to Login), acknowledges
// successful logins, and refreshes the activity timestamp that drives idle
// timeout.
//
// # Key Types
//
//   - Manager: the coordinator, shared by every protected screen
//   - LoginResult: what a successful sign-in hands to CompleteLogin
//   - Status: a point-in-time snapshot for the status bar and CLI
//
// # Usage
//
//	mgr, err := session.New(tokens, creds, nav, log)
//	if err != nil {
//	    return err
//	}
//	mgr.UpdateActivity(ctx)
//	if mgr.IsLoggedIn(ctx) && mgr.HasSessionTimedOut(15*time.Minute) {
//	    _ = mgr.Logout(ctx)
//	}
package session
