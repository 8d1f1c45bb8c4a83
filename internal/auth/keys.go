// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "errors"

// Storage keys.
const (
	KeyToken              = "auth_token"
	KeyUserID             = "user_id"
	KeyRememberMe         = "remember_me"
	KeyRememberedEmail    = "remembered_email"
	KeyRememberedPassword = "remembered_password"
)

var (
	// ErrInvalidSession is returned when SaveSession gets an empty token or
	// a non-positive user id.
	ErrInvalidSession = errors.New("invalid session: token and user id are both required")

	// ErrMissingSealer is returned when a CredentialStore is built without
	// a way to seal passwords.
	ErrMissingSealer = errors.New("credential store requires a sealer")
)
