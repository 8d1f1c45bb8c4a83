// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/shopdesk-tui/internal/kv"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
)

// Sealer encrypts and decrypts the remembered password.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// =============================================================================
// CREDENTIAL STORE
// =============================================================================

// CredentialStore persists the optional remember-me login pair. When the
// flag is false no email or password is left in storage.
type CredentialStore struct {
	store  kv.Store
	sealer Sealer
	log    logging.Logger
}

// NewCredentialStore returns a store that seals passwords with sealer.
func NewCredentialStore(store kv.Store, sealer Sealer, log logging.Logger) (*CredentialStore, error) {
	if sealer == nil {
		return nil, ErrMissingSealer
	}
	if log == nil {
		log = logging.Discard()
	}
	return &CredentialStore{
		store:  store,
		sealer: sealer,
		log:    log.With("component", "credentials"),
	}, nil
}

// Save records the login form's remember choice. With remember unset any
// previously remembered pair is removed before the flag is written.
func (c *CredentialStore) Save(ctx context.Context, email, password string, remember bool) error {
	if !remember {
		if err := c.store.RemoveMany(ctx, KeyRememberedEmail, KeyRememberedPassword); err != nil {
			return fmt.Errorf("forget credentials: %w", err)
		}
		if err := c.store.Set(ctx, KeyRememberMe, "false"); err != nil {
			return fmt.Errorf("save remember flag: %w", err)
		}
		return nil
	}

	sealed, err := c.sealer.Seal(password)
	if err != nil {
		return fmt.Errorf("seal password: %w", err)
	}
	err = c.store.SetMany(ctx, map[string]string{
		KeyRememberMe:         "true",
		KeyRememberedEmail:    NormalizeEmail(email),
		KeyRememberedPassword: sealed,
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	c.log.Info(ctx, "credentials remembered", logging.Event("CREDENTIALS_SAVED")...)
	return nil
}

// Email returns the remembered email.
func (c *CredentialStore) Email(ctx context.Context) (string, bool) {
	v, ok := c.get(ctx, KeyRememberedEmail)
	return v, ok && v != ""
}

// Password returns the remembered password. A value that no longer opens
// (key rotated, file tampered) reads as absent.
func (c *CredentialStore) Password(ctx context.Context) (string, bool) {
	sealed, ok := c.get(ctx, KeyRememberedPassword)
	if !ok {
		return "", false
	}
	pw, err := c.sealer.Open(sealed)
	if err != nil {
		c.log.Warn(ctx, "remembered password could not be opened",
			logging.Event("CREDENTIALS_UNREADABLE", "err", err)...)
		return "", false
	}
	return pw, true
}

// RememberMe reports the stored flag; absent reads as false.
func (c *CredentialStore) RememberMe(ctx context.Context) bool {
	v, ok := c.get(ctx, KeyRememberMe)
	return ok && v == "true"
}

// Clear removes the flag and the pair. Idempotent.
func (c *CredentialStore) Clear(ctx context.Context) error {
	if err := c.store.RemoveMany(ctx, KeyRememberMe, KeyRememberedEmail, KeyRememberedPassword); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	c.log.Info(ctx, "credentials cleared", logging.Event("CREDENTIALS_CLEARED")...)
	return nil
}

func (c *CredentialStore) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Error(ctx, "credential read failed", logging.Event("STORE_READ_FAILED", "key", key, "err", err)...)
		return "", false
	}
	return v, ok
}

// NormalizeEmail applies NFKC, trims and lower-cases an address so that
// visually identical inputs compare equal.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(email)))
}
