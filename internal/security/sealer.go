// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// NonceSize is the AES-GCM nonce size (96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size.
const KeySize = 32

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCiphertext indicates the sealed value is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates the wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
	// ErrInvalidKey indicates a master key of the wrong length.
	ErrInvalidKey = errors.New("invalid master key")
	// ErrKeyStoreFailed indicates key storage operation failed.
	ErrKeyStoreFailed = errors.New("key storage operation failed")
	// ErrInsecurePermissions indicates the key directory is group/world accessible.
	ErrInsecurePermissions = errors.New("insecure key directory permissions")
)

// =============================================================================
// SEALER
// =============================================================================

// Sealer encrypts short secrets with AES-256-GCM under a sub-key derived from
// the master key with HKDF-SHA256. The purpose string binds the sub-key to
// one use so the same master key can seal unrelated data.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a purpose-bound sub-key from master.
func NewSealer(master []byte, purpose string) (*Sealer, error) {
	if len(master) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(master))
	}

	sub := make([]byte, KeySize)
	defer ZeroBytes(sub)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(purpose)), sub); err != nil {
		return nil, fmt.Errorf("failed to derive sub-key: %w", err)
	}

	block, err := aes.NewCipher(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext and returns it base64 encoded with EncryptedPrefix.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return "", ErrInvalidCiphertext
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(data) < NonceSize+s.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := s.aead.Open(nil, data[:NonceSize], data[NonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsSealed reports whether value carries EncryptedPrefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
