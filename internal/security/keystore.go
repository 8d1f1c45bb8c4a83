// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// KEYSTORE INTERFACE
// =============================================================================

// KeyStore stores the local master key used to seal remembered credentials.
type KeyStore interface {
	// Store persists the key, replacing any previous one.
	Store(key []byte) error
	// Retrieve returns the stored key.
	Retrieve() ([]byte, error)
	// Delete removes the key. Deleting a missing key is not an error.
	Delete() error
	// Exists reports whether a key is stored.
	Exists() bool
}

// =============================================================================
// FILE-BASED KEYSTORE
// =============================================================================

// FileKeyStore keeps the key in a file readable only by the owner (0600)
// inside a 0700 directory.
type FileKeyStore struct {
	path string
}

// NewFileKeyStore creates a file-based key store at path.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// Path returns the key file location.
func (f *FileKeyStore) Path() string { return f.path }

// Store writes the key atomically with owner-only permissions.
func (f *FileKeyStore) Store(key []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("failed to stat key directory: %w", err)
		}
		if mode := info.Mode().Perm(); mode&0077 != 0 {
			return fmt.Errorf("%w: key directory %s has mode %o, want 0700", ErrInsecurePermissions, dir, mode)
		}
	}

	if err := util.AtomicWriteFile(f.path, key, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Retrieve reads the key from the file.
func (f *FileKeyStore) Retrieve() ([]byte, error) {
	key, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return key, nil
}

// Delete removes the key file.
func (f *FileKeyStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists checks if the key file exists.
func (f *FileKeyStore) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// =============================================================================
// IN-MEMORY KEYSTORE
// =============================================================================

// MemoryKeyStore holds the key in process memory. Used for --ephemeral runs
// and tests.
type MemoryKeyStore struct {
	key []byte
}

func (m *MemoryKeyStore) Store(key []byte) error {
	m.key = append([]byte(nil), key...)
	return nil
}

func (m *MemoryKeyStore) Retrieve() ([]byte, error) {
	if m.key == nil {
		return nil, fmt.Errorf("failed to read key: %w", os.ErrNotExist)
	}
	return append([]byte(nil), m.key...), nil
}

func (m *MemoryKeyStore) Delete() error {
	ZeroBytes(m.key)
	m.key = nil
	return nil
}

func (m *MemoryKeyStore) Exists() bool { return m.key != nil }

// =============================================================================
// HELPERS
// =============================================================================

// LoadOrCreateKey returns the stored master key, generating and storing a new
// random one on first use.
func LoadOrCreateKey(ks KeyStore) ([]byte, error) {
	if ks.Exists() {
		key, err := ks.Retrieve()
		if err != nil {
			return nil, err
		}
		if len(key) != KeySize {
			ZeroBytes(key)
			return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
		}
		return key, nil
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	if err := ks.Store(key); err != nil {
		ZeroBytes(key)
		return nil, errors.Join(ErrKeyStoreFailed, err)
	}
	return key, nil
}

// ZeroBytes overwrites b with zeros.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
