// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopdesk-tui/internal/logging"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SHOPDESK_API_URL", "SHOPDESK_SESSION_TIMEOUT", "SHOPDESK_CHECK_INTERVAL", "SHOPDESK_DATA_DIR"} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 900, cfg.Session.TimeoutSecs)
	assert.Equal(t, 5, cfg.Session.CheckIntervalSecs)
	assert.Equal(t, 60, cfg.Session.WarningSecs)
	assert.True(t, cfg.Session.CountKeyboard)
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 5*time.Second, cfg.CheckInterval())
	assert.Equal(t, time.Minute, cfg.WarningBefore())
}

func TestLoadTOMLKeepsUnsetDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://shop.example.com"

[session]
timeout_secs = 600
`), 0644))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
	assert.Equal(t, 600, cfg.Session.TimeoutSecs)
	assert.Equal(t, 5, cfg.Session.CheckIntervalSecs)
	assert.True(t, cfg.Session.CountKeyboard)
	assert.True(t, cfg.UI.Mouse)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestLoadJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"session":{"timeout_secs":120,"check_interval_secs":10}}`), 0600))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Session.TimeoutSecs)
	assert.Equal(t, 10, cfg.Session.CheckIntervalSecs)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\ntimeout = 5\n"), 0600))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.timeout")
}

func TestLoadMissingExplicitPath(t *testing.T) {
	clearEnv(t)
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("SHOPDESK_API_URL", "http://127.0.0.1:9999")
	t.Setenv("SHOPDESK_SESSION_TIMEOUT", "40")
	t.Setenv("SHOPDESK_CHECK_INTERVAL", "10")
	t.Setenv("SHOPDESK_DATA_DIR", dir)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\ntimeout_secs = 600\n"), 0600))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.API.BaseURL)
	assert.Equal(t, 40, cfg.Session.TimeoutSecs)
	assert.Equal(t, 10, cfg.Session.CheckIntervalSecs)
	assert.Equal(t, filepath.Join(dir, "session.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join(dir, "master.key"), cfg.KeyPath())
}

func TestEnvOverrideBadNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPDESK_SESSION_TIMEOUT", "soon")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0600))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPDESK_SESSION_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"timeout too small", func(c *Config) { c.Session.TimeoutSecs = 5 }, "session.timeout_secs"},
		{"check interval too coarse", func(c *Config) { c.Session.TimeoutSecs = 60; c.Session.CheckIntervalSecs = 16 }, "session.check_interval_secs"},
		{"check interval zero", func(c *Config) { c.Session.CheckIntervalSecs = 0 }, "session.check_interval_secs"},
		{"warning exceeds timeout", func(c *Config) { c.Session.WarningSecs = 900 }, "session.warning_secs"},
		{"db file is a path", func(c *Config) { c.Storage.DBFile = "../x.db" }, "storage.db_file"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"negative rate", func(c *Config) { c.API.RequestsPerSecond = -1 }, "api.requests_per_second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCheckIntervalQuarterBoundary(t *testing.T) {
	cfg := Default()
	cfg.Session.TimeoutSecs = 60
	cfg.Session.WarningSecs = 10
	cfg.Session.CheckIntervalSecs = 15
	assert.NoError(t, cfg.Validate())
}

func TestLoadWrapsValidation(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, _, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	for _, name := range []string{"config.toml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.API.BaseURL = "https://admin.example.com"
			cfg.Session.TimeoutSecs = 300
			cfg.UI.Mouse = false

			path := filepath.Join(dir, name)
			require.NoError(t, Save(cfg, path))

			got, _, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("session.timeout_secs", "600"))
	assert.Equal(t, 600, cfg.Session.TimeoutSecs)

	require.NoError(t, cfg.Set("api.base_url", "https://x.example"))
	require.NoError(t, cfg.Set("api.requests_per_second", "2.5"))
	require.NoError(t, cfg.Set("session.count_keyboard", "false"))
	require.NoError(t, cfg.Set("storage.db-file", "other.db"))
	require.NoError(t, cfg.Set("session.warning_secs", 30))

	assert.Equal(t, "https://x.example", cfg.API.BaseURL)
	assert.InDelta(t, 2.5, cfg.API.RequestsPerSecond, 0.0001)
	assert.False(t, cfg.Session.CountKeyboard)
	assert.Equal(t, "other.db", cfg.Storage.DBFile)
	assert.Equal(t, 30, cfg.Session.WarningSecs)

	v, err := cfg.Get("session.timeout_secs")
	require.NoError(t, err)
	assert.Equal(t, 600, v)

	assert.Error(t, cfg.Set("session.timeout_secs", "ten"))
	assert.Error(t, cfg.Set("session.nope", "1"))
	assert.Error(t, cfg.Set("session", "1"))
	assert.Error(t, cfg.Set("api.base_url.x", "1"))
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestKeysResolve(t *testing.T) {
	cfg := Default()
	for _, k := range Keys() {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	c := cfg.Clone()
	c.Session.TimeoutSecs = 1
	assert.Equal(t, 900, cfg.Session.TimeoutSecs)
	assert.Contains(t, cfg.String(), "timeout_secs = 900")
}

func TestWatcherReloads(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	var (
		mu  sync.Mutex
		got []*Config
	)
	w, err := NewWatcher(path, 20*time.Millisecond, logging.Discard(), func(c *Config) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Close()

	// Invalid edits are skipped.
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))
	time.Sleep(100 * time.Millisecond)

	cfg := Default()
	cfg.Session.TimeoutSecs = 120
	require.NoError(t, SaveTOML(cfg, path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Session.TimeoutSecs == 120
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	for _, c := range got {
		assert.Equal(t, "auto", c.UI.Theme)
	}
	mu.Unlock()
}

func TestWatcherArgs(t *testing.T) {
	_, err := NewWatcher("", 0, nil, func(*Config) {})
	assert.Error(t, err)
	_, err = NewWatcher("x.toml", 0, nil, nil)
	assert.Error(t, err)

	w, err := NewWatcher(filepath.Join(t.TempDir(), "c.toml"), 0, nil, func(*Config) {})
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
