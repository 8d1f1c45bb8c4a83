// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves shopdesk configuration.
//
// TOML is the primary format with JSON as a fallback. Values come from,
// lowest to highest precedence:
//   - Built-in defaults
//   - ~/.shopdesk/config.toml, else ~/.shopdesk/config.json (or --config)
//   - Environment variables (SHOPDESK_*)
//
// Config files are written atomically with 0600 permissions. Settings can
// be read and written with dot notation:
//
//	cfg.Set("session.timeout_secs", "600")
//	v, _ := cfg.Get("api.base_url")
//
// A Watcher reloads the file when it changes on disk.
package config
