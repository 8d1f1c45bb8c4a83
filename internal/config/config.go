// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// ErrInvalidConfig wraps validation failures returned by Load.
var ErrInvalidConfig = errors.New("invalid config")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete shopdesk configuration.
type Config struct {
	API     APIConfig     `toml:"api" json:"api"`
	Session SessionConfig `toml:"session" json:"session"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// APIConfig describes the shop backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8080
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each HTTP request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerSecond limits outgoing requests (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// SessionConfig controls idle timeout.
type SessionConfig struct {
	// TimeoutSecs is the idle time after which the session ends.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// CheckIntervalSecs is how often idle time is checked. It must be at
	// most a quarter of the timeout so detection lag stays small.
	CheckIntervalSecs int `toml:"check_interval_secs" json:"check_interval_secs"`
	// WarningSecs shows the countdown this long before timeout (0 = off).
	WarningSecs int `toml:"warning_secs" json:"warning_secs"`
	// CountKeyboard makes key presses count as activity.
	CountKeyboard bool `toml:"count_keyboard" json:"count_keyboard"`
}

// StorageConfig locates local state.
type StorageConfig struct {
	// DataDir holds the session database, key file and log.
	DataDir string `toml:"data_dir" json:"data_dir"`
	// DBFile is the session database file name inside DataDir.
	DBFile string `toml:"db_file" json:"db_file"`
}

// UIConfig controls the terminal UI.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// Mouse enables mouse reporting (needed for pointer activity).
	Mouse bool `toml:"mouse" json:"mouse"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".shopdesk"
	}
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8080",
			TimeoutSecs:       15,
			RequestsPerSecond: 10,
		},
		Session: SessionConfig{
			TimeoutSecs:       900,
			CheckIntervalSecs: 5,
			WarningSecs:       60,
			CountKeyboard:     true,
		},
		Storage: StorageConfig{
			DataDir: dir,
			DBFile:  "session.db",
		},
		UI: UIConfig{
			Theme: "auto",
			Mouse: true,
		},
	}
}

// SetDefaults fills zero values that have no meaningful zero.
func (c *Config) SetDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Session.TimeoutSecs == 0 {
		c.Session.TimeoutSecs = d.Session.TimeoutSecs
	}
	if c.Session.CheckIntervalSecs == 0 {
		c.Session.CheckIntervalSecs = d.Session.CheckIntervalSecs
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = d.Storage.DataDir
	}
	if c.Storage.DBFile == "" {
		c.Storage.DBFile = d.Storage.DBFile
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.shopdesk.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shopdesk"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DBPath returns the session database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.DBFile)
}

// KeyPath returns the master key file path.
func (c *Config) KeyPath() string {
	return filepath.Join(c.Storage.DataDir, "master.key")
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	return filepath.Join(c.Storage.DataDir, "shopdesk.log")
}

// SessionTimeout returns session.timeout_secs as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutSecs) * time.Second
}

// CheckInterval returns session.check_interval_secs as a duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Session.CheckIntervalSecs) * time.Second
}

// WarningBefore returns session.warning_secs as a duration.
func (c *Config) WarningBefore() time.Duration {
	return time.Duration(c.Session.WarningSecs) * time.Second
}

// RequestTimeout returns api.timeout_secs as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration. With an explicit path only that file is
// read; otherwise ~/.shopdesk/config.toml, then config.json, then the
// defaults. Environment overrides are applied last. It also returns the
// file that was read ("" for defaults).
func Load(path string) (*Config, string, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range defaultPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, "", err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, path, nil
}

func defaultPaths() []string {
	var paths []string
	if p, err := ConfigPathTOML(); err == nil {
		paths = append(paths, p)
	}
	if p, err := ConfigPathJSON(); err == nil {
		paths = append(paths, p)
	}
	return paths
}

func loadFile(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
		return nil
	}
	if err := LoadTOML(cfg, path); err != nil {
		return fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	// Not fatal: permissions may be unfixable on some filesystems.
	_ = ensureSecurePermissions(path)

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	_ = ensureSecurePermissions(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# shopdesk configuration file\n")
	buf.WriteString("# Generated by `shopdesk config init` - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg to path atomically with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Save writes cfg in the format implied by path's extension.
func Save(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns ValidateErrors, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.requests_per_second",
			Message: "must not be negative",
		})
	}

	if c.Session.TimeoutSecs < 10 {
		errs = append(errs, ValidationError{
			Field:   "session.timeout_secs",
			Message: fmt.Sprintf("must be at least 10, got %d", c.Session.TimeoutSecs),
		})
	}
	if c.Session.CheckIntervalSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "session.check_interval_secs",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Session.CheckIntervalSecs),
		})
	} else if c.Session.CheckIntervalSecs*4 > c.Session.TimeoutSecs {
		errs = append(errs, ValidationError{
			Field: "session.check_interval_secs",
			Message: fmt.Sprintf("must be at most a quarter of session.timeout_secs (%d), got %d",
				c.Session.TimeoutSecs, c.Session.CheckIntervalSecs),
		})
	}
	if c.Session.WarningSecs < 0 || c.Session.WarningSecs >= c.Session.TimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "session.warning_secs",
			Message: fmt.Sprintf("must be 0 or less than session.timeout_secs, got %d", c.Session.WarningSecs),
		})
	}

	if c.Storage.DBFile != filepath.Base(c.Storage.DBFile) {
		errs = append(errs, ValidationError{
			Field:   "storage.db_file",
			Message: "must be a file name, not a path",
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be auto, dark or light, got %q", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies:
//   - SHOPDESK_API_URL: api.base_url
//   - SHOPDESK_SESSION_TIMEOUT: session.timeout_secs
//   - SHOPDESK_CHECK_INTERVAL: session.check_interval_secs
//   - SHOPDESK_DATA_DIR: storage.data_dir
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("SHOPDESK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SHOPDESK_SESSION_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHOPDESK_SESSION_TIMEOUT: %w", err)
		}
		c.Session.TimeoutSecs = n
	}
	if v := os.Getenv("SHOPDESK_CHECK_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHOPDESK_CHECK_INTERVAL: %w", err)
		}
		c.Session.CheckIntervalSecs = n
	}
	if v := os.Getenv("SHOPDESK_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns a value by dotted key, e.g. "session.timeout_secs".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dotted key. String values are converted to the
// field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a setting", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName turns snake_case or kebab-case into a Go field name.
// Acronyms (api, ui, db) match case-insensitively in lookup.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %w", err)
			}
			field.SetBool(b)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every setting in dot notation.
func Keys() []string {
	return []string{
		"api.base_url",
		"api.timeout_secs",
		"api.requests_per_second",
		"session.timeout_secs",
		"session.check_interval_secs",
		"session.warning_secs",
		"session.count_keyboard",
		"storage.data_dir",
		"storage.db_file",
		"ui.theme",
		"ui.mouse",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
