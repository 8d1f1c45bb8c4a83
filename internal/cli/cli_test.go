// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/devserver"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
)

func init() {
	ForceColorsEnabled(false)
}

// isolate points the config lookup at an empty home directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"SHOPDESK_API_URL", "SHOPDESK_SESSION_TIMEOUT", "SHOPDESK_CHECK_INTERVAL", "SHOPDESK_DATA_DIR"} {
		t.Setenv(k, "")
	}
	return home
}

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"status"},
			wantSub: "status",
		},
		{
			name:    "flag with value",
			args:    []string{"login", "--email", "a@b.c"},
			wantSub: "login",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "a@b.c", p.Flag("email"))
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"status", "--api=http://x:1"},
			wantSub: "status",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "http://x:1", p.Flag("api"))
			},
		},
		{
			name:    "declared boolean does not consume the next arg",
			args:    []string{"login", "--remember", "a@b.c"},
			bools:   []string{"remember"},
			wantSub: "login",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("remember"))
				assert.Equal(t, "a@b.c", p.Positional(1))
			},
		},
		{
			name:    "explicit false",
			args:    []string{"status", "--json=false"},
			wantSub: "status",
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.BoolFlag("json"))
				assert.True(t, p.HasFlag("json"))
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"config", "set", "--", "--weird"},
			wantSub: "config",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, []string{"set", "--weird"}, p.PositionalFrom(1))
				assert.Equal(t, 3, p.PositionalCount())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args, tt.bools...)
			assert.Equal(t, tt.wantSub, p.Subcommand())
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	p := NewArgParser(nil)
	assert.Empty(t, p.Subcommand())
	assert.Empty(t, p.Positional(0))
	assert.Empty(t, p.PositionalFrom(1))
	assert.False(t, p.HasFlag("json"))
}

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		argv    []string
		want    Command
		check   func(*testing.T, Args)
		wantErr bool
	}{
		{argv: nil, want: CmdTUI},
		{argv: []string{"--ephemeral", "-v"}, want: CmdTUI, check: func(t *testing.T, a Args) {
			assert.True(t, a.Ephemeral)
			assert.True(t, a.Verbose)
		}},
		{argv: []string{"login", "--remember", "admin@example.com"}, want: CmdLogin, check: func(t *testing.T, a Args) {
			assert.Equal(t, "admin@example.com", a.Email)
			assert.True(t, a.Remember)
		}},
		{argv: []string{"login", "--email", "x@y.z", "--api", "http://127.0.0.1:9"}, want: CmdLogin, check: func(t *testing.T, a Args) {
			assert.Equal(t, "x@y.z", a.Email)
			assert.Equal(t, "http://127.0.0.1:9", a.APIURL)
		}},
		{argv: []string{"logout"}, want: CmdLogout},
		{argv: []string{"s", "--json"}, want: CmdStatus, check: func(t *testing.T, a Args) {
			assert.True(t, a.JSON)
		}},
		{argv: []string{"config"}, want: CmdConfig, check: func(t *testing.T, a Args) {
			assert.Equal(t, "show", a.Subcommand)
		}},
		{argv: []string{"config", "set", "ui.theme", "dark", "--config", "/tmp/c.toml"}, want: CmdConfig, check: func(t *testing.T, a Args) {
			assert.Equal(t, "set", a.Subcommand)
			assert.Equal(t, "ui.theme", a.ConfigKey)
			assert.Equal(t, "dark", a.ConfigVal)
			assert.Equal(t, "/tmp/c.toml", a.ConfigPath)
		}},
		{argv: []string{"--version"}, want: CmdVersion},
		{argv: []string{"-h"}, want: CmdHelp},
		{argv: []string{"frobnicate"}, want: CmdHelp, wantErr: true},
		{argv: []string{"status", "--config"}, want: CmdHelp, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, " "), func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			assert.Equal(t, tt.want, cmd)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitUsageError, GetExitCode(err))
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestHandleVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleVersion(&buf, Args{JSON: true}))
	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "version", resp.Command)
	assert.Equal(t, Version, resp.Data.Version)

	buf.Reset()
	require.NoError(t, HandleVersion(&buf, Args{}))
	assert.Contains(t, buf.String(), "shopdesk "+Version)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneralError},
		{NewValidationError("x", "", "bad"), ExitUsageError},
		{api.ErrInvalidCredentials, ExitAuthError},
		{NewCommandError("login", "request", "failed", api.ErrUnauthorized), ExitAuthError},
		{api.ErrNotFound, ExitNotFoundError},
		{config.ErrInvalidConfig, ExitConfigError},
		{context.DeadlineExceeded, ExitTimeoutError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetExitCode(tt.err), "%v", tt.err)
	}
}

func TestDisplayErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, NewValidationErrorWithExample("key", "nope", "unknown", "ui.theme"), true)
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "validation_error", out["error_type"])
	assert.Equal(t, "ui.theme", out["example"])
	assert.EqualValues(t, ExitUsageError, out["exit_code"])

	buf.Reset()
	DisplayError(&buf, errors.New("plain"), false)
	assert.Equal(t, "[ERROR] plain\n", buf.String())
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func TestHandleConfig_InitGetSet(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "conf", "shopdesk.toml")
	args := Args{ConfigPath: path}

	var out bytes.Buffer
	args.Subcommand = "init"
	require.NoError(t, HandleConfig(args, &out))
	require.FileExists(t, path)

	err := HandleConfig(args, &out)
	require.Error(t, err, "init must not overwrite")

	args.Subcommand, args.ConfigKey, args.ConfigVal = "set", "session.timeout_secs", "600"
	require.NoError(t, HandleConfig(args, &out))

	out.Reset()
	args.Subcommand, args.ConfigVal = "get", ""
	require.NoError(t, HandleConfig(args, &out))
	assert.Equal(t, "600\n", out.String())

	cfg, loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded)
	assert.Equal(t, 600, cfg.Session.TimeoutSecs)
}

func TestHandleConfig_SetRejectsInvalid(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "c.toml")
	var out bytes.Buffer

	err := HandleConfig(Args{ConfigPath: path, Subcommand: "set", ConfigKey: "session.check_interval_secs", ConfigVal: "600"}, &out)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
	assert.NoFileExists(t, path)

	err = HandleConfig(Args{ConfigPath: path, Subcommand: "set", ConfigKey: "session.nope", ConfigVal: "1"}, &out)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfig(Args{ConfigPath: path, Subcommand: "set", ConfigKey: "ui.theme"}, &out)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleConfig_ShowJSON(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	require.NoError(t, HandleConfig(Args{Subcommand: "show", JSON: true}, &out))
	var resp struct {
		Data ConfigData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Empty(t, resp.Data.Path)
	assert.EqualValues(t, 900, resp.Data.Values["session.timeout_secs"])
	assert.Len(t, resp.Data.Values, len(config.Keys()))
}

func TestHandleConfig_Path(t *testing.T) {
	home := isolate(t)
	var out bytes.Buffer
	require.NoError(t, HandleConfig(Args{Subcommand: "path"}, &out))
	assert.Contains(t, out.String(), filepath.Join(home, ".shopdesk", "config.toml"))
	assert.Contains(t, out.String(), "config init")
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

type fakePrompter struct {
	lines     []string
	passwords []string
	prompts   []string
}

func (f *fakePrompter) Prompt(p string) (string, error) {
	f.prompts = append(f.prompts, p)
	if len(f.lines) == 0 {
		return "", errors.New("no input")
	}
	l := f.lines[0]
	f.lines = f.lines[1:]
	return l, nil
}

func (f *fakePrompter) PasswordPrompt(p string) (string, error) {
	f.prompts = append(f.prompts, p)
	if len(f.passwords) == 0 {
		return "", errors.New("no input")
	}
	l := f.passwords[0]
	f.passwords = f.passwords[1:]
	return l, nil
}

func openTestEnv(t *testing.T) *Env {
	t.Helper()
	isolate(t)
	srv, err := devserver.New(devserver.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	env, err := OpenEnv(context.Background(), Args{APIURL: ts.URL, Ephemeral: true}, LogStderr, os.Stderr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestOpenEnv_RejectsBadAPIURL(t *testing.T) {
	isolate(t)
	_, err := OpenEnv(context.Background(), Args{APIURL: "ftp://nope", Ephemeral: true}, LogStderr, os.Stderr)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

func TestLoginStatusLogout(t *testing.T) {
	env := openTestEnv(t)
	ctx := context.Background()
	p := &fakePrompter{passwords: []string{"admin123"}}

	var out bytes.Buffer
	err := HandleLogin(ctx, env, Args{Email: "Admin@Example.com", Remember: true}, &out, p)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "signed in as admin@example.com")
	assert.Equal(t, []string{"Password: "}, p.prompts)
	assert.IsType(t, navigation.Dashboard{}, env.Nav.Current())

	data := CollectStatus(ctx, env)
	assert.True(t, data.LoggedIn)
	assert.Equal(t, int64(1), data.UserID)
	assert.True(t, data.RememberMe)
	assert.Equal(t, "admin@example.com", data.Email)
	assert.Greater(t, data.RemainingSecs, 0.0)

	out.Reset()
	require.NoError(t, HandleStatus(ctx, env, Args{}, &out))
	assert.Contains(t, out.String(), "signed in")
	assert.Contains(t, out.String(), "15m")

	out.Reset()
	require.NoError(t, HandleLogout(ctx, env, Args{}, &out))
	assert.Contains(t, out.String(), "signed out")

	data = CollectStatus(ctx, env)
	assert.False(t, data.LoggedIn)
	assert.False(t, data.RememberMe)
	assert.Empty(t, data.Email)
	assert.True(t, data.JustLoggedOut)
	assert.IsType(t, navigation.Login{}, env.Nav.Current())

	out.Reset()
	require.NoError(t, HandleLogout(ctx, env, Args{}, &out))
	assert.Equal(t, "No active session.\n", out.String())
}

func TestLogin_PromptsForEmail(t *testing.T) {
	env := openTestEnv(t)
	p := &fakePrompter{lines: []string{"  admin@example.com "}, passwords: []string{"admin123"}}

	var out bytes.Buffer
	require.NoError(t, HandleLogin(context.Background(), env, Args{JSON: true}, &out, p))
	assert.Equal(t, []string{"Email: ", "Password: "}, p.prompts)

	var resp struct {
		Data LoginData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.UserID)
	assert.False(t, resp.Data.Remember)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := openTestEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := HandleLogin(ctx, env, Args{Email: "admin@example.com"}, &out, &fakePrompter{passwords: []string{"wrong"}})
	require.ErrorIs(t, err, api.ErrInvalidCredentials)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.False(t, env.Session.IsLoggedIn(ctx))
	assert.Empty(t, out.String())
}

func TestLogin_NeedsInput(t *testing.T) {
	env := openTestEnv(t)
	ctx := context.Background()
	var out bytes.Buffer

	err := HandleLogin(ctx, env, Args{}, &out, nil)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleLogin(ctx, env, Args{Email: "admin@example.com"}, &out, &fakePrompter{passwords: []string{""}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleLogin(ctx, env, Args{Email: "admin@example.com"}, &out, nil)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "prompt", cmdErr.Action)
}

func TestStatusJSON_SignedOut(t *testing.T) {
	env := openTestEnv(t)
	var out bytes.Buffer
	require.NoError(t, HandleStatus(context.Background(), env, Args{JSON: true}, &out))

	var resp struct {
		Success bool       `json:"success"`
		Data    StatusData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Data.LoggedIn)
	assert.Equal(t, 900, resp.Data.TimeoutSecs)
	assert.Equal(t, env.API.BaseURL(), resp.Data.APIURL)
}

func TestIdleConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Session.TimeoutSecs = 120
	cfg.Session.CheckIntervalSecs = 10
	cfg.Session.WarningSecs = 30
	cfg.Session.CountKeyboard = false

	got := IdleConfig(cfg)
	require.NoError(t, got.Validate())
	assert.Equal(t, "2m0s", got.Timeout.String())
	assert.Equal(t, "10s", got.CheckInterval.String())
	assert.Equal(t, "30s", got.WarningBefore.String())
	assert.False(t, got.CountKeyboard)
}

func TestNewApp(t *testing.T) {
	env := openTestEnv(t)
	m, err := NewApp(context.Background(), env)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	assert.Nil(t, m.Current(), "nothing is shown before Init")
	assert.False(t, m.Watching())
	assert.NotNil(t, m.ActivityFilter())
}
