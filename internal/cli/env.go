// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/auth"
	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/kv"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/security"
	"github.com/jeranaias/shopdesk-tui/internal/session"
)

// sealerPurpose binds the password sub-key to remembered credentials.
const sealerPurpose = "remembered-password"

// LogTarget selects where an Env logs.
type LogTarget int

const (
	// LogStderr logs to stderr when --verbose is set and nowhere otherwise.
	LogStderr LogTarget = iota
	// LogFile logs to the data directory. The TUI owns the terminal.
	LogFile
)

// Env is one wired set of session collaborators.
type Env struct {
	Config     *config.Config
	ConfigPath string

	Log     logging.Logger
	Store   kv.Store
	Tokens  *auth.TokenManager
	Creds   *auth.CredentialStore
	Nav     *navigation.State
	Session *session.Manager
	API     *api.Client

	closers []io.Closer
}

// OpenEnv loads configuration and opens the store. --ephemeral keeps
// everything in memory, including the sealing key.
func OpenEnv(ctx context.Context, args Args, target LogTarget, stderr io.Writer) (env *Env, err error) {
	cfg, path, err := config.Load(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
	}

	env = &Env{Config: cfg, ConfigPath: path}
	defer func() {
		if err != nil {
			_ = env.Close()
			env = nil
		}
	}()

	level := slog.LevelInfo
	if args.Verbose {
		level = slog.LevelDebug
	}
	switch {
	case target == LogFile && !args.Ephemeral:
		l, closer, err := logging.OpenFile(cfg.LogPath(), level)
		if err != nil {
			return nil, err
		}
		env.Log = l
		env.closers = append(env.closers, closer)
	case target == LogStderr && args.Verbose:
		env.Log = logging.New(stderr, level)
	default:
		env.Log = logging.Discard()
	}

	var keys security.KeyStore
	if args.Ephemeral {
		env.Store = kv.NewMemory()
		keys = &security.MemoryKeyStore{}
	} else {
		store, err := kv.OpenSQLite(ctx, cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		env.Store = store
		keys = security.NewFileKeyStore(cfg.KeyPath())
	}
	env.closers = append(env.closers, env.Store)

	master, err := security.LoadOrCreateKey(keys)
	if err != nil {
		return nil, fmt.Errorf("load master key: %w", err)
	}
	sealer, err := security.NewSealer(master, sealerPurpose)
	if err != nil {
		return nil, err
	}

	env.Tokens = auth.NewTokenManager(env.Store, auth.WithLogger(env.Log))
	env.Creds, err = auth.NewCredentialStore(env.Store, sealer, env.Log)
	if err != nil {
		return nil, err
	}
	env.Nav = navigation.NewState(env.Log)
	env.Session, err = session.New(env.Tokens, env.Creds, env.Nav, env.Log)
	if err != nil {
		return nil, err
	}
	env.API, err = api.New(cfg.API.BaseURL, env.Tokens,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithRateLimit(cfg.API.RequestsPerSecond),
		api.WithLogger(env.Log),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Close releases the store and the log file. The navigation state is
// closed first so subscribers stop waiting.
func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	if e.Nav != nil {
		e.Nav.Close()
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
