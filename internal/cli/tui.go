// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - the default command: the full-screen admin UI.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/idle"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/ui/app"
	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
	"github.com/jeranaias/shopdesk-tui/internal/ui/screens"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

// configDebounce groups the burst of events editors produce on save.
const configDebounce = 300 * time.Millisecond

// IdleConfig converts the session settings for the idle monitor.
func IdleConfig(cfg *config.Config) idle.Config {
	return idle.Config{
		Timeout:       cfg.SessionTimeout(),
		CheckInterval: cfg.CheckInterval(),
		WarningBefore: cfg.WarningBefore(),
		CountKeyboard: cfg.Session.CountKeyboard,
	}
}

// NewApp builds the root model from env.
func NewApp(ctx context.Context, env *Env) (*app.Model, error) {
	theme := styles.NewTheme(env.Config.UI.Theme)
	return app.New(ctx, app.Options{
		Nav:     env.Nav,
		Session: env.Session,
		Screens: screens.Deps{
			API:        env.API,
			Remembered: env.Creds,
			Theme:      theme,
			Markdown:   components.NewMarkdown("", theme.IsDark),
			Clipboard:  clipboard.WriteAll,
			Log:        env.Log,
		},
		Idle:   IdleConfig(env.Config),
		Log:    env.Log,
		Resume: env.API.Me,
	})
}

// HandleTUI runs the UI until the user quits.
func HandleTUI(ctx context.Context, env *Env) error {
	if err := RequiresTTY("start the admin console"); err != nil {
		return err
	}
	m, err := NewApp(ctx, env)
	if err != nil {
		return err
	}
	defer m.Close()

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithFilter(m.ActivityFilter()),
	}
	if env.Config.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	if env.ConfigPath != "" {
		w, err := config.NewWatcher(env.ConfigPath, configDebounce, env.Log, func(cfg *config.Config) {
			p.Send(app.IdleSettingsMsg{Config: IdleConfig(cfg)})
		})
		if err != nil {
			env.Log.Warn(ctx, "config watch disabled", logging.Event("CONFIG_WATCH", "err", err)...)
		} else if err := w.Start(ctx); err != nil {
			env.Log.Warn(ctx, "config watch disabled", logging.Event("CONFIG_WATCH", "err", err)...)
			_ = w.Close()
		} else {
			defer w.Close()
		}
	}

	env.Log.Info(ctx, "ui started", logging.Event("UI_START", "api", env.API.BaseURL())...)
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	env.Log.Info(ctx, "ui stopped", logging.Event("UI_STOP")...)
	return err
}
