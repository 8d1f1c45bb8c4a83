// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for shopdesk.
//
// Command: status
// Aliases: s
//
// Shows whether a session is stored, who it belongs to, and the idle
// settings it runs under. Activity timestamps live only in the running
// UI, so a fresh process reports the full timeout as remaining.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/session"
)

// CollectStatus gathers the status command's data.
func CollectStatus(ctx context.Context, env *Env) StatusData {
	timeout := env.Config.SessionTimeout()
	st := env.Session.Status(ctx, timeout)
	data := StatusData{
		LoggedIn:      st.LoggedIn,
		UserID:        st.UserID,
		IdleSeconds:   st.Idle.Seconds(),
		RemainingSecs: st.Remaining.Seconds(),
		TimeoutSecs:   env.Config.Session.TimeoutSecs,
		JustLoggedOut: st.JustLoggedOut,
		RememberMe:    env.Creds.RememberMe(ctx),
		APIURL:        env.API.BaseURL(),
		ConfigPath:    env.ConfigPath,
	}
	if !st.LastActivity.IsZero() {
		data.LastActivity = st.LastActivity.UTC().Format(time.RFC3339)
	}
	if email, ok := env.Creds.Email(ctx); ok {
		data.Email = email
	}
	return data
}

// HandleStatus handles the "status" command.
func HandleStatus(ctx context.Context, env *Env, args Args, out io.Writer) error {
	data := CollectStatus(ctx, env)
	if args.JSON {
		return NewJSONResponse("status", data).Write(out)
	}

	fmt.Fprintln(out, RenderConditional(TitleStyle, "shopdesk status"))
	fmt.Fprintln(out, RenderSeparator(40))
	row := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", RenderLabel(label), RenderConditional(ValueStyle, value))
	}

	if data.LoggedIn {
		row("Session", RenderConditional(SuccessStyle, "signed in"))
		row("User ID", fmt.Sprintf("%d", data.UserID))
	} else {
		row("Session", RenderConditional(WarningStyle, "signed out"))
	}
	if data.Email != "" {
		row("Remembered email", data.Email)
	}
	row("Remember me", yesNo(data.RememberMe))
	row("Idle timeout", session.FormatDuration(env.Config.SessionTimeout()))
	row("Check interval", session.FormatDuration(env.Config.CheckInterval()))
	if data.LoggedIn {
		if data.LastActivity != "" {
			row("Last activity", data.LastActivity)
			row("Idle", session.FormatDuration(time.Duration(data.IdleSeconds*float64(time.Second))))
		}
		row("Remaining", session.FormatDuration(time.Duration(data.RemainingSecs*float64(time.Second))))
	}
	row("Backend", data.APIURL)
	if data.ConfigPath != "" {
		row("Config", data.ConfigPath)
	} else {
		row("Config", RenderConditional(DimStyle, "(built-in defaults)"))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
