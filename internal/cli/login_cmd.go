// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login_cmd.go - "shopdesk login" signs in without starting the UI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/auth"
	"github.com/jeranaias/shopdesk-tui/internal/session"
)

// Prompter reads a line and a hidden password. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// TerminalPrompter returns a liner-backed prompter and its closer.
func TerminalPrompter() (Prompter, func() error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line, line.Close
}

// HandleLogin prompts for anything not given as a flag, signs in and
// stores the session. A remembered email is offered as the default.
func HandleLogin(ctx context.Context, env *Env, args Args, out io.Writer, p Prompter) error {
	email := strings.TrimSpace(args.Email)
	if email == "" {
		if p == nil {
			return ErrMissingArgument("--email", "shopdesk login --email admin@example.com")
		}
		prompt := "Email: "
		saved, ok := env.Creds.Email(ctx)
		if ok {
			prompt = fmt.Sprintf("Email [%s]: ", saved)
		}
		in, err := p.Prompt(prompt)
		if err != nil {
			return promptError(err)
		}
		if email = strings.TrimSpace(in); email == "" {
			email = saved
		}
	}
	if email == "" {
		return ErrMissingArgument("email", "shopdesk login --email admin@example.com")
	}
	if p == nil {
		return NewCommandError("login", "prompt", "a terminal is required to enter the password", nil)
	}
	password, err := p.PasswordPrompt("Password: ")
	if err != nil {
		return promptError(err)
	}
	if password == "" {
		return ErrMissingArgument("password", "enter the account password when prompted")
	}

	resp, err := env.API.Login(ctx, auth.NormalizeEmail(email), password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return err
		}
		return NewCommandError("login", "request", "backend login failed", err)
	}
	err = env.Session.CompleteLogin(ctx, session.LoginResult{
		Token:    resp.Token,
		User:     resp.User,
		Email:    email,
		Password: password,
		Remember: args.Remember,
	})
	if err != nil {
		return NewCommandError("login", "save", "could not store session", err)
	}

	if args.JSON {
		return NewJSONResponse("login", LoginData{
			UserID:   resp.User.ID,
			Email:    resp.User.Email,
			Remember: args.Remember,
		}).Write(out)
	}
	fmt.Fprintf(out, "%s signed in as %s\n", RenderConditional(SuccessStyle, "[OK]"), resp.User.Email)
	if args.Remember {
		fmt.Fprintln(out, RenderConditional(DimStyle, "Credentials remembered for automatic sign-in."))
	}
	return nil
}

func promptError(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return NewCommandError("login", "prompt", "aborted", nil)
	}
	return NewCommandError("login", "prompt", "could not read input", err)
}

// HandleLogout ends the stored session and clears remembered credentials.
func HandleLogout(ctx context.Context, env *Env, args Args, out io.Writer) error {
	wasLoggedIn := env.Session.IsLoggedIn(ctx)
	if err := env.Session.Logout(ctx); err != nil {
		return NewCommandError("logout", "clear", "session storage", err)
	}
	if args.JSON {
		return NewJSONResponse("logout", map[string]bool{"was_logged_in": wasLoggedIn}).Write(out)
	}
	if wasLoggedIn {
		fmt.Fprintf(out, "%s signed out\n", RenderConditional(SuccessStyle, "[OK]"))
	} else {
		fmt.Fprintln(out, "No active session.")
	}
	return nil
}
