// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/session"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

type prefillMsg struct {
	email    string
	password string
	remember bool
	auto     bool
}

type loginDoneMsg struct{ err error }

// Login is the sign-in form. It needs no session to build.
type Login struct {
	deps     Deps
	form     *form
	remember bool
	busy     bool
	notice   string
	spinner  spinner.Model
	width    int
	height   int
}

func newLogin(d Deps) *Login {
	if d.Theme == nil {
		d.Theme = styles.NewTheme("auto")
	}
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	email := newField("email", "Email", "admin@example.com")
	password := newField("password", "Password", "••••••••")
	password.input.EchoMode = textinput.EchoPassword
	password.input.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = d.Theme.Spinner

	l := &Login{deps: d, form: newForm(email, password), spinner: sp}
	if !isNil(d.Session) && d.Session.JustLoggedOut() {
		l.notice = "You have been signed out."
	}
	return l
}

func (l *Login) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, l.prefill())
}

// prefill loads remembered credentials. Auto sign-in only happens when the
// user opted in and did not just log out.
func (l *Login) prefill() tea.Cmd {
	rem := l.deps.Remembered
	if isNil(rem) {
		return nil
	}
	ctx := l.deps.ctx()
	justOut := !isNil(l.deps.Session) && l.deps.Session.JustLoggedOut()
	return func() tea.Msg {
		if !rem.RememberMe(ctx) {
			return nil
		}
		email, _ := rem.Email(ctx)
		password, _ := rem.Password(ctx)
		return prefillMsg{
			email:    email,
			password: password,
			remember: true,
			auto:     !justOut && email != "" && password != "",
		}
	}
}

func (l *Login) SetSize(width, height int) {
	l.width, l.height = width, height
}

func (l *Login) Bindings() []key.Binding {
	return []key.Binding{keyNext, keySubmit, keyToggle}
}

func (l *Login) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case prefillMsg:
		l.form.get("email").SetValue(msg.email)
		l.form.get("password").SetValue(msg.password)
		l.remember = msg.remember
		if msg.auto {
			return l, l.submit()
		}
		return l, nil

	case loginDoneMsg:
		l.busy = false
		if msg.err != nil {
			l.form.err = loginErrorText(msg.err)
			l.form.get("password").SetValue("")
		}
		return l, nil

	case spinner.TickMsg:
		if !l.busy {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		switch {
		case key.Matches(msg, keyNext), msg.String() == "down":
			return l, l.form.move(1)
		case key.Matches(msg, keyPrev), msg.String() == "up":
			return l, l.form.move(-1)
		case key.Matches(msg, keySubmit):
			return l, l.submit()
		case key.Matches(msg, keyToggle) && l.form.onSubmit():
			l.remember = !l.remember
			return l, nil
		case msg.String() == "ctrl+r":
			l.remember = !l.remember
			return l, nil
		}
	}
	return l, l.form.update(msg)
}

func (l *Login) submit() tea.Cmd {
	email := l.form.value("email")
	password := l.form.get("password").Value()
	l.form.clearErrors()
	if email == "" {
		l.form.get("email").err = "is required"
	}
	if password == "" {
		l.form.get("password").err = "is required"
	}
	if l.form.hasErrors() {
		return nil
	}
	l.busy = true
	l.notice = ""

	d := l.deps
	ctx := d.ctx()
	remember := l.remember
	run := func() tea.Msg {
		resp, err := d.API.Login(ctx, email, password)
		if err != nil {
			d.Log.Warn(ctx, "login failed", logging.Event("LOGIN_FAILED", "err", err)...)
			return loginDoneMsg{err: err}
		}
		if isNil(d.Session) {
			return loginDoneMsg{err: ErrNoSession}
		}
		err = d.Session.CompleteLogin(ctx, session.LoginResult{
			Token:    resp.Token,
			User:     resp.User,
			Email:    email,
			Password: password,
			Remember: remember,
		})
		return loginDoneMsg{err: err}
	}
	return tea.Batch(l.spinner.Tick, run)
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, api.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, api.ErrRateLimited):
		return "Too many attempts. Try again shortly."
	}
	return "Sign-in failed: " + err.Error()
}

func (l *Login) View() string {
	t := l.deps.Theme
	check := "[ ]"
	if l.remember {
		check = "[x]"
	}
	parts := []string{
		t.Title.Render("Sign in"),
		t.Subtitle.Render("Shop administration"),
		"",
	}
	if l.notice != "" {
		parts = append(parts, t.SuccessText.Render(l.notice), "")
	}
	parts = append(parts,
		l.form.view(t, "Sign in"),
		t.Checkbox.Render(check+" Remember me")+t.Muted.Render("  (ctrl+r)"),
	)
	if l.busy {
		parts = append(parts, l.spinner.View()+" signing in...")
	}
	box := t.Card.Render(strings.Join(parts, "\n"))
	if l.width > 0 && l.height > 0 {
		return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
