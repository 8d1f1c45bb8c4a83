// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
)

// ErrMsg reports a failed backend call. The app ends the session when Err
// is api.ErrUnauthorized and shows a toast otherwise.
type ErrMsg struct {
	Op  string
	Err error
}

func (e ErrMsg) Error() string { return e.Op + ": " + e.Err.Error() }

// ToastMsg asks the app to show a notification.
type ToastMsg struct {
	Kind components.ToastKind
	Text string
}

// LogoutMsg reports a user-requested logout finished.
type LogoutMsg struct {
	Err error
}

func failed(op string, err error) tea.Msg {
	return ErrMsg{Op: op, Err: err}
}

func toast(kind components.ToastKind, text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Kind: kind, Text: text} }
}
