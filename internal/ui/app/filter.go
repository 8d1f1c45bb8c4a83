// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/idle"
)

// Classify maps terminal input to an idle event kind. It reports false for
// messages that are not input.
func Classify(msg tea.Msg) (idle.EventKind, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return idle.KeyPress, true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp, tea.MouseWheelDown:
			return idle.PointerScroll, true
		case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
			return idle.PointerPress, true
		case tea.MouseRelease:
			return idle.PointerRelease, true
		case tea.MouseMotion:
			return idle.PointerMove, true
		}
		return idle.Other, true
	}
	return idle.Other, false
}

// ActivityFilter returns a tea.WithFilter function that forwards input to
// the active idle watch. Messages pass through unchanged.
func (m *Model) ActivityFilter() func(tea.Model, tea.Msg) tea.Msg {
	active := m.active
	return func(_ tea.Model, msg tea.Msg) tea.Msg {
		w := active.Load()
		if w == nil {
			return msg
		}
		if kind, ok := Classify(msg); ok {
			w.Observe(idle.Event{Kind: kind})
		}
		return msg
	}
}
