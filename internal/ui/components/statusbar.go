// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows key hints on the left and idle time on the right.
type StatusBar struct {
	Width    int
	Bindings []key.Binding
	Message  string

	// Idle is the time since last activity; Timeout is the idle limit.
	// Both zero hides the idle indicator.
	Idle    time.Duration
	Timeout time.Duration
	Warn    time.Duration

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetBindings replaces the key hints.
func (s *StatusBar) SetBindings(b []key.Binding) {
	s.Bindings = b
}

// SetIdle updates the idle indicator. timeout 0 hides it.
func (s *StatusBar) SetIdle(idle, timeout, warn time.Duration) {
	s.Idle, s.Timeout, s.Warn = idle, timeout, warn
}

// View renders the bar.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}
	inner := width - s.theme.StatusBar.GetHorizontalFrameSize()

	right := s.renderIdle()
	left := s.Message
	if left == "" {
		left = s.renderShortcuts()
	}
	maxLeft := inner - lipgloss.Width(right) - 1
	if maxLeft < 0 {
		maxLeft = 0
	}
	if lipgloss.Width(left) > maxLeft {
		left = truncate.StringWithTail(left, uint(maxLeft), "…")
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Bindings))
	for _, b := range s.Bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (s *StatusBar) renderIdle() string {
	if s.Timeout <= 0 {
		return ""
	}
	remaining := s.Timeout - s.Idle
	if remaining < 0 {
		remaining = 0
	}
	text := "idle " + util.FormatClock(s.Idle) + " / " + util.FormatClock(s.Timeout)
	if s.Warn > 0 && remaining <= s.Warn {
		return s.theme.IdleWarn.Render(styles.StatusIndicators.Warning + " " + text)
	}
	return s.theme.IdleOK.Render(text)
}
