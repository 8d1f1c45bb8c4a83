// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// SessionTimeoutOverlay shows the idle countdown before automatic sign-out,
// and the notice after it happened.
type SessionTimeoutOverlay struct {
	visible       bool
	timeRemaining time.Duration
	expired       bool
	timeout       time.Duration

	width  int
	height int
}

// NewSessionTimeoutOverlay creates a hidden overlay.
func NewSessionTimeoutOverlay() SessionTimeoutOverlay {
	return SessionTimeoutOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *SessionTimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// SetTimeout records the idle limit for the expired notice.
func (o *SessionTimeoutOverlay) SetTimeout(d time.Duration) {
	o.timeout = d
}

// Show displays the countdown.
func (o *SessionTimeoutOverlay) Show(remaining time.Duration) {
	o.visible = true
	o.timeRemaining = remaining
	o.expired = remaining <= 0
}

// ShowExpired displays the signed-out notice.
func (o *SessionTimeoutOverlay) ShowExpired() {
	o.visible = true
	o.timeRemaining = 0
	o.expired = true
}

// Hide hides the overlay.
func (o *SessionTimeoutOverlay) Hide() {
	o.visible = false
	o.expired = false
}

// UpdateTime updates the countdown.
func (o *SessionTimeoutOverlay) UpdateTime(remaining time.Duration) {
	o.timeRemaining = remaining
	if remaining <= 0 {
		o.expired = true
	}
}

// IsVisible returns whether the overlay is showing.
func (o *SessionTimeoutOverlay) IsVisible() bool {
	return o.visible
}

// IsExpired returns whether the overlay shows the signed-out notice.
func (o *SessionTimeoutOverlay) IsExpired() bool {
	return o.expired
}

// TimeRemaining returns the countdown value.
func (o *SessionTimeoutOverlay) TimeRemaining() time.Duration {
	return o.timeRemaining
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// SessionExtendedMsg reports that a key dismissed the countdown.
type SessionExtendedMsg struct{}

// Update handles messages for the overlay. Any key dismisses it.
func (o SessionTimeoutOverlay) Update(msg tea.Msg) (SessionTimeoutOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height

	case tea.KeyMsg:
		if !o.visible {
			return o, nil
		}
		expired := o.expired
		o.Hide()
		if !expired {
			return o, func() tea.Msg { return SessionExtendedMsg{} }
		}
	}
	return o, nil
}

// View renders the overlay centred in its area, or "" when hidden.
func (o SessionTimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}
	if o.expired {
		return o.render(styles.Rose, styles.StatusIndicators.Error+" Signed Out", o.expiredMessage(), "Press any key to continue")
	}
	timeStr := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).Render(util.FormatClock(o.timeRemaining))
	return o.render(styles.Amber, styles.StatusIndicators.Warning+" Session Timeout", "You will be signed out in "+timeStr, "Press any key or move the mouse to stay signed in")
}

func (o SessionTimeoutOverlay) expiredMessage() string {
	if o.timeout > 0 {
		return "Signed out after " + util.FormatClock(o.timeout) + " of inactivity."
	}
	return "Your session ended due to inactivity."
}

func (o SessionTimeoutOverlay) render(accent lipgloss.AdaptiveColor, title, body, hint string) string {
	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}

	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(accent).Bold(true).Render(title),
		"",
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Width(maxWidth-8).Align(lipgloss.Center).Render(body),
		"",
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true).Render(hint),
	)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(accent).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim))
}
