// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand, screen title and signed-in user.
type Header struct {
	Brand string
	Title string
	User  string
	Width int
	theme *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Brand: "shopdesk",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetScreen updates the screen title and user shown on the right.
func (h *Header) SetScreen(title, user string) {
	h.Title = title
	h.User = user
}

// View renders the header on a single line.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}
	inner := width - h.theme.Header.GetHorizontalFrameSize()

	left := h.theme.HeaderBrand.Render(h.Brand)
	if h.Title != "" {
		left += h.theme.Muted.Render(" / ") + h.theme.HeaderTitle.Render(h.Title)
	}

	right := ""
	if h.User != "" {
		maxUser := inner - lipgloss.Width(left) - 2
		if maxUser > 3 {
			right = h.theme.HeaderUser.Render(util.TruncateWidth(h.User, maxUser))
		}
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
