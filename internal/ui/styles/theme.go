// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style

	// ==========================================================================
	// CONTENT STYLES
	// ==========================================================================

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Card     lipgloss.Style
	CardHead lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	Field        lipgloss.Style
	FieldFocused lipgloss.Style
	FieldError   lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	Checkbox     lipgloss.Style

	// ==========================================================================
	// TABLE / LIST STYLES
	// ==========================================================================

	TableHeader  lipgloss.Style
	TableRow     lipgloss.Style
	TableRowSel  lipgloss.Style
	MenuItem     lipgloss.Style
	MenuItemSel  lipgloss.Style
	StockOKText  lipgloss.Style
	StockLowText lipgloss.Style
	StockOutText lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	IdleOK       lipgloss.Style
	IdleWarn     lipgloss.Style

	// ==========================================================================
	// ERROR / NOTICE STYLES
	// ==========================================================================

	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
	Spinner     lipgloss.Style
}

// NewTheme creates a theme. mode is "auto", "dark" or "light"; auto asks
// the terminal.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Content
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)
	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(14)
	t.Value = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		Width(22)
	t.CardHead = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Forms
	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)
	t.FieldFocused = t.Field.
		BorderForeground(FocusRing)
	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)
	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(Overlay).
		Padding(0, 2)
	t.ButtonActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 2)
	t.Checkbox = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Tables and menus
	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.TableRow = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.TableRowSel = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	t.MenuItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)
	t.MenuItemSel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		PaddingLeft(0).
		SetString("> ")
	t.StockOKText = lipgloss.NewStyle().Foreground(StockOK)
	t.StockLowText = lipgloss.NewStyle().Foreground(StockLow).Bold(true)
	t.StockOutText = lipgloss.NewStyle().Foreground(StockOut).Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.IdleOK = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.IdleWarn = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Notices
	t.ErrorText = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)
	t.SuccessText = lipgloss.NewStyle().
		Foreground(SuccessHighContrast)
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)
}

// Stock returns the style for a stock level.
func (t *Theme) Stock(stock, lowThreshold int) lipgloss.Style {
	switch {
	case stock <= 0:
		return t.StockOutText
	case stock <= lowThreshold:
		return t.StockLowText
	default:
		return t.StockOKText
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
