// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan color)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose/red color)
	ToastKindError
	// ToastKindWarning is a warning toast (amber color)
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald color)
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is longer so errors can be read.
const ErrorToastDuration = 8 * time.Second

const maxToasts = 4

// Toast is a non-blocking notification that auto-dismisses.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// Remaining returns the time left before auto-dismiss at now.
func (t Toast) Remaining(now time.Time) time.Duration {
	r := t.Duration - now.Sub(t.CreatedAt)
	if r < 0 {
		return 0
	}
	return r
}

// =============================================================================
// TOAST STACK
// =============================================================================

// Toasts holds active toasts, newest first. It is owned by the UI goroutine.
type Toasts struct {
	items  []Toast
	nextID int
	now    func() time.Time
}

// NewToasts creates an empty stack. now defaults to time.Now.
func NewToasts(now func() time.Time) *Toasts {
	if now == nil {
		now = time.Now
	}
	return &Toasts{now: now}
}

// Add pushes a toast and returns its ID.
func (s *Toasts) Add(kind ToastKind, message string) int {
	d := DefaultToastDuration
	if kind == ToastKindError || kind == ToastKindWarning {
		d = ErrorToastDuration
	}
	s.nextID++
	s.items = append([]Toast{{
		ID:        s.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: s.now(),
		Duration:  d,
	}}, s.items...)
	if len(s.items) > maxToasts {
		s.items = s.items[:maxToasts]
	}
	return s.nextID
}

// Error adds an error toast.
func (s *Toasts) Error(message string) int { return s.Add(ToastKindError, message) }

// Success adds a success toast.
func (s *Toasts) Success(message string) int { return s.Add(ToastKindSuccess, message) }

// Info adds a status toast.
func (s *Toasts) Info(message string) int { return s.Add(ToastKindStatus, message) }

// Dismiss removes the oldest toast.
func (s *Toasts) Dismiss() {
	if len(s.items) > 0 {
		s.items = s.items[1:]
	}
}

// Tick drops expired toasts and reports whether any remain.
func (s *Toasts) Tick() bool {
	now := s.now()
	active := s.items[:0]
	for _, t := range s.items {
		if t.Remaining(now) > 0 {
			active = append(active, t)
		}
	}
	s.items = active
	return len(s.items) > 0
}

// Items returns a copy of the active toasts.
func (s *Toasts) Items() []Toast {
	out := make([]Toast, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of active toasts.
func (s *Toasts) Len() int { return len(s.items) }

// ToastTickMsg drives auto-dismiss.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// View renders the stack, newest at the bottom.
func (s *Toasts) View(width int) string {
	if len(s.items) == 0 {
		return ""
	}
	now := s.now()
	rendered := make([]string, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		rendered = append(rendered, renderToast(s.items[i], width, now))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(t Toast, width int, now time.Time) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastKindWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	body := wordwrap.String(t.Message, maxWidth-10)
	content := lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon+" ") +
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(body)

	if secs := int(t.Remaining(now).Seconds()); secs > 0 {
		content += "\n" + lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true).
			Render("[x] dismiss  "+util.IntToString(secs)+"s")
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(content)
}
