// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

type statsMsg struct{ stats model.DashboardStats }

type menuItem struct {
	label string
	hint  string
}

var dashboardMenu = []menuItem{
	{"Products", "browse and edit the catalog"},
	{"Categories", "manage product categories"},
	{"Log out", "end this session"},
}

// Dashboard shows catalog counters and the main menu.
type Dashboard struct {
	deps    Deps
	user    model.User
	stats   *model.DashboardStats
	loading bool
	cursor  int
	spinner spinner.Model
	width   int
}

func newDashboard(d Deps, u model.User) *Dashboard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = d.Theme.Spinner
	return &Dashboard{deps: d, user: u, spinner: sp}
}

func (s *Dashboard) Init() tea.Cmd {
	return s.load()
}

func (s *Dashboard) load() tea.Cmd {
	s.loading = true
	d := s.deps
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		stats, err := d.API.Dashboard(d.ctx())
		if err != nil {
			return failed("load dashboard", err)
		}
		return statsMsg{stats: stats}
	})
}

func (s *Dashboard) SetSize(width, _ int) { s.width = width }

func (s *Dashboard) Bindings() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyOpen, keyRefresh, keyLogout}
}

func (s *Dashboard) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		s.loading = false
		s.stats = &msg.stats
	case ErrMsg:
		s.loading = false
	case spinner.TickMsg:
		if s.loading {
			var cmd tea.Cmd
			s.spinner, cmd = s.spinner.Update(msg)
			return s, cmd
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyUp):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keyDown):
			if s.cursor < len(dashboardMenu)-1 {
				s.cursor++
			}
		case key.Matches(msg, keyRefresh):
			return s, s.load()
		case key.Matches(msg, keyLogout):
			return s, logout(s.deps)
		case key.Matches(msg, keyOpen):
			return s, s.choose(s.cursor)
		case msg.String() == "p":
			return s, s.choose(0)
		case msg.String() == "c":
			return s, s.choose(1)
		}
	}
	return s, nil
}

func (s *Dashboard) choose(i int) tea.Cmd {
	switch i {
	case 0:
		s.deps.navigate(navigation.ProductList{User: s.user})
	case 1:
		s.deps.navigate(navigation.CategoryList{User: s.user})
	case 2:
		return logout(s.deps)
	}
	return nil
}

// logout runs a user-requested logout. Navigation to Login happens inside
// the session manager.
func logout(d Deps) tea.Cmd {
	return func() tea.Msg {
		return LogoutMsg{Err: d.Session.Logout(d.ctx())}
	}
}

func (s *Dashboard) View() string {
	t := s.deps.Theme
	var b strings.Builder
	b.WriteString(t.Title.Render("Welcome, " + s.user.DisplayName()))
	b.WriteString("\n\n")

	switch {
	case s.stats != nil:
		cards := []string{
			s.card("Products", util.IntToString(s.stats.Products)),
			s.card("Categories", util.IntToString(s.stats.Categories)),
			s.card("Low stock", util.IntToString(s.stats.LowStock)),
			s.card("Inventory value", model.Money(s.stats.InventoryValueCents)),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	case s.loading:
		b.WriteString(s.spinner.View() + " loading stats...")
	default:
		b.WriteString(t.Muted.Render("Stats unavailable. Press r to retry."))
	}
	b.WriteString("\n\n")

	for i, item := range dashboardMenu {
		style := t.MenuItem
		prefix := "  "
		if i == s.cursor {
			style = t.MenuItemSel
			prefix = "> "
		}
		b.WriteString(style.Render(prefix+item.label) + "  " + t.Muted.Render(item.hint))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Dashboard) card(label, value string) string {
	t := s.deps.Theme
	return t.Card.Render(t.CardHead.Render(label) + "\n" + t.Value.Render(value))
}
