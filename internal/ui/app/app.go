// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/clock"
	"github.com/jeranaias/shopdesk-tui/internal/idle"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/observable"
	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
	"github.com/jeranaias/shopdesk-tui/internal/ui/screens"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

// ErrMissingDependency is returned by New when navigation or the session
// is nil.
var ErrMissingDependency = errors.New("app: missing dependency")

// noticeBuffer bounds idle notices waiting for the UI. Hooks never block
// the checker; extra notices are dropped.
const noticeBuffer = 8

// Navigation is the navigation state the app follows. *navigation.State
// implements it.
type Navigation interface {
	screens.Navigator
	ResetToLogin()
	Current() navigation.Screen
	Subscribe() *observable.Subscription[navigation.Transition]
}

// Session is what the app and its idle watches need. *session.Manager
// implements it.
type Session interface {
	screens.Sessions
	idle.Session
}

// Options wires the app.
type Options struct {
	Nav     Navigation
	Session Session
	// Screens carries the screen collaborators. Nav and Session are filled
	// in by New.
	Screens screens.Deps
	Idle    idle.Config
	Clock   clock.Clock
	Log     logging.Logger
	// Resume fetches the signed-in user for a stored session. Nil disables
	// resuming at startup.
	Resume func(ctx context.Context) (model.User, error)
}

// Model is the root model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	nav     Navigation
	sess    Session
	deps    screens.Deps
	idleCfg idle.Config
	clock   clock.Clock
	log     logging.Logger
	resume  func(ctx context.Context) (model.User, error)

	sub     *observable.Subscription[navigation.Transition]
	notices chan tea.Msg

	current navigation.Screen
	screen  screens.Screen
	watch   *idle.Watch
	active  *atomic.Pointer[idle.Watch]

	theme   *styles.Theme
	header  *components.Header
	status  *components.StatusBar
	overlay components.SessionTimeoutOverlay
	toasts  *components.Toasts

	width  int
	height int
	closed bool
}

// New returns the root model. The navigation subscription is opened here
// so no transition published before Init is missed.
func New(parent context.Context, opts Options) (*Model, error) {
	if isNil(opts.Nav) {
		return nil, fmt.Errorf("%w: navigation", ErrMissingDependency)
	}
	if isNil(opts.Session) {
		return nil, fmt.Errorf("%w: session", ErrMissingDependency)
	}
	if err := opts.Idle.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	d := opts.Screens
	if d.Theme == nil {
		d.Theme = styles.NewTheme("auto")
	}
	if d.Log == nil {
		d.Log = opts.Log
	}

	ctx, cancel := context.WithCancel(parent)
	d.Ctx = ctx
	d.Nav = opts.Nav
	d.Session = opts.Session

	m := &Model{
		ctx:     ctx,
		cancel:  cancel,
		nav:     opts.Nav,
		sess:    opts.Session,
		deps:    d,
		idleCfg: opts.Idle,
		clock:   opts.Clock,
		log:     opts.Log.With("component", "app"),
		resume:  opts.Resume,
		sub:     opts.Nav.Subscribe(),
		notices: make(chan tea.Msg, noticeBuffer),
		active:  &atomic.Pointer[idle.Watch]{},
		theme:   d.Theme,
		header:  components.NewHeader(d.Theme),
		status:  components.NewStatusBar(d.Theme),
		overlay: components.NewSessionTimeoutOverlay(),
		toasts:  components.NewToasts(opts.Clock.Now),
	}
	m.overlay.SetTimeout(opts.Idle.Timeout)
	return m, nil
}

// Init shows the current screen and starts the background waits.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.show(m.nav.Current()),
		m.waitTransition(),
		m.waitNotice(),
		m.tryResume(),
		tickEverySecond(),
	)
}

// Screen returns the active screen model.
func (m *Model) Screen() screens.Screen { return m.screen }

// Current returns the screen the app is showing.
func (m *Model) Current() navigation.Screen { return m.current }

// Watching reports whether an idle watch is running.
func (m *Model) Watching() bool { return m.active.Load() != nil }

// Close stops the idle watch and the navigation subscription. Safe to
// call more than once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.stopWatch()
	m.sub.Unsubscribe()
	m.cancel()
}

// =============================================================================
// BACKGROUND WAITS
// =============================================================================

func (m *Model) waitTransition() tea.Cmd {
	sub, ctx := m.sub, m.ctx
	return func() tea.Msg {
		t, err := sub.Next(ctx)
		if err != nil {
			return subscriptionClosedMsg{err: err}
		}
		return transitionMsg{t: t}
	}
}

func (m *Model) waitNotice() tea.Cmd {
	notices, ctx := m.notices, m.ctx
	return func() tea.Msg {
		select {
		case msg := <-notices:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// notify runs on the idle checker goroutine.
func (m *Model) notify(msg tea.Msg) {
	select {
	case m.notices <- msg:
	default:
		m.log.Warn(m.ctx, "idle notice dropped", logging.Event("IDLE_NOTICE_DROPPED")...)
	}
}

func tickEverySecond() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// tryResume continues a stored session by opening the dashboard. Activity
// is not persisted, so a stored session always starts a fresh idle window.
func (m *Model) tryResume() tea.Cmd {
	if m.resume == nil {
		return nil
	}
	if _, onLogin := m.nav.Current().(navigation.Login); !onLogin {
		return nil
	}
	ctx, sess, resume := m.ctx, m.sess, m.resume
	return func() tea.Msg {
		if !sess.IsLoggedIn(ctx) {
			return nil
		}
		user, err := resume(ctx)
		if err != nil {
			return resumeMsg{err: err}
		}
		return resumeMsg{user: user}
	}
}

// =============================================================================
// SCREEN SWITCHING
// =============================================================================

func (m *Model) show(s navigation.Screen) tea.Cmd {
	m.stopWatch()
	if navigation.Protected(s) && !m.signedIn() {
		// A navigation published after a logout, or racing it, must not
		// bring a protected screen back.
		m.log.Warn(m.ctx, "refusing protected screen without a session",
			logging.Event("STALE_NAVIGATION", "screen", navigation.Name(s))...)
		m.nav.ResetToLogin()
		s = navigation.Login{}
	}
	m.current = s

	scr, err := screens.Build(m.deps, s)
	if err != nil {
		return m.failScreen(s, err)
	}
	if navigation.Protected(s) {
		if err := m.startWatch(); err != nil {
			return m.failScreen(s, err)
		}
	}

	m.screen = scr
	m.screen.SetSize(m.bodySize())
	// The signed-out notice stays up on Login until dismissed.
	if navigation.Protected(s) || !m.overlay.IsExpired() {
		m.overlay.Hide()
	}
	user := ""
	if u, ok := navigation.UserOf(s); ok {
		user = u.DisplayName()
	}
	m.header.SetScreen(navigation.Title(s), user)
	m.status.SetBindings(scr.Bindings())
	m.refreshIdle()
	return scr.Init()
}

// failScreen handles a screen that could not be built. A protected screen
// without a usable session ends the session.
func (m *Model) failScreen(s navigation.Screen, err error) tea.Cmd {
	m.log.Error(m.ctx, "cannot show screen",
		logging.Event("SCREEN_FAILED", "screen", navigation.Name(s), "err", err)...)
	m.toasts.Error("Cannot open " + navigation.Title(s) + ": " + err.Error())
	if m.screen == nil {
		m.screen, _ = screens.Build(m.deps, navigation.Login{})
	}
	cmds := []tea.Cmd{components.ToastTickCmd()}
	if navigation.Protected(s) {
		cmds = append(cmds, m.logout())
	}
	return tea.Batch(cmds...)
}

// signedIn is false from Logout until the next successful login.
func (m *Model) signedIn() bool {
	return !m.sess.JustLoggedOut() && m.sess.IsLoggedIn(m.ctx)
}

func (m *Model) startWatch() error {
	mon, err := idle.New(m.sess, m.idleCfg,
		idle.WithClock(m.clock),
		idle.WithLogger(m.deps.Log),
		idle.OnWarning(func(remaining time.Duration) { m.notify(idleWarningMsg{remaining: remaining}) }),
		idle.OnTimeout(func(err error) { m.notify(idleTimeoutMsg{err: err}) }),
	)
	if err != nil {
		return err
	}
	m.overlay.SetTimeout(m.idleCfg.Timeout)
	m.watch = mon.Start(m.ctx)
	m.active.Store(m.watch)
	return nil
}

func (m *Model) stopWatch() {
	if m.watch == nil {
		return
	}
	m.active.Store(nil)
	m.watch.Stop()
	m.watch = nil
}

func (m *Model) logout() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return screens.LogoutMsg{Err: sess.Logout(ctx)}
	}
}

func (m *Model) refreshIdle() {
	if m.watch == nil {
		m.status.SetIdle(0, 0, 0)
		return
	}
	m.status.SetIdle(m.sess.IdleFor(), m.idleCfg.Timeout, m.idleCfg.WarningBefore)
}

// =============================================================================
// UPDATE
// =============================================================================

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.header.SetWidth(msg.Width)
		m.status.SetWidth(msg.Width)
		m.overlay.SetSize(m.bodySize())
		if m.screen != nil {
			m.screen.SetSize(m.bodySize())
		}
		return m, nil

	case transitionMsg:
		return m, tea.Batch(m.show(msg.t.To), m.waitTransition())

	case subscriptionClosedMsg:
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.log.Warn(m.ctx, "navigation subscription ended", "err", msg.err)
		return m, nil

	case idleWarningMsg:
		if m.watch != nil {
			m.overlay.Show(msg.remaining)
		}
		return m, m.waitNotice()

	case idleTimeoutMsg:
		m.overlay.ShowExpired()
		if msg.err != nil {
			m.toasts.Error("Sign-out incomplete: " + msg.err.Error())
			return m, tea.Batch(m.waitNotice(), components.ToastTickCmd())
		}
		return m, m.waitNotice()

	case resumeMsg:
		return m, m.resumed(msg)

	case clockTickMsg:
		m.refreshIdle()
		m.updateOverlay()
		return m, tickEverySecond()

	case IdleSettingsMsg:
		if err := msg.Config.Validate(); err != nil {
			m.toasts.Error("Ignoring idle settings: " + err.Error())
			return m, components.ToastTickCmd()
		}
		m.idleCfg = msg.Config
		m.log.Info(m.ctx, "idle settings updated",
			logging.Event("IDLE_CONFIG", "timeout", msg.Config.Timeout.String())...)
		return m, m.toast(components.ToastKindStatus, "Settings reloaded")

	case components.SessionExtendedMsg:
		m.sess.UpdateActivity(m.ctx)
		m.refreshIdle()
		return m, nil

	case components.ToastTickMsg:
		if m.toasts.Tick() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case screens.ToastMsg:
		return m, m.toast(msg.Kind, msg.Text)

	case screens.ErrMsg:
		return m, m.handleErr(msg)

	case screens.LogoutMsg:
		if msg.Err != nil {
			return m, m.toast(components.ToastKindWarning, "Logout finished with errors: "+msg.Err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}
		if m.overlay.IsVisible() {
			var cmd tea.Cmd
			m.overlay, cmd = m.overlay.Update(msg)
			return m, cmd
		}
		if msg.String() == "ctrl+x" && m.toasts.Len() > 0 {
			m.toasts.Dismiss()
			return m, nil
		}
	}

	if m.screen == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// handleErr ends the session on ErrUnauthorized; anything else becomes a
// toast and is passed on to the screen.
func (m *Model) handleErr(msg screens.ErrMsg) tea.Cmd {
	if errors.Is(msg.Err, api.ErrUnauthorized) {
		m.log.Info(m.ctx, "backend rejected session",
			logging.Event("UNAUTHORIZED", "op", msg.Op)...)
		return tea.Batch(
			m.toast(components.ToastKindWarning, "Session expired. Please sign in again."),
			m.logout(),
		)
	}
	toast := m.toast(components.ToastKindError, msg.Error())
	if m.screen == nil {
		return toast
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return tea.Batch(toast, cmd)
}

func (m *Model) resumed(msg resumeMsg) tea.Cmd {
	switch {
	case errors.Is(msg.err, api.ErrUnauthorized):
		return m.logout()
	case msg.err != nil:
		return m.toast(components.ToastKindWarning, "Could not resume session: "+msg.err.Error())
	}
	m.log.Info(m.ctx, "session resumed", logging.Event("RESUME", "user_id", msg.user.ID)...)
	m.nav.NavigateTo(navigation.Dashboard{User: msg.user})
	return nil
}

// updateOverlay keeps the countdown current and hides it once activity
// moved the deadline back out of the warning window.
func (m *Model) updateOverlay() {
	if !m.overlay.IsVisible() || m.overlay.IsExpired() || m.watch == nil {
		return
	}
	remaining := m.idleCfg.Timeout - m.sess.IdleFor()
	if remaining > m.idleCfg.WarningBefore {
		m.overlay.Hide()
		return
	}
	if remaining < 0 {
		remaining = 0
	}
	m.overlay.UpdateTime(remaining)
}

func (m *Model) toast(kind components.ToastKind, text string) tea.Cmd {
	first := m.toasts.Len() == 0
	m.toasts.Add(kind, text)
	if first {
		return components.ToastTickCmd()
	}
	return nil
}

// =============================================================================
// VIEW
// =============================================================================

const chromeHeight = 2

func (m *Model) bodySize() (int, int) {
	return m.width, max(0, m.height-chromeHeight)
}

func (m *Model) View() string {
	if m.screen == nil {
		return ""
	}
	w, h := m.bodySize()
	body := m.screen.View()
	if m.overlay.IsVisible() {
		body = m.overlay.View()
	}
	if t := m.toasts.View(m.width); t != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, t)
	}
	if h > 0 {
		body = lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(body)
	}
	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.status.View())
	return b.String()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
