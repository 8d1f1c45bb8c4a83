// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/shopdesk-tui/internal/clock"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
)

var (
	// ErrNoSession is returned by New without a session to watch.
	ErrNoSession = errors.New("idle monitor requires a session manager")

	// ErrInvalidConfig wraps Config validation failures.
	ErrInvalidConfig = errors.New("invalid idle configuration")

	// errTimedOut stops the errgroup once the checker has logged out.
	errTimedOut = errors.New("session timed out")
)

// eventBuffer bounds the events queued between Observe and the listener.
const eventBuffer = 64

// =============================================================================
// EVENTS
// =============================================================================

// EventKind classifies a raw input event.
type EventKind int

const (
	Other EventKind = iota
	PointerPress
	PointerMove
	PointerRelease
	PointerEnter
	PointerScroll
	KeyPress
)

func (k EventKind) String() string {
	switch k {
	case PointerPress:
		return "pointer-press"
	case PointerMove:
		return "pointer-move"
	case PointerRelease:
		return "pointer-release"
	case PointerEnter:
		return "pointer-enter"
	case PointerScroll:
		return "pointer-scroll"
	case KeyPress:
		return "key-press"
	default:
		return "other"
	}
}

// Event is one input signal.
type Event struct {
	Kind EventKind
}

// =============================================================================
// CONFIG
// =============================================================================

// Config controls detection.
type Config struct {
	// Timeout is the idle duration that ends the session.
	Timeout time.Duration
	// CheckInterval is how often the checker wakes. Worst-case detection
	// latency is Timeout + CheckInterval.
	CheckInterval time.Duration
	// WarningBefore triggers the warning hook this long before Timeout.
	// Zero disables warnings.
	WarningBefore time.Duration
	// CountKeyboard makes key presses count as activity.
	CountKeyboard bool
}

// DefaultConfig returns 15 minutes idle, 5 second checks, a one minute
// warning, with keyboard input counted.
func DefaultConfig() Config {
	return Config{
		Timeout:       15 * time.Minute,
		CheckInterval: 5 * time.Second,
		WarningBefore: time.Minute,
		CountKeyboard: true,
	}
}

// Validate requires 0 < CheckInterval < Timeout and a warning window
// shorter than Timeout.
func (c Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.CheckInterval <= 0:
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	case c.CheckInterval >= c.Timeout:
		return fmt.Errorf("%w: check interval %v must be shorter than timeout %v", ErrInvalidConfig, c.CheckInterval, c.Timeout)
	case c.WarningBefore < 0 || c.WarningBefore >= c.Timeout:
		return fmt.Errorf("%w: warning window %v must be within timeout %v", ErrInvalidConfig, c.WarningBefore, c.Timeout)
	}
	return nil
}

// Qualifies reports whether an event of kind k counts as user activity.
// Scrolling is classified but never counts.
func (c Config) Qualifies(k EventKind) bool {
	switch k {
	case PointerPress, PointerMove, PointerRelease, PointerEnter:
		return true
	case KeyPress:
		return c.CountKeyboard
	default:
		return false
	}
}

// =============================================================================
// MONITOR
// =============================================================================

// Session is what the monitor needs from the session manager.
type Session interface {
	IsLoggedIn(ctx context.Context) bool
	HasSessionTimedOut(threshold time.Duration) bool
	UpdateActivity(ctx context.Context)
	IdleFor() time.Duration
	Logout(ctx context.Context) error
}

// Monitor starts watches over one session.
type Monitor struct {
	sess      Session
	cfg       Config
	clock     clock.Clock
	log       logging.Logger
	onWarning func(remaining time.Duration)
	onTimeout func(err error)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// OnWarning registers fn to run once per idle stretch when the remaining
// time drops to WarningBefore. It runs on the checker goroutine.
func OnWarning(fn func(remaining time.Duration)) Option {
	return func(m *Monitor) { m.onWarning = fn }
}

// OnTimeout registers fn to run after the checker has called Logout, with
// Logout's error. It runs on the checker goroutine.
func OnTimeout(fn func(err error)) Option {
	return func(m *Monitor) { m.onTimeout = fn }
}

// New returns a monitor for sess. It fails when sess is nil or cfg is
// invalid.
func New(sess Session, cfg Config, opts ...Option) (*Monitor, error) {
	if sess == nil || reflect.ValueOf(sess).Kind() == reflect.Pointer && reflect.ValueOf(sess).IsNil() {
		return nil, ErrNoSession
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Monitor{
		sess:  sess,
		cfg:   cfg,
		clock: clock.Real(),
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "idle")
	return m, nil
}

// Config returns the monitor's configuration.
func (m *Monitor) Config() Config { return m.cfg }

// Start counts as activity (screen entry) and launches the listener and
// checker. They run until the returned Watch is stopped, parent is
// cancelled, or the checker logs out.
func (m *Monitor) Start(parent context.Context) *Watch {
	m.sess.UpdateActivity(parent)

	ctx, cancel := context.WithCancel(parent)
	w := &Watch{
		cancel: cancel,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.listen(gctx, w) })
	g.Go(func() error { return m.check(gctx, w) })

	go func() {
		if err := g.Wait(); err != nil && !errors.Is(err, errTimedOut) {
			m.log.Error(context.Background(), "idle watch failed", "err", err)
		}
		cancel()
		close(w.done)
	}()
	return w
}

func (m *Monitor) listen(ctx context.Context, w *Watch) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-w.events:
			if m.cfg.Qualifies(e.Kind) {
				m.sess.UpdateActivity(ctx)
			}
		}
	}
}

func (m *Monitor) check(ctx context.Context, w *Watch) error {
	ticker := m.clock.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	var (
		warned   bool
		lastIdle time.Duration
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}

		if !m.sess.IsLoggedIn(ctx) {
			warned, lastIdle = false, 0
			continue
		}

		if m.sess.HasSessionTimedOut(m.cfg.Timeout) {
			idle := m.sess.IdleFor()
			m.log.Info(ctx, "idle timeout, logging out",
				logging.Event("IDLE_TIMEOUT", "idle", idle.String(), "timeout", m.cfg.Timeout.String())...)
			err := m.sess.Logout(ctx)
			w.finish(err)
			if m.onTimeout != nil {
				m.onTimeout(err)
			}
			return errTimedOut
		}

		if m.cfg.WarningBefore <= 0 {
			continue
		}
		// Idle time going down means there was input since the last tick.
		idle := m.sess.IdleFor()
		if idle < lastIdle {
			warned = false
		}
		lastIdle = idle

		remaining := m.cfg.Timeout - idle
		switch {
		case remaining > m.cfg.WarningBefore:
			warned = false
		case !warned:
			warned = true
			m.log.Debug(ctx, "idle warning", logging.Event("IDLE_WARNING", "remaining", remaining.String())...)
			if m.onWarning != nil {
				m.onWarning(remaining)
			}
		}
	}
}

// =============================================================================
// WATCH
// =============================================================================

// Watch is one running listener/checker pair.
type Watch struct {
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}

	loggedOut atomic.Bool
	dropped   atomic.Uint64

	mu  sync.Mutex
	err error
}

// Observe hands an input event to the listener without blocking. It
// reports false when the event was dropped because the queue was full or
// the watch has finished.
func (w *Watch) Observe(e Event) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.events <- e:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Stop cancels both goroutines and waits for them to exit. Safe to call
// repeatedly and after the watch finished on its own.
func (w *Watch) Stop() {
	w.cancel()
	<-w.done
}

// Done is closed when both goroutines have exited.
func (w *Watch) Done() <-chan struct{} { return w.done }

// LoggedOut reports whether this watch ended the session.
func (w *Watch) LoggedOut() bool { return w.loggedOut.Load() }

// Err returns the error from the idle logout, if any.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Dropped returns how many events Observe discarded.
func (w *Watch) Dropped() uint64 { return w.dropped.Load() }

func (w *Watch) finish(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
	w.loggedOut.Store(true)
}
