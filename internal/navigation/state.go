// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigation holds the single authoritative current screen, the
// previous screen kept for back navigation, and publishes every change.
package navigation

import (
	"context"
	"sync"

	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/observable"
)

// Transition is the immutable record of one navigation change.
type Transition struct {
	Seq   uint64
	From  Screen
	To    Screen
	Reset bool
}

// State starts on Login with no previous screen. NavigateTo and
// ResetToLogin are the only mutators; Back goes through NavigateTo.
type State struct {
	mu       sync.Mutex
	current  Screen
	previous Screen
	seq      uint64

	subject *observable.Subject[Transition]
	log     logging.Logger
}

// NewState returns a state positioned on Login.
func NewState(log logging.Logger) *State {
	if log == nil {
		log = logging.Discard()
	}
	return &State{
		current: Login{},
		subject: observable.NewSubject[Transition](),
		log:     log.With("component", "navigation"),
	}
}

// Current returns the active screen.
func (s *State) Current() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Previous returns the screen active before the last NavigateTo, or nil.
func (s *State) Previous() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previous
}

// Snapshot returns current and previous read together.
func (s *State) Snapshot() (current, previous Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.previous
}

// NavigateTo makes next current and the old current previous. A nil
// screen is ignored.
func (s *State) NavigateTo(next Screen) {
	if next == nil {
		s.log.Warn(context.Background(), "ignoring navigation to nil screen")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous, s.current = s.current, next
	s.publishLocked(s.previous, next, false)
}

// ResetToLogin moves to Login and forgets the previous screen.
func (s *State) ResetToLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.current
	s.current, s.previous = Login{}, nil
	s.publishLocked(from, Login{}, true)
}

// Back navigates to the previous screen. It reports false when there is
// none or when going back would leave an authenticated area for Login.
func (s *State) Back() bool {
	prev := s.Previous()
	if prev == nil {
		return false
	}
	if _, isLogin := prev.(Login); isLogin {
		return false
	}
	s.NavigateTo(prev)
	return true
}

// Subscribe returns a subscription that receives every later transition
// in order.
func (s *State) Subscribe() *observable.Subscription[Transition] {
	return s.subject.Subscribe()
}

// Close ends all subscriptions.
func (s *State) Close() {
	s.subject.Close()
}

// publishLocked must be called with s.mu held so sequence numbers and
// delivery order agree.
func (s *State) publishLocked(from, to Screen, reset bool) {
	s.seq++
	t := Transition{Seq: s.seq, From: from, To: to, Reset: reset}
	s.log.Debug(context.Background(), "navigate",
		logging.Event("NAVIGATE", "seq", t.Seq, "from", Name(from), "to", Name(to), "reset", reset)...)
	s.subject.Publish(t)
}
