// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package observable provides an in-order publish/subscribe subject.
//
// Every value published to a Subject is delivered to every live
// Subscription in publish order. Each subscription buffers without bound,
// so a slow consumer never blocks the publisher and nothing is dropped or
// coalesced.
package observable

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Next once the subject is closed and the
// subscription has been drained, or after Unsubscribe.
var ErrClosed = errors.New("observable: closed")

// Subject fans out published values to subscribers.
type Subject[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
}

// NewSubject returns an open subject with no subscribers.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Publish delivers v to every current subscriber. Publishing on a closed
// subject is a no-op.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Holding s.mu across the pushes keeps concurrent publishers from
	// interleaving differently in different subscriptions.
	for sub := range s.subs {
		sub.push(v)
	}
}

// Subscribe registers a subscription that receives values published from
// now on. Subscribing to a closed subject yields an already-closed
// subscription.
func (s *Subject[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		owner:  s,
		notify: make(chan struct{}, 1),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.closed = true
		return sub
	}
	s.subs[sub] = struct{}{}
	return sub
}

// Subscribers reports the number of live subscriptions.
func (s *Subject[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close stops the subject. Subscribers can still drain buffered values.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		sub.close()
	}
	s.subs = nil
}

func (s *Subject[T]) remove(sub *Subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub)
}

// Subscription is one subscriber's FIFO view of a Subject.
type Subscription[T any] struct {
	owner  *Subject[T]
	notify chan struct{}

	mu           sync.Mutex
	queue        []T
	closed       bool
	unsubscribed bool
}

// Next blocks until a value is available, the context is done, or the
// subscription is finished.
func (sub *Subscription[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		sub.mu.Lock()
		if sub.unsubscribed {
			sub.mu.Unlock()
			return zero, ErrClosed
		}
		if len(sub.queue) > 0 {
			v := sub.queue[0]
			sub.queue[0] = zero
			sub.queue = sub.queue[1:]
			sub.mu.Unlock()
			return v, nil
		}
		if sub.closed {
			sub.mu.Unlock()
			return zero, ErrClosed
		}
		sub.mu.Unlock()

		select {
		case <-sub.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// TryNext returns the next buffered value without blocking.
func (sub *Subscription[T]) TryNext() (T, bool) {
	var zero T
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.unsubscribed || len(sub.queue) == 0 {
		return zero, false
	}
	v := sub.queue[0]
	sub.queue[0] = zero
	sub.queue = sub.queue[1:]
	return v, true
}

// Pending reports how many values are buffered.
func (sub *Subscription[T]) Pending() int {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return len(sub.queue)
}

// Unsubscribe detaches the subscription and discards buffered values.
// Safe to call more than once.
func (sub *Subscription[T]) Unsubscribe() {
	sub.mu.Lock()
	if sub.unsubscribed {
		sub.mu.Unlock()
		return
	}
	sub.unsubscribed = true
	sub.queue = nil
	sub.mu.Unlock()

	sub.owner.remove(sub)
	sub.wake()
}

func (sub *Subscription[T]) push(v T) {
	sub.mu.Lock()
	if sub.unsubscribed {
		sub.mu.Unlock()
		return
	}
	sub.queue = append(sub.queue, v)
	sub.mu.Unlock()
	sub.wake()
}

func (sub *Subscription[T]) close() {
	sub.mu.Lock()
	sub.closed = true
	sub.mu.Unlock()
	sub.wake()
}

func (sub *Subscription[T]) wake() {
	select {
	case sub.notify <- struct{}{}:
	default:
	}
}
