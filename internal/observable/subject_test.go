// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package observable

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject_DeliversEveryValueInOrder(t *testing.T) {
	s := NewSubject[int]()
	a := s.Subscribe()
	b := s.Subscribe()

	for i := 0; i < 1000; i++ {
		s.Publish(i)
	}

	ctx := context.Background()
	for _, sub := range []*Subscription[int]{a, b} {
		for i := 0; i < 1000; i++ {
			v, err := sub.Next(ctx)
			require.NoError(t, err)
			require.Equal(t, i, v)
		}
		assert.Zero(t, sub.Pending())
	}
}

func TestSubject_LateSubscriberSeesOnlyLaterValues(t *testing.T) {
	s := NewSubject[string]()
	s.Publish("before")
	sub := s.Subscribe()
	s.Publish("after")

	v, ok := sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, "after", v)

	_, ok = sub.TryNext()
	assert.False(t, ok)
}

func TestSubject_NextBlocksUntilPublish(t *testing.T) {
	s := NewSubject[int]()
	sub := s.Subscribe()

	got := make(chan int, 1)
	go func() {
		v, err := sub.Next(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	s.Publish(7)

	select {
	case v := <-got:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Publish")
	}
}

func TestSubject_NextHonoursContext(t *testing.T) {
	s := NewSubject[int]()
	sub := s.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubject_CloseDrainsThenErrors(t *testing.T) {
	s := NewSubject[int]()
	sub := s.Subscribe()
	s.Publish(1)
	s.Close()
	s.Publish(2)

	v, err := sub.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.Subscribe().Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubscription_UnsubscribeStopsDelivery(t *testing.T) {
	s := NewSubject[int]()
	sub := s.Subscribe()
	s.Publish(1)

	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Publish(2)

	assert.Equal(t, 0, s.Subscribers())
	_, err := sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubject_ConcurrentPublishersAgreeOnOrder(t *testing.T) {
	s := NewSubject[int]()
	a := s.Subscribe()
	b := s.Subscribe()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Publish(base + i)
			}
		}(p * 1000)
	}
	wg.Wait()

	require.Equal(t, 400, a.Pending())
	require.Equal(t, 400, b.Pending())
	for i := 0; i < 400; i++ {
		va, _ := a.TryNext()
		vb, _ := b.TryNext()
		require.Equal(t, va, vb)
	}
}
