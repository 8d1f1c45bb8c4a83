// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestManual_AdvanceMovesNow(t *testing.T) {
	c := NewManual(epoch)
	c.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), c.Now())

	c.Set(epoch)
	assert.Equal(t, epoch, c.Now())
}

func TestManual_TickerFiresWhenDeadlineCrossed(t *testing.T) {
	c := NewManual(epoch)
	tk := c.NewTicker(5 * time.Second)
	defer tk.Stop()

	c.Advance(4 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-tk.C():
		assert.Equal(t, epoch.Add(5*time.Second), got)
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestManual_SlowReaderDropsTicks(t *testing.T) {
	c := NewManual(epoch)
	tk := c.NewTicker(time.Second)
	defer tk.Stop()

	c.Advance(time.Second)
	c.Advance(time.Second)
	c.Advance(time.Second)

	<-tk.C()
	select {
	case <-tk.C():
		t.Fatal("expected buffered ticks to be dropped")
	default:
	}
}

func TestManual_StopRemovesTicker(t *testing.T) {
	c := NewManual(epoch)
	tk := c.NewTicker(time.Second)
	require.Equal(t, 1, c.Tickers())

	tk.Stop()
	tk.Stop()
	assert.Equal(t, 0, c.Tickers())

	c.Advance(time.Minute)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestManual_NewTickerRejectsZero(t *testing.T) {
	c := NewManual(epoch)
	assert.Panics(t, func() { c.NewTicker(0) })
}

func TestReal_NowAdvances(t *testing.T) {
	c := Real()
	a := c.Now()
	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()
	<-tk.C()
	assert.True(t, c.Now().After(a))
}
