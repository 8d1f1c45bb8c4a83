// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

var (
	admin   = model.User{ID: 42, Email: "a@b.com", Name: "Admin"}
	mug     = model.Product{ID: 1, SKU: "MUG-1", Name: "Mug"}
	kitchen = model.Category{ID: 3, Name: "Kitchen"}
)

func allScreens() []Screen {
	return []Screen{
		Login{},
		Dashboard{User: admin},
		ProductList{User: admin},
		ProductDetail{User: admin, Product: mug},
		ProductEdit{User: admin, Product: mug},
		ProductAdd{User: admin},
		CategoryList{User: admin},
		CategoryAdd{User: admin},
		CategoryEdit{User: admin, Category: kitchen},
	}
}

func TestNewState_StartsOnLogin(t *testing.T) {
	s := NewState(nil)
	assert.Equal(t, Login{}, s.Current())
	assert.Nil(t, s.Previous())
}

func TestNavigateTo_TracksPrevious(t *testing.T) {
	s := NewState(nil)
	screens := allScreens()

	for i := 1; i < len(screens); i++ {
		before := s.Current()
		s.NavigateTo(screens[i])
		assert.Equal(t, screens[i], s.Current())
		assert.Equal(t, before, s.Previous())
	}
}

func TestResetToLogin_ClearsHistory(t *testing.T) {
	for depth := 0; depth < 5; depth++ {
		s := NewState(nil)
		for i := 0; i < depth; i++ {
			s.NavigateTo(ProductList{User: admin})
		}
		s.ResetToLogin()

		cur, prev := s.Snapshot()
		assert.Equal(t, Login{}, cur, "depth %d", depth)
		assert.Nil(t, prev, "depth %d", depth)
	}
}

func TestDashboardToProductsThenReset(t *testing.T) {
	s := NewState(nil)
	s.NavigateTo(Dashboard{User: admin})

	s.NavigateTo(ProductList{User: admin})
	assert.Equal(t, ProductList{User: admin}, s.Current())
	assert.Equal(t, Dashboard{User: admin}, s.Previous())

	s.ResetToLogin()
	assert.Equal(t, Login{}, s.Current())
	assert.Nil(t, s.Previous())
}

func TestBack(t *testing.T) {
	s := NewState(nil)
	assert.False(t, s.Back(), "nothing to go back to")

	s.NavigateTo(Dashboard{User: admin})
	assert.False(t, s.Back(), "back to login is refused")

	s.NavigateTo(ProductDetail{User: admin, Product: mug})
	require.True(t, s.Back())
	assert.Equal(t, Dashboard{User: admin}, s.Current())
	assert.Equal(t, ProductDetail{User: admin, Product: mug}, s.Previous())
}

func TestBack_PublishesOrdinaryTransition(t *testing.T) {
	s := NewState(nil)
	s.NavigateTo(Dashboard{User: admin})
	s.NavigateTo(ProductList{User: admin})
	sub := s.Subscribe()
	defer sub.Unsubscribe()

	require.True(t, s.Back())
	tr, ok := sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, ProductList{User: admin}, tr.From)
	assert.Equal(t, Dashboard{User: admin}, tr.To)
	assert.False(t, tr.Reset)
	assert.Equal(t, uint64(3), tr.Seq)
}

func TestNavigateTo_NilIsIgnored(t *testing.T) {
	s := NewState(nil)
	sub := s.Subscribe()
	s.NavigateTo(nil)

	assert.Equal(t, Login{}, s.Current())
	assert.Zero(t, sub.Pending())
}

func TestSubscribe_ReceivesEveryTransitionInOrder(t *testing.T) {
	s := NewState(nil)
	sub := s.Subscribe()
	defer sub.Unsubscribe()

	s.NavigateTo(Dashboard{User: admin})
	s.NavigateTo(ProductList{User: admin})
	s.NavigateTo(ProductList{User: admin})
	s.ResetToLogin()

	ctx := context.Background()
	want := []Transition{
		{Seq: 1, From: Login{}, To: Dashboard{User: admin}},
		{Seq: 2, From: Dashboard{User: admin}, To: ProductList{User: admin}},
		{Seq: 3, From: ProductList{User: admin}, To: ProductList{User: admin}},
		{Seq: 4, From: ProductList{User: admin}, To: Login{}, Reset: true},
	}
	for _, w := range want {
		got, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestScreenHelpers(t *testing.T) {
	names := map[string]bool{}
	for _, sc := range allScreens() {
		name := Name(sc)
		assert.NotEqual(t, "unknown", name)
		assert.False(t, names[name], "duplicate name %s", name)
		names[name] = true
		assert.NotEmpty(t, Title(sc))

		user, ok := UserOf(sc)
		if _, isLogin := sc.(Login); isLogin {
			assert.False(t, Protected(sc))
			assert.False(t, ok)
			continue
		}
		assert.True(t, Protected(sc), name)
		require.True(t, ok, name)
		assert.Equal(t, admin, user)
	}
	assert.False(t, Protected(nil))
	assert.Equal(t, "none", Name(nil))
}
